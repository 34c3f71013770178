package marc

// Structural bytes of the tape format.
const (
	RecordTerminator  byte = 0x1D
	FieldTerminator   byte = 0x1E
	SubfieldDelimiter byte = 0x1F
	Blank             byte = ' '
)

const (
	// LeaderLength is the fixed size of the record header.
	LeaderLength = 24
	// DirectoryEntryLength is tag(3) + length(4) + start(5).
	DirectoryEntryLength = 12
	// ControlNumberTag identifies the control-number field.
	ControlNumberTag = "001"
)

// Character coding scheme values found at leader position 9.
const (
	CodingSchemeLegacy byte = ' '
	CodingSchemeUCS    byte = 'a'
)
