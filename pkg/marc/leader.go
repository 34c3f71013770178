package marc

// Leader is the fixed-width record header. Numeric positions are held as
// integers, everything else verbatim.
type Leader struct {
	RecordLength       int     // 00-04
	RecordStatus       byte    // 05
	TypeOfRecord       byte    // 06
	ImplDefined1       [2]byte // 07-08
	CharCodingScheme   byte    // 09
	IndicatorCount     int     // 10
	SubfieldCodeLength int     // 11
	BaseAddressOfData  int     // 12-16
	ImplDefined2       [3]byte // 17-19
	EntryMap           [4]byte // 20-23
}

// NewLeader returns the leader used for records built in code. Length and
// base address are filled in when the record is encoded.
func NewLeader() Leader {
	return Leader{
		RecordStatus:       'n',
		TypeOfRecord:       'a',
		ImplDefined1:       [2]byte{'m', Blank},
		CharCodingScheme:   CodingSchemeLegacy,
		IndicatorCount:     2,
		SubfieldCodeLength: 2,
		ImplDefined2:       [3]byte{Blank, Blank, Blank},
		EntryMap:           [4]byte{'4', '5', '0', '0'},
	}
}

// IsUnicode reports whether the leader declares UCS/Unicode text.
func (l Leader) IsUnicode() bool {
	return l.CharCodingScheme == CodingSchemeUCS
}
