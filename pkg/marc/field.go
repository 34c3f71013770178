package marc

// FieldKind distinguishes the two field variants.
type FieldKind int

const (
	KindControl FieldKind = iota
	KindData
)

func (k FieldKind) String() string {
	if k == KindControl {
		return "control"
	}
	return "data"
}

// Field is implemented by *ControlField and *DataField only.
type Field interface {
	Tag() string
	Kind() FieldKind
	String() string
	field()
}

// ControlField carries unstructured data for a "00X" tag.
type ControlField struct {
	tag  string
	Data string
}

// NewControlField creates a control field. The tag is not validated here;
// Record.AddField does that.
func NewControlField(tag, data string) *ControlField {
	return &ControlField{tag: tag, Data: data}
}

func (f *ControlField) Tag() string     { return f.tag }
func (f *ControlField) Kind() FieldKind { return KindControl }
func (f *ControlField) field()          {}

// Subfield is a (code, data) pair inside a data field.
type Subfield struct {
	Code byte
	Data string
}

// DataField has two indicators and an ordered list of subfields.
type DataField struct {
	tag        string
	Indicator1 byte
	Indicator2 byte
	Subfields  []Subfield
}

// NewDataField creates a data field with the given indicators.
func NewDataField(tag string, ind1, ind2 byte) *DataField {
	return &DataField{tag: tag, Indicator1: ind1, Indicator2: ind2}
}

func (f *DataField) Tag() string     { return f.tag }
func (f *DataField) Kind() FieldKind { return KindData }
func (f *DataField) field()          {}

// AddSubfield appends a subfield and returns the field for chaining.
func (f *DataField) AddSubfield(code byte, data string) *DataField {
	f.Subfields = append(f.Subfields, Subfield{Code: code, Data: data})
	return f
}

// Subfield returns the first subfield with the given code, or nil.
func (f *DataField) Subfield(code byte) *Subfield {
	for i := range f.Subfields {
		if f.Subfields[i].Code == code {
			return &f.Subfields[i]
		}
	}
	return nil
}

// SubfieldsByCode returns every subfield with the given code in order.
func (f *DataField) SubfieldsByCode(code byte) []Subfield {
	var out []Subfield
	for _, sf := range f.Subfields {
		if sf.Code == code {
			out = append(out, sf)
		}
	}
	return out
}
