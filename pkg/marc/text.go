package marc

import "strings"

// String renders the field as its tag, a space and the data.
func (f *ControlField) String() string {
	return f.tag + " " + f.Data
}

// String renders the field as its tag, a space, both indicators and then
// every subfield as $ followed by code and data:
//
//	245 10$aTitle :$bsubtitle.
func (f *DataField) String() string {
	var b strings.Builder
	b.WriteString(f.tag)
	b.WriteByte(' ')
	b.WriteByte(f.Indicator1)
	b.WriteByte(f.Indicator2)
	for _, sf := range f.Subfields {
		b.WriteByte('$')
		b.WriteByte(sf.Code)
		b.WriteString(sf.Data)
	}
	return b.String()
}
