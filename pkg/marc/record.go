package marc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTag = errors.New("invalid tag")
	ErrFieldKind  = errors.New("field kind does not match tag")
	ErrNilField   = errors.New("nil field")
)

// Record is a leader plus its control and data fields.
type Record struct {
	Leader        Leader
	controlFields []*ControlField
	dataFields    []*DataField
}

func isNilField(f Field) bool {
	switch f := f.(type) {
	case nil:
		return true
	case *ControlField:
		return f == nil
	case *DataField:
		return f == nil
	}
	return false
}

// NewRecord returns an empty record with a default leader.
func NewRecord() *Record {
	return &Record{Leader: NewLeader()}
}

// NewRecordWithLeader returns an empty record carrying leader.
func NewRecordWithLeader(leader Leader) *Record {
	return &Record{Leader: leader}
}

// AddField appends f to the list its tag belongs to. A second "001" field
// replaces the first in place.
func (r *Record) AddField(f Field) error {
	if isNilField(f) {
		return ErrNilField
	}
	tag := f.Tag()
	if !IsValidTag(tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}

	switch f := f.(type) {
	case *ControlField:
		if !IsControlTag(tag) {
			return fmt.Errorf("%w: control field with tag %s", ErrFieldKind, tag)
		}
		if IsControlNumberTag(tag) {
			if r.ControlNumberField() != nil {
				r.controlFields[0] = f
			} else {
				r.controlFields = append([]*ControlField{f}, r.controlFields...)
			}
			return nil
		}
		r.controlFields = append(r.controlFields, f)
	case *DataField:
		if IsControlTag(tag) {
			return fmt.Errorf("%w: data field with tag %s", ErrFieldKind, tag)
		}
		r.dataFields = append(r.dataFields, f)
	}
	return nil
}

// RemoveField removes f (by identity) and reports whether it was present.
func (r *Record) RemoveField(f Field) bool {
	switch f := f.(type) {
	case *ControlField:
		for i, cf := range r.controlFields {
			if cf == f {
				r.controlFields = append(r.controlFields[:i], r.controlFields[i+1:]...)
				return true
			}
		}
	case *DataField:
		for i, df := range r.dataFields {
			if df == f {
				r.dataFields = append(r.dataFields[:i], r.dataFields[i+1:]...)
				return true
			}
		}
	}
	return false
}

// ControlFields returns the control fields in order. The slice is shared.
func (r *Record) ControlFields() []*ControlField {
	return r.controlFields
}

// DataFields returns the data fields in order. The slice is shared.
func (r *Record) DataFields() []*DataField {
	return r.dataFields
}

// Fields returns all fields, control fields first, in emission order.
func (r *Record) Fields() []Field {
	fields := make([]Field, 0, len(r.controlFields)+len(r.dataFields))
	for _, f := range r.controlFields {
		fields = append(fields, f)
	}
	for _, f := range r.dataFields {
		fields = append(fields, f)
	}
	return fields
}

// Field returns the first field with tag, or nil.
func (r *Record) Field(tag string) Field {
	fields := r.FieldsByTag(tag)
	if len(fields) == 0 {
		return nil
	}
	return fields[0]
}

// FieldsByTag returns every field with tag in insertion order.
func (r *Record) FieldsByTag(tag string) []Field {
	var out []Field
	if IsControlTag(tag) {
		for _, f := range r.controlFields {
			if f.tag == tag {
				out = append(out, f)
			}
		}
		return out
	}
	for _, f := range r.dataFields {
		if f.tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// ControlNumberField returns the "001" field, or nil.
func (r *Record) ControlNumberField() *ControlField {
	if len(r.controlFields) > 0 && IsControlNumberTag(r.controlFields[0].tag) {
		return r.controlFields[0]
	}
	return nil
}

// ControlNumber returns the control number and whether one exists.
func (r *Record) ControlNumber() (string, bool) {
	f := r.ControlNumberField()
	if f == nil {
		return "", false
	}
	return f.Data, true
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.controlFields) + len(r.dataFields)
}
