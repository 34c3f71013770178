package codec

import (
	"github.com/ssargent/marcstream/pkg/marc"
)

// DecodeControlField decodes the payload of a control field. b is the
// field's bytes as located by the directory, terminator included.
func DecodeControlField(tag string, b []byte, tc TextCodec) (*marc.ControlField, []*Diagnostic) {
	var diags []*Diagnostic
	payload, terminated := trimTerminator(b)
	if !terminated {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeFieldNotTerminated, len(b), tag,
			"control field is not terminated"))
	}
	if len(payload) == 0 {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeEmptyControlField, 0, tag,
			"control field contains no data"))
	}

	text, d := decodeText(payload, tc, 0, tag)
	if d != nil {
		diags = append(diags, d)
	}
	return marc.NewControlField(tag, text), diags
}

// DecodeDataField decodes indicators and subfields. A subfield is kept only
// once a following delimiter or the field terminator closes it; an open
// subfield at the end of the bytes is reported and dropped.
func DecodeDataField(tag string, b []byte, tc TextCodec) (*marc.DataField, []*Diagnostic) {
	var diags []*Diagnostic
	content, terminated := trimTerminator(b)
	if !terminated {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeFieldNotTerminated, len(b), tag,
			"data field is not terminated"))
	}

	if len(content) < 2 {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeEmptyDataField, 0, tag,
			"data field has no indicators"))
		return marc.NewDataField(tag, marc.Blank, marc.Blank), diags
	}

	field := marc.NewDataField(tag, content[0], content[1])
	if len(content) > 2 && content[2] != marc.SubfieldDelimiter {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeMissingDelimiter, 2, tag,
			"expected subfield delimiter, found 0x%02X", content[2]))
	}

	var (
		code  byte
		start int
		open  bool
	)
	emit := func(end int) {
		text, d := decodeText(b[start:end], tc, start, tag)
		if d != nil {
			diags = append(diags, d)
		}
		field.AddSubfield(code, text)
	}

	for i := 2; i < len(b); i++ {
		switch b[i] {
		case marc.SubfieldDelimiter:
			if open {
				emit(i)
				open = false
			}
			if i+1 < len(b) && b[i+1] != marc.FieldTerminator {
				code = b[i+1]
				i++
				start = i + 1
				open = true
			}
		case marc.FieldTerminator:
			if open {
				emit(i)
				open = false
			}
		}
	}
	if open {
		diags = append(diags, fieldDiagnostic(SeverityWarning, CodeUnterminatedSubfield, start, tag,
			"subfield %q is not terminated and was dropped", code))
	}
	return field, diags
}

// EncodeControlField renders payload + terminator.
func EncodeControlField(f *marc.ControlField, tc TextCodec) ([]byte, error) {
	payload, err := tc.Encode(f.Data)
	if err != nil {
		return nil, encodeTextError(f.Tag(), err)
	}
	return append(payload, marc.FieldTerminator), nil
}

// EncodeDataField renders indicators, each subfield and the terminator.
func EncodeDataField(f *marc.DataField, tc TextCodec) ([]byte, error) {
	for i, ind := range []byte{f.Indicator1, f.Indicator2} {
		if isReserved(ind) {
			return nil, fieldDiagnostic(SeverityFatal, CodeReservedByte, i, f.Tag(),
				"indicator %d is reserved byte 0x%02X", i+1, ind)
		}
	}
	b := []byte{f.Indicator1, f.Indicator2}
	for _, sf := range f.Subfields {
		if isReserved(sf.Code) {
			return nil, fieldDiagnostic(SeverityFatal, CodeReservedByte, len(b), f.Tag(),
				"subfield code is reserved byte 0x%02X", sf.Code)
		}
		data, err := tc.Encode(sf.Data)
		if err != nil {
			return nil, encodeTextError(f.Tag(), err)
		}
		for i, c := range data {
			if isReserved(c) {
				d := fieldDiagnostic(SeverityFatal, CodeReservedByte, i, f.Tag(),
					"subfield %q contains reserved byte 0x%02X", sf.Code, c)
				return nil, d
			}
		}
		b = append(b, marc.SubfieldDelimiter, sf.Code)
		b = append(b, data...)
	}
	return append(b, marc.FieldTerminator), nil
}

// EncodeField dispatches on the field variant.
func EncodeField(f marc.Field, tc TextCodec) ([]byte, error) {
	switch f := f.(type) {
	case *marc.ControlField:
		return EncodeControlField(f, tc)
	case *marc.DataField:
		return EncodeDataField(f, tc)
	default:
		return nil, fieldDiagnostic(SeverityFatal, CodeReservedByte, 0, f.Tag(), "unknown field variant %T", f)
	}
}

// isReserved reports whether c would be read back as structure rather than data.
func isReserved(c byte) bool {
	return c == marc.SubfieldDelimiter || c == marc.FieldTerminator
}

func trimTerminator(b []byte) ([]byte, bool) {
	if len(b) > 0 && b[len(b)-1] == marc.FieldTerminator {
		return b[:len(b)-1], true
	}
	return b, false
}

func decodeText(b []byte, tc TextCodec, pos int, tag string) (string, *Diagnostic) {
	text, err := tc.Decode(b)
	if err != nil {
		return string(b), fieldDiagnostic(SeverityError, CodeUnmappableText, pos, tag,
			"payload cannot be decoded: %v", err)
	}
	return text, nil
}

func encodeTextError(tag string, err error) *Diagnostic {
	return fieldDiagnostic(SeverityFatal, CodeUnmappableText, 0, tag, "%v", err)
}

func fieldDiagnostic(sev Severity, code Code, pos int, tag, format string, args ...interface{}) *Diagnostic {
	d := newDiagnostic(sev, code, int64(pos), format, args...)
	d.Tag = tag
	return d
}
