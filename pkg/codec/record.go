package codec

import (
	"github.com/ssargent/marcstream/pkg/marc"
)

// RecordCodec encodes whole records with a fixed text encoding policy.
// It holds no per-record state and is safe for concurrent use.
type RecordCodec struct {
	encoding Encoding
}

// NewRecordCodec creates a codec. EncodingAuto follows each record's leader.
func NewRecordCodec(encoding Encoding) *RecordCodec {
	return &RecordCodec{encoding: encoding}
}

// Encoding returns the configured policy.
func (c *RecordCodec) Encoding() Encoding {
	return c.encoding
}

// Encode renders rec as a tape-format record. The record is not modified:
// record length and base address are computed on a copy of its leader.
// When the codec has an explicit encoding the copy's character coding
// scheme is set to match it.
//
// Layout: [Leader(24)][Directory(n*12)][FT][Fields][RT]
func (c *RecordCodec) Encode(rec *marc.Record) ([]byte, error) {
	leader := rec.Leader
	enc := c.encoding.Resolve(leader)
	switch c.encoding {
	case EncodingUTF8:
		leader.CharCodingScheme = marc.CodingSchemeUCS
	case EncodingLatin1:
		leader.CharCodingScheme = marc.CodingSchemeLegacy
	}
	tc := TextCodecFor(enc)
	cn, _ := rec.ControlNumber()

	fields := rec.Fields()
	tags := make([]string, len(fields))
	lengths := make([]int, len(fields))
	bodies := make([][]byte, len(fields))
	dataLen := 0
	for i, f := range fields {
		b, err := EncodeField(f, tc)
		if err != nil {
			return nil, withControlNumber(err, cn)
		}
		if len(b) > maxFieldLength {
			d := fieldDiagnostic(SeverityFatal, CodeFieldTooLong, 0, f.Tag(),
				"field is %d bytes, limit is %d", len(b), maxFieldLength)
			return nil, withControlNumber(d, cn)
		}
		tags[i] = f.Tag()
		lengths[i] = len(b)
		bodies[i] = b
		dataLen += len(b)
	}

	dir, err := EncodeDirectory(LayoutDirectory(tags, lengths))
	if err != nil {
		return nil, withControlNumber(err, cn)
	}

	base := marc.LeaderLength + len(dir)
	if base > maxOffset {
		d := newDiagnostic(SeverityFatal, CodeOffsetOverflow, 0,
			"%d fields need a base address of %d, limit is %d", len(fields), base, maxOffset)
		return nil, withControlNumber(d, cn)
	}
	total := base + dataLen + 1
	if total > maxOffset {
		d := newDiagnostic(SeverityFatal, CodeRecordTooLong, 0,
			"record is %d bytes, limit is %d", total, maxOffset)
		return nil, withControlNumber(d, cn)
	}

	leader.RecordLength = total
	leader.BaseAddressOfData = base
	ldr, err := EncodeLeader(leader)
	if err != nil {
		return nil, withControlNumber(err, cn)
	}

	out := make([]byte, 0, total)
	out = append(out, ldr...)
	out = append(out, dir...)
	for _, b := range bodies {
		out = append(out, b...)
	}
	return append(out, marc.RecordTerminator), nil
}

// EncodeRecord is Encode with a one-off codec.
func EncodeRecord(rec *marc.Record, enc Encoding) ([]byte, error) {
	return NewRecordCodec(enc).Encode(rec)
}

func withControlNumber(err error, cn string) error {
	if d, ok := AsDiagnostic(err); ok && d.ControlNumber == "" {
		d.ControlNumber = cn
	}
	return err
}
