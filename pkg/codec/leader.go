package codec

import (
	"fmt"

	"github.com/ssargent/marcstream/pkg/marc"
)

// DecodeLeader parses the 24-byte header. Any non-numeric numeric slot is a
// fatal InvalidLeader diagnostic, since the directory cannot be located
// without it.
func DecodeLeader(b []byte) (marc.Leader, error) {
	var l marc.Leader
	if len(b) != marc.LeaderLength {
		return l, newDiagnostic(SeverityFatal, CodeInvalidLeader, 0,
			"leader is %d bytes, want %d", len(b), marc.LeaderLength)
	}

	var err error
	if l.RecordLength, err = parseDigits(b, 0, 5, "record length"); err != nil {
		return l, err
	}
	l.RecordStatus = b[5]
	l.TypeOfRecord = b[6]
	copy(l.ImplDefined1[:], b[7:9])
	l.CharCodingScheme = b[9]
	if l.IndicatorCount, err = parseDigits(b, 10, 1, "indicator count"); err != nil {
		return l, err
	}
	if l.SubfieldCodeLength, err = parseDigits(b, 11, 1, "subfield code length"); err != nil {
		return l, err
	}
	if l.BaseAddressOfData, err = parseDigits(b, 12, 5, "base address of data"); err != nil {
		return l, err
	}
	copy(l.ImplDefined2[:], b[17:20])
	copy(l.EntryMap[:], b[20:24])
	return l, nil
}

// EncodeLeader renders l into 24 bytes, zero-padding numeric slots. Values
// that do not fit their slot are an ErrEncodeOverflow.
func EncodeLeader(l marc.Leader) ([]byte, error) {
	b := make([]byte, 0, marc.LeaderLength)
	var err error

	if b, err = appendDigits(b, l.RecordLength, 5, CodeRecordTooLong, "record length"); err != nil {
		return nil, err
	}
	b = append(b, l.RecordStatus, l.TypeOfRecord)
	b = append(b, l.ImplDefined1[:]...)
	b = append(b, l.CharCodingScheme)
	if b, err = appendDigits(b, l.IndicatorCount, 1, CodeOffsetOverflow, "indicator count"); err != nil {
		return nil, err
	}
	if b, err = appendDigits(b, l.SubfieldCodeLength, 1, CodeOffsetOverflow, "subfield code length"); err != nil {
		return nil, err
	}
	if b, err = appendDigits(b, l.BaseAddressOfData, 5, CodeOffsetOverflow, "base address of data"); err != nil {
		return nil, err
	}
	b = append(b, l.ImplDefined2[:]...)
	b = append(b, l.EntryMap[:]...)
	return b, nil
}

// parseDigits reads a fixed-width ASCII decimal. strconv would accept signs,
// which the format does not.
func parseDigits(b []byte, off, width int, name string) (int, error) {
	n, ok := atoi(b[off : off+width])
	if !ok {
		return 0, newDiagnostic(SeverityFatal, CodeInvalidLeader, int64(off),
			"%s %q is not numeric", name, b[off:off+width])
	}
	return n, nil
}

func atoi(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

var maxForWidth = [...]int{0, 9, 99, 999, 9999, 99999}

// appendDigits writes n zero-padded to width.
func appendDigits(b []byte, n, width int, code Code, name string) ([]byte, error) {
	if n < 0 || n > maxForWidth[width] {
		return b, newDiagnostic(SeverityFatal, code, 0,
			"%s %d does not fit in %d digits", name, n, width)
	}
	return append(b, fmt.Sprintf("%0*d", width, n)...), nil
}
