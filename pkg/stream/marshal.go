package stream

import (
	"bytes"
	"io"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
)

// Marshal encodes a single record, following its leader's coding scheme.
func Marshal(rec *marc.Record) ([]byte, error) {
	return codec.EncodeRecord(rec, codec.EncodingAuto)
}

// Unmarshal decodes the first record in data. An empty input is io.EOF.
func Unmarshal(data []byte, config ReaderConfig) (*marc.Record, error) {
	return NewReader(bytes.NewReader(data), config).Next()
}

// UnmarshalAll decodes every record in data.
func UnmarshalAll(data []byte, config ReaderConfig) ([]*marc.Record, error) {
	return NewReader(bytes.NewReader(data), config).ReadAll()
}

// Copy re-encodes every record from r into w and returns how many were
// copied. It stops at the first fatal read error or encode error.
func Copy(w *Writer, r *Reader) (int, error) {
	n := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if _, err := w.Write(rec); err != nil {
			return n, err
		}
		n++
	}
}
