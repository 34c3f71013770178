package stream

import (
	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
)

// ReaderConfig holds configuration for a stream reader.
type ReaderConfig struct {
	Encoding     codec.Encoding     // EncodingAuto resolves from the first leader
	ErrorHandler codec.ErrorHandler // receives warnings, errors and fatal diagnostics
	Source       string             // name attached to diagnostics, usually a file path
	BufferSize   int                // read buffer size (0 = default)
	Observer     Observer           // optional
}

// WriterConfig holds configuration for a stream writer.
type WriterConfig struct {
	Encoding   codec.Encoding // EncodingAuto follows each record's leader
	BufferSize int            // write buffer size (0 = default)
	Observer   Observer       // optional
}

// Observer is told about every record that crosses a reader or writer.
type Observer interface {
	RecordRead(bytes int)
	RecordWritten(bytes int)
}

// RecordIterator provides streaming access to records.
type RecordIterator interface {
	Next() bool
	Record() *marc.Record
	Err() error
}

const defaultBufferSize = 64 * 1024
