package stream

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
)

// Writer appends encoded records to an io.Writer. Each Write either emits a
// whole record or nothing.
type Writer struct {
	writer *bufio.Writer
	closer io.Closer
	codec  *codec.RecordCodec
	config WriterConfig
	mutex  sync.Mutex
	offset int64 // bytes written so far
}

// NewWriter creates a writer over w. The caller keeps ownership of w and
// must call Flush before using what was written.
func NewWriter(w io.Writer, config WriterConfig) *Writer {
	size := config.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Writer{
		writer: bufio.NewWriterSize(w, size),
		codec:  codec.NewRecordCodec(config.Encoding),
		config: config,
	}
}

// Create opens path for writing, truncating it, and creates its directory
// if needed. Close flushes and closes the file.
func Create(path string, config WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	w := NewWriter(file, config)
	w.closer = file
	return w, nil
}

// Write encodes rec and buffers it. It returns the offset at which the
// record starts.
func (w *Writer) Write(rec *marc.Record) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	data, err := w.codec.Encode(rec)
	if err != nil {
		return 0, err
	}

	n, err := w.writer.Write(data)
	if err != nil {
		return 0, err
	}

	recordOffset := w.offset
	w.offset += int64(n)
	if w.config.Observer != nil {
		w.config.Observer.RecordWritten(n)
	}
	return recordOffset, nil
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.writer.Flush()
}

// Offset returns the number of bytes written so far, buffered included.
func (w *Writer) Offset() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Close flushes and, for writers created by Create, closes the file.
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.writer.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
