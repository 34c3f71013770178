package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
)

type readerState int

const (
	stateAwaitLeader readerState = iota
	stateAwaitDirectory
	stateAwaitFields
	stateRecordComplete
	stateEnd
	stateFatal
)

// maxScanLength bounds the terminator scan used when a directory entry has
// no readable length.
const maxScanLength = 9999

// Reader decodes a byte stream into records, one per Next call. It is a
// forward-only, non-restartable sequence and is not safe for concurrent use.
type Reader struct {
	id       ksuid.KSUID
	reader   *bufio.Reader
	closer   io.Closer
	config   ReaderConfig
	encoding codec.Encoding
	text     codec.TextCodec
	offset   int64
	state    readerState
	err      error

	// per record
	recordStart   int64
	consumed      int
	leader        marc.Leader
	entries       []codec.DirectoryEntry
	record        *marc.Record
	controlNumber string
}

// NewReader creates a reader over r. The caller keeps ownership of r.
func NewReader(r io.Reader, config ReaderConfig) *Reader {
	size := config.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Reader{
		id:     ksuid.New(),
		reader: bufio.NewReaderSize(r, size),
		config: config,
	}
}

// Open creates a reader for the file at path. Close releases the file.
func Open(path string, config ReaderConfig) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if config.Source == "" {
		config.Source = path
	}
	r := NewReader(file, config)
	r.closer = file
	return r, nil
}

// ID identifies this reader in logs and diagnostics.
func (r *Reader) ID() ksuid.KSUID {
	return r.id
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Encoding returns the resolved text encoding, or EncodingAuto before the
// first leader has been read.
func (r *Reader) Encoding() codec.Encoding {
	if r.text == nil {
		return r.config.Encoding
	}
	return r.encoding
}

// Next decodes the next record. It returns io.EOF when the input ends
// cleanly between records. Any other error is fatal: it is returned by this
// and every later call.
func (r *Reader) Next() (*marc.Record, error) {
	switch r.state {
	case stateFatal:
		return nil, r.err
	case stateEnd:
		return nil, io.EOF
	}

	r.state = stateAwaitLeader
	for {
		var err error
		switch r.state {
		case stateAwaitLeader:
			err = r.readLeader()
		case stateAwaitDirectory:
			err = r.readDirectory()
		case stateAwaitFields:
			err = r.readFields()
		case stateRecordComplete:
			r.finishRecord()
			rec := r.record
			r.record = nil
			r.state = stateAwaitLeader
			if r.config.Observer != nil {
				r.config.Observer.RecordRead(r.consumed)
			}
			return rec, nil
		}

		if errors.Is(err, io.EOF) {
			r.state = stateEnd
			return nil, io.EOF
		}
		if err != nil {
			return nil, r.fail(err)
		}
	}
}

// Iterator returns a streaming iterator over the remaining records.
func (r *Reader) Iterator() RecordIterator {
	return &readerIterator{reader: r}
}

// ReadAll drains the reader. Records decoded before a fatal error are
// returned alongside it.
func (r *Reader) ReadAll() ([]*marc.Record, error) {
	var records []*marc.Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Close closes the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) readLeader() error {
	r.recordStart = r.offset
	r.consumed = 0
	r.controlNumber = ""
	r.entries = nil

	buf := make([]byte, marc.LeaderLength)
	if err := r.readFull(buf); err != nil {
		return err
	}

	leader, err := codec.DecodeLeader(buf)
	if err != nil {
		if d, ok := codec.AsDiagnostic(err); ok {
			d.Position += r.recordStart
		}
		return err
	}
	if codec.DirectoryLength(leader) < 0 {
		return codec.NewDiagnostic(codec.SeverityFatal, codec.CodeInvalidLeader, r.recordStart+12,
			"base address of data %d leaves no room for the directory", leader.BaseAddressOfData)
	}

	// Resolved once per stream from the first leader.
	if r.text == nil {
		r.encoding = r.config.Encoding.Resolve(leader)
		r.text = codec.TextCodecFor(r.encoding)
	}
	r.leader = leader
	r.record = marc.NewRecordWithLeader(leader)
	r.state = stateAwaitDirectory
	return nil
}

func (r *Reader) readDirectory() error {
	base := r.offset
	buf := make([]byte, r.leader.BaseAddressOfData-marc.LeaderLength)
	if err := r.readFull(buf); err != nil {
		return err
	}

	entries, diags := codec.DecodeDirectory(buf)
	for _, d := range diags {
		r.report(d, base)
	}
	r.entries = entries
	r.state = stateAwaitFields
	return nil
}

func (r *Reader) readFields() error {
	for _, e := range r.entries {
		base := r.offset
		data, err := r.readField(e)
		if err != nil {
			return err
		}

		var (
			field marc.Field
			diags []*codec.Diagnostic
		)
		if marc.IsControlTag(e.Tag) {
			var cf *marc.ControlField
			cf, diags = codec.DecodeControlField(e.Tag, data, r.text)
			if marc.IsControlNumberTag(e.Tag) {
				r.controlNumber = cf.Data
			}
			field = cf
		} else {
			field, diags = codec.DecodeDataField(e.Tag, data, r.text)
		}
		for _, d := range diags {
			r.report(d, base)
		}

		if err := r.record.AddField(field); err != nil {
			d := codec.NewDiagnostic(codec.SeverityError, codec.CodeInvalidDirectoryEntry, 0, "%v", err)
			d.Tag = e.Tag
			r.report(d, base)
		}
	}
	r.state = stateRecordComplete
	return nil
}

func (r *Reader) readField(e codec.DirectoryEntry) ([]byte, error) {
	if e.Length != codec.UnknownLength {
		buf := make([]byte, e.Length)
		if err := r.readFull(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	var buf []byte
	for len(buf) < maxScanLength {
		c, err := r.reader.ReadByte()
		if err != nil {
			return nil, r.truncated(err)
		}
		r.offset++
		r.consumed++
		buf = append(buf, c)
		if c == marc.FieldTerminator {
			break
		}
	}
	return buf, nil
}

func (r *Reader) finishRecord() {
	next, err := r.reader.Peek(1)
	if err == nil && next[0] == marc.RecordTerminator {
		_, _ = r.reader.ReadByte()
		r.offset++
		r.consumed++
	} else {
		d := codec.NewDiagnostic(codec.SeverityWarning, codec.CodeRecordNotTerminated, 0,
			"expected record terminator")
		r.report(d, r.offset)
	}

	if r.consumed != r.leader.RecordLength {
		d := codec.NewDiagnostic(codec.SeverityWarning, codec.CodeRecordLengthMismatch, 0,
			"leader declares %d bytes, read %d", r.leader.RecordLength, r.consumed)
		r.report(d, r.recordStart)
	}
}

// readFull fills buf. End of input before the first byte of a record is a
// clean io.EOF; anywhere else it is a truncated record.
func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.reader, buf)
	r.offset += int64(n)
	r.consumed += n
	if err == nil {
		return nil
	}
	if err == io.EOF && r.consumed == 0 {
		return io.EOF
	}
	return r.truncated(err)
}

func (r *Reader) truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return codec.NewDiagnostic(codec.SeverityFatal, codec.CodeTruncatedRecord, r.offset,
			"input ended %d bytes into a record", r.consumed)
	}
	return fmt.Errorf("read record at offset %d: %w", r.offset, err)
}

func (r *Reader) report(d *codec.Diagnostic, base int64) {
	d.Position += base
	r.annotate(d)
	codec.Report(r.config.ErrorHandler, d)
}

func (r *Reader) annotate(d *codec.Diagnostic) {
	if d.ControlNumber == "" {
		d.ControlNumber = r.controlNumber
	}
	d.Source = r.config.Source
	d.Stream = r.id.String()
}

func (r *Reader) fail(err error) error {
	if d, ok := codec.AsDiagnostic(err); ok {
		r.annotate(d)
		codec.Report(r.config.ErrorHandler, d)
	}
	r.state = stateFatal
	r.err = err
	r.record = nil
	return err
}

type readerIterator struct {
	reader *Reader
	record *marc.Record
	err    error
}

func (it *readerIterator) Next() bool {
	it.record, it.err = it.reader.Next()
	return it.err == nil
}

func (it *readerIterator) Record() *marc.Record {
	return it.record
}

// Err returns the fatal error that ended iteration, or nil at clean EOF.
func (it *readerIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}
