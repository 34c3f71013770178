package marcxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/event"
	"github.com/ssargent/marcstream/pkg/marc"
)

// ErrInvalidDocument is returned when a document does not follow the
// collection/record/field structure.
var ErrInvalidDocument = errors.New("invalid MARCXML document")

// Reader parses MARCXML and produces events. Elements are matched by local
// name, so documents with or without the slim namespace are accepted. A
// document may have either a collection or a single record as its root.
type Reader struct {
	dec *xml.Decoder

	h          event.Handler
	inRecord   bool
	started    bool
	inField    bool
	fieldTag   string
	text       strings.Builder
	collecting bool
	pending    event.Event
	records    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// Parse reads the whole document and sends its events to h, bracketed by
// StartCollection and EndCollection.
func (r *Reader) Parse(h event.Handler) error {
	r.h = h
	if err := h.HandleEvent(event.Event{Kind: event.StartCollection}); err != nil {
		return err
	}

	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to parse MARCXML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err = r.startElement(t)
		case xml.EndElement:
			err = r.endElement(t)
		case xml.CharData:
			if r.collecting {
				r.text.Write(t)
			}
		}
		if err != nil {
			return err
		}
	}

	if r.inRecord {
		return r.invalid("document ends inside a record")
	}
	return h.HandleEvent(event.Event{Kind: event.EndCollection})
}

func (r *Reader) startElement(t xml.StartElement) error {
	switch t.Name.Local {
	case elemCollection:
		if r.inRecord {
			return r.invalid("collection inside a record")
		}
		return nil

	case elemRecord:
		if r.inRecord {
			return r.invalid("nested record")
		}
		r.inRecord = true
		r.started = false
		r.records++
		return nil

	case elemLeader:
		if !r.inRecord || r.started {
			return r.invalid("misplaced leader")
		}
		r.collect()
		return nil

	case elemControlField:
		if err := r.ensureRecordStarted(); err != nil {
			return err
		}
		tag := attrValue(t, attrTag)
		r.pending = event.Event{Kind: event.ControlField, Tag: tag}
		r.collect()
		return nil

	case elemDataField:
		if err := r.ensureRecordStarted(); err != nil {
			return err
		}
		ind1, err := r.indicator(t, attrInd1)
		if err != nil {
			return err
		}
		ind2, err := r.indicator(t, attrInd2)
		if err != nil {
			return err
		}
		r.inField = true
		r.fieldTag = attrValue(t, attrTag)
		return r.h.HandleEvent(event.Event{
			Kind:       event.StartDataField,
			Tag:        r.fieldTag,
			Indicator1: ind1,
			Indicator2: ind2,
		})

	case elemSubfield:
		if !r.inField {
			return r.invalid("subfield outside a datafield")
		}
		code := attrValue(t, attrCode)
		if len(code) != 1 {
			return r.invalid("subfield code %q must be a single byte", code)
		}
		r.pending = event.Event{Kind: event.Subfield, Tag: r.fieldTag, Code: code[0]}
		r.collect()
		return nil
	}

	// Unknown elements are skipped along with their content.
	return r.dec.Skip()
}

func (r *Reader) endElement(t xml.EndElement) error {
	switch t.Name.Local {
	case elemLeader:
		text := r.flushText()
		leader, err := codec.DecodeLeader([]byte(text))
		if err != nil {
			return fmt.Errorf("record %d: %w", r.records, err)
		}
		r.started = true
		return r.h.HandleEvent(event.Event{Kind: event.StartRecord, Leader: leader})

	case elemControlField:
		e := r.pending
		e.Data = r.flushText()
		return r.h.HandleEvent(e)

	case elemSubfield:
		e := r.pending
		e.Data = r.flushText()
		return r.h.HandleEvent(e)

	case elemDataField:
		r.inField = false
		return r.h.HandleEvent(event.Event{Kind: event.EndDataField, Tag: r.fieldTag})

	case elemRecord:
		if err := r.ensureRecordStarted(); err != nil {
			return err
		}
		r.inRecord = false
		return r.h.HandleEvent(event.Event{Kind: event.EndRecord})
	}
	return nil
}

// ensureRecordStarted emits StartRecord with a default leader for records
// whose leader element is missing.
func (r *Reader) ensureRecordStarted() error {
	if !r.inRecord {
		return r.invalid("field outside a record")
	}
	if r.started {
		return nil
	}
	r.started = true
	return r.h.HandleEvent(event.Event{Kind: event.StartRecord, Leader: marc.NewLeader()})
}

func (r *Reader) indicator(t xml.StartElement, name string) (byte, error) {
	v := attrValue(t, name)
	switch len(v) {
	case 0:
		return marc.Blank, nil
	case 1:
		return v[0], nil
	}
	return 0, r.invalid("indicator %s=%q must be a single byte", name, v)
}

func (r *Reader) collect() {
	r.collecting = true
	r.text.Reset()
}

func (r *Reader) flushText() string {
	r.collecting = false
	s := r.text.String()
	r.text.Reset()
	return s
}

func (r *Reader) invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s (offset %d)", ErrInvalidDocument, fmt.Sprintf(format, args...), r.dec.InputOffset())
}

func attrValue(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Decode parses a MARCXML document into records.
func Decode(r io.Reader) ([]*marc.Record, error) {
	b := event.NewBuilder()
	if err := NewReader(r).Parse(b); err != nil {
		return nil, err
	}
	return b.Records(), nil
}

// Unmarshal parses a MARCXML document held in memory.
func Unmarshal(data []byte) ([]*marc.Record, error) {
	return Decode(bytes.NewReader(data))
}
