package marcxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/event"
	"github.com/ssargent/marcstream/pkg/marc"
)

// Writer renders events as MARCXML. It implements event.Handler.
//
// Text that XML 1.0 cannot carry, such as the ESC bytes of MARC-8 escape
// sequences or invalid UTF-8, is rejected with a fatal UnmappableText
// diagnostic before the element holding it is written.
type Writer struct {
	enc           *xml.Encoder
	inCollection  bool
	started       bool
	controlNumber string
}

// NewWriter returns a Writer that indents its output with two spaces.
func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{enc: enc}
}

// HandleEvent implements event.Handler.
func (w *Writer) HandleEvent(e event.Event) error {
	switch e.Kind {
	case event.StartCollection:
		if err := w.header(); err != nil {
			return err
		}
		w.inCollection = true
		return w.start(elemCollection, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace})

	case event.EndCollection:
		w.inCollection = false
		if err := w.end(elemCollection); err != nil {
			return err
		}
		return w.enc.Flush()

	case event.StartRecord:
		leader, err := codec.EncodeLeader(e.Leader)
		if err != nil {
			return fmt.Errorf("failed to write leader: %w", err)
		}
		var attrs []xml.Attr
		if !w.inCollection {
			if err := w.header(); err != nil {
				return err
			}
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace})
		}
		w.controlNumber = ""
		if err := w.check("", string(leader)); err != nil {
			return err
		}
		if err := w.start(elemRecord, attrs...); err != nil {
			return err
		}
		return w.element(elemLeader, string(leader))

	case event.ControlField:
		if e.Tag == marc.ControlNumberTag {
			w.controlNumber = e.Data
		}
		if err := w.check(e.Tag, e.Tag, e.Data); err != nil {
			return err
		}
		return w.element(elemControlField, e.Data, attr(attrTag, e.Tag))

	case event.StartDataField:
		ind1, ind2 := string(rune(e.Indicator1)), string(rune(e.Indicator2))
		if err := w.check(e.Tag, e.Tag, ind1, ind2); err != nil {
			return err
		}
		return w.start(elemDataField,
			attr(attrTag, e.Tag),
			attr(attrInd1, ind1),
			attr(attrInd2, ind2))

	case event.Subfield:
		code := string(rune(e.Code))
		if err := w.check(e.Tag, code, e.Data); err != nil {
			return err
		}
		return w.element(elemSubfield, e.Data, attr(attrCode, code))

	case event.EndDataField:
		return w.end(elemDataField)

	case event.EndRecord:
		if err := w.end(elemRecord); err != nil {
			return err
		}
		return w.enc.Flush()
	}

	return fmt.Errorf("unknown event kind %d", int(e.Kind))
}

// WriteRecord writes a single record. Outside a collection the record
// element carries the namespace itself.
func (w *Writer) WriteRecord(rec *marc.Record) error {
	return event.EmitRecord(rec, w)
}

// Flush writes any buffered XML to the underlying writer.
func (w *Writer) Flush() error {
	return w.enc.Flush()
}

// header writes the XML declaration once, before the first element.
func (w *Writer) header() error {
	if w.started {
		return nil
	}
	w.started = true
	return w.enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)})
}

func (w *Writer) start(name string, attrs ...xml.Attr) error {
	return w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (w *Writer) end(name string) error {
	return w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *Writer) element(name, text string, attrs ...xml.Attr) error {
	if err := w.start(name, attrs...); err != nil {
		return err
	}
	if err := w.enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return w.end(name)
}

// check returns a fatal diagnostic for the first value holding a character
// outside the XML 1.0 Char production or an invalid UTF-8 sequence.
func (w *Writer) check(tag string, values ...string) error {
	for _, v := range values {
		for i := 0; i < len(v); {
			r, size := utf8.DecodeRuneInString(v[i:])
			if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
				d := codec.NewDiagnostic(codec.SeverityFatal, codec.CodeUnmappableText, int64(i),
					"byte 0x%02X cannot be represented in XML", v[i])
				d.Tag = tag
				d.ControlNumber = w.controlNumber
				return d
			}
			i += size
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Marshal renders records as a MARCXML collection document.
func Marshal(records []*marc.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := event.Emit(records, NewWriter(&buf)); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
