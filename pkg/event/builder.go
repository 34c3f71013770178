package event

import (
	"fmt"

	"github.com/ssargent/marcstream/pkg/marc"
)

// Builder is a Handler that assembles records from events. Completed records
// are passed to OnRecord when set, otherwise accumulated and available from
// Records.
type Builder struct {
	OnRecord func(*marc.Record) error

	records []*marc.Record
	current *marc.Record
	field   *marc.DataField
}

// NewBuilder returns a Builder that accumulates records.
func NewBuilder() *Builder {
	return &Builder{}
}

// Records returns the records completed so far.
func (b *Builder) Records() []*marc.Record {
	return b.records
}

// HandleEvent implements Handler.
func (b *Builder) HandleEvent(e Event) error {
	switch e.Kind {
	case StartCollection, EndCollection:
		if b.current != nil {
			return b.outOfOrder(e)
		}
		return nil

	case StartRecord:
		if b.current != nil {
			return b.outOfOrder(e)
		}
		b.current = marc.NewRecordWithLeader(e.Leader)
		return nil

	case ControlField:
		if b.current == nil || b.field != nil {
			return b.outOfOrder(e)
		}
		return b.current.AddField(marc.NewControlField(e.Tag, e.Data))

	case StartDataField:
		if b.current == nil || b.field != nil {
			return b.outOfOrder(e)
		}
		b.field = marc.NewDataField(e.Tag, e.Indicator1, e.Indicator2)
		return nil

	case Subfield:
		if b.field == nil {
			return b.outOfOrder(e)
		}
		b.field.AddSubfield(e.Code, e.Data)
		return nil

	case EndDataField:
		if b.field == nil {
			return b.outOfOrder(e)
		}
		f := b.field
		b.field = nil
		return b.current.AddField(f)

	case EndRecord:
		if b.current == nil || b.field != nil {
			return b.outOfOrder(e)
		}
		rec := b.current
		b.current = nil
		if b.OnRecord != nil {
			return b.OnRecord(rec)
		}
		b.records = append(b.records, rec)
		return nil
	}

	return fmt.Errorf("unknown event kind %d", int(e.Kind))
}

func (b *Builder) outOfOrder(e Event) error {
	return fmt.Errorf("%w: %s", ErrOutOfOrder, e.Kind)
}
