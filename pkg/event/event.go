// Package event exposes records as a flat sequence of parse events.
//
// A collection of records becomes:
//
//	StartCollection
//	  StartRecord(leader)
//	    ControlField(tag, data) ...
//	    StartDataField(tag, ind1, ind2)
//	      Subfield(code, data) ...
//	    EndDataField(tag)
//	    ...
//	  EndRecord
//	  ...
//	EndCollection
//
// Emit walks records and produces the events; Builder consumes them and
// reassembles records. Markup adapters sit on either side of this surface.
package event

import (
	"errors"
	"fmt"

	"github.com/ssargent/marcstream/pkg/marc"
)

// Kind identifies an event.
type Kind int

const (
	StartCollection Kind = iota
	StartRecord
	ControlField
	StartDataField
	Subfield
	EndDataField
	EndRecord
	EndCollection
)

var kindNames = [...]string{
	StartCollection: "StartCollection",
	StartRecord:     "StartRecord",
	ControlField:    "ControlField",
	StartDataField:  "StartDataField",
	Subfield:        "Subfield",
	EndDataField:    "EndDataField",
	EndRecord:       "EndRecord",
	EndCollection:   "EndCollection",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is a single parse event. Only the fields relevant to Kind are set.
type Event struct {
	Kind       Kind
	Leader     marc.Leader // StartRecord
	Tag        string      // ControlField, StartDataField, EndDataField
	Data       string      // ControlField, Subfield
	Indicator1 byte        // StartDataField
	Indicator2 byte        // StartDataField
	Code       byte        // Subfield
}

// Handler receives events in order. Returning an error stops emission.
type Handler interface {
	HandleEvent(Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event) error

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) error {
	return f(e)
}

// ErrOutOfOrder is returned by Builder when an event arrives in a state that
// cannot accept it.
var ErrOutOfOrder = errors.New("event out of order")

// Emit sends a whole collection to h, bracketed by StartCollection and
// EndCollection.
func Emit(records []*marc.Record, h Handler) error {
	if err := h.HandleEvent(Event{Kind: StartCollection}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := EmitRecord(rec, h); err != nil {
			return err
		}
	}
	return h.HandleEvent(Event{Kind: EndCollection})
}

// EmitRecord sends the events of a single record, from StartRecord to
// EndRecord. Control fields come first, then data fields, each in order.
func EmitRecord(rec *marc.Record, h Handler) error {
	if err := h.HandleEvent(Event{Kind: StartRecord, Leader: rec.Leader}); err != nil {
		return err
	}

	for _, cf := range rec.ControlFields() {
		if err := h.HandleEvent(Event{Kind: ControlField, Tag: cf.Tag(), Data: cf.Data}); err != nil {
			return err
		}
	}

	for _, df := range rec.DataFields() {
		start := Event{Kind: StartDataField, Tag: df.Tag(), Indicator1: df.Indicator1, Indicator2: df.Indicator2}
		if err := h.HandleEvent(start); err != nil {
			return err
		}
		for _, sf := range df.Subfields {
			if err := h.HandleEvent(Event{Kind: Subfield, Tag: df.Tag(), Code: sf.Code, Data: sf.Data}); err != nil {
				return err
			}
		}
		if err := h.HandleEvent(Event{Kind: EndDataField, Tag: df.Tag()}); err != nil {
			return err
		}
	}

	return h.HandleEvent(Event{Kind: EndRecord})
}
