package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/marcstream/pkg/marc"
)

func sampleRecord(t *testing.T) *marc.Record {
	t.Helper()
	rec := marc.NewRecord()
	require.NoError(t, rec.AddField(marc.NewControlField("001", "ocm42")))
	require.NoError(t, rec.AddField(marc.NewControlField("008", "991231s1999    xx")))
	require.NoError(t, rec.AddField(marc.NewDataField("245", '1', '0').
		AddSubfield('a', "Title :").
		AddSubfield('b', "sub.")))
	require.NoError(t, rec.AddField(marc.NewDataField("650", ' ', '0').AddSubfield('a', "Topic")))
	return rec
}

type recorder struct {
	events []Event
}

func (r *recorder) HandleEvent(e Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []Kind {
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func TestEmit_Sequence(t *testing.T) {
	rec := sampleRecord(t)
	r := &recorder{}

	require.NoError(t, Emit([]*marc.Record{rec}, r))

	assert.Equal(t, []Kind{
		StartCollection,
		StartRecord,
		ControlField, ControlField,
		StartDataField, Subfield, Subfield, EndDataField,
		StartDataField, Subfield, EndDataField,
		EndRecord,
		EndCollection,
	}, r.kinds())

	assert.Equal(t, rec.Leader, r.events[1].Leader)
	assert.Equal(t, "001", r.events[2].Tag)
	assert.Equal(t, "ocm42", r.events[2].Data)
	assert.Equal(t, byte('1'), r.events[4].Indicator1)
	assert.Equal(t, byte('0'), r.events[4].Indicator2)
	assert.Equal(t, byte('b'), r.events[6].Code)
	assert.Equal(t, "sub.", r.events[6].Data)
}

func TestEmit_EmptyCollection(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Emit(nil, r))
	assert.Equal(t, []Kind{StartCollection, EndCollection}, r.kinds())
}

func TestEmit_HandlerErrorStops(t *testing.T) {
	stop := errors.New("stop")
	seen := 0
	h := HandlerFunc(func(e Event) error {
		seen++
		if e.Kind == StartDataField {
			return stop
		}
		return nil
	})

	err := Emit([]*marc.Record{sampleRecord(t)}, h)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 5, seen)
}

func TestBuilder_RoundTrip(t *testing.T) {
	first := sampleRecord(t)
	second := marc.NewRecord()
	require.NoError(t, second.AddField(marc.NewDataField("500", ' ', ' ').AddSubfield('a', "Note")))

	b := NewBuilder()
	require.NoError(t, Emit([]*marc.Record{first, second}, b))

	require.Len(t, b.Records(), 2)
	assert.Equal(t, first, b.Records()[0])
	assert.Equal(t, second, b.Records()[1])
}

func TestBuilder_OnRecord(t *testing.T) {
	var got []string
	b := &Builder{OnRecord: func(rec *marc.Record) error {
		cn, _ := rec.ControlNumber()
		got = append(got, cn)
		return nil
	}}

	require.NoError(t, Emit([]*marc.Record{sampleRecord(t), sampleRecord(t)}, b))
	assert.Equal(t, []string{"ocm42", "ocm42"}, got)
	assert.Empty(t, b.Records())
}

func TestBuilder_OutOfOrder(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
	}{
		{"subfield outside data field", []Event{
			{Kind: StartRecord, Leader: marc.NewLeader()},
			{Kind: Subfield, Code: 'a', Data: "x"},
		}},
		{"control field outside record", []Event{
			{Kind: ControlField, Tag: "001", Data: "x"},
		}},
		{"nested record", []Event{
			{Kind: StartRecord, Leader: marc.NewLeader()},
			{Kind: StartRecord, Leader: marc.NewLeader()},
		}},
		{"record ends inside data field", []Event{
			{Kind: StartRecord, Leader: marc.NewLeader()},
			{Kind: StartDataField, Tag: "245"},
			{Kind: EndRecord},
		}},
		{"end data field without start", []Event{
			{Kind: StartRecord, Leader: marc.NewLeader()},
			{Kind: EndDataField, Tag: "245"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			var err error
			for _, e := range tt.events {
				if err = b.HandleEvent(e); err != nil {
					break
				}
			}
			assert.ErrorIs(t, err, ErrOutOfOrder)
		})
	}
}

func TestBuilder_InvalidTag(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.HandleEvent(Event{Kind: StartRecord, Leader: marc.NewLeader()}))

	err := b.HandleEvent(Event{Kind: ControlField, Tag: "0A", Data: "x"})
	assert.ErrorIs(t, err, marc.ErrInvalidTag)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "StartDataField", StartDataField.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
