package stream

import (
	"testing"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/stretchr/testify/require"
)

// rawRecord assembles a record byte by byte so tests can break any part of
// it. dir is the directory without its terminator.
func rawRecord(t *testing.T, scheme byte, dir string, fields ...string) []byte {
	t.Helper()
	data := 0
	for _, f := range fields {
		data += len(f)
	}

	l := marc.NewLeader()
	l.CharCodingScheme = scheme
	l.BaseAddressOfData = marc.LeaderLength + len(dir) + 1
	l.RecordLength = l.BaseAddressOfData + data + 1
	leader, err := codec.EncodeLeader(l)
	require.NoError(t, err)

	out := append(leader, dir...)
	out = append(out, marc.FieldTerminator)
	for _, f := range fields {
		out = append(out, f...)
	}
	return append(out, marc.RecordTerminator)
}

func sampleRecord(t *testing.T) *marc.Record {
	t.Helper()
	rec := marc.NewRecord()
	require.NoError(t, rec.AddField(marc.NewControlField("001", "ocm00012345")))
	require.NoError(t, rec.AddField(marc.NewControlField("008", "840924s1984    nyu           000 0 eng  ")))
	require.NoError(t, rec.AddField(marc.NewDataField("100", '1', ' ').AddSubfield('a', "Tolkien, J. R. R.")))
	require.NoError(t, rec.AddField(marc.NewDataField("245", '1', '4').
		AddSubfield('a', "The hobbit :").
		AddSubfield('b', "or, There and back again /").
		AddSubfield('c', "J.R.R. Tolkien.")))
	require.NoError(t, rec.AddField(marc.NewDataField("650", ' ', '0').AddSubfield('a', "Middle Earth")))
	require.NoError(t, rec.AddField(marc.NewDataField("650", ' ', '0').AddSubfield('a', "Hobbits")))
	return rec
}

type countingObserver struct {
	read, written           int
	bytesRead, bytesWritten int
}

func (o *countingObserver) RecordRead(n int) {
	o.read++
	o.bytesRead += n
}

func (o *countingObserver) RecordWritten(n int) {
	o.written++
	o.bytesWritten += n
}
