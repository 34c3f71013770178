package codec

import (
	"bufio"
	"io"

	"github.com/ssargent/marcstream/pkg/marc"
)

// WriteText writes a readable dump of rec: a LEADER line followed by one
// line per field, control fields first.
func WriteText(w io.Writer, rec *marc.Record) error {
	leader, err := EncodeLeader(rec.Leader)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("LEADER ")
	_, _ = bw.Write(leader)
	_ = bw.WriteByte('\n')
	for _, f := range rec.Fields() {
		_, _ = bw.WriteString(f.String())
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}
