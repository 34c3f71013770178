package api

import (
	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
)

// toRecordJSON converts a record to its JSON form
func toRecordJSON(rec *marc.Record) (RecordJSON, error) {
	leader, err := codec.EncodeLeader(rec.Leader)
	if err != nil {
		return RecordJSON{}, err
	}

	out := RecordJSON{Leader: string(leader)}
	for _, cf := range rec.ControlFields() {
		out.ControlFields = append(out.ControlFields, ControlFieldJSON{Tag: cf.Tag(), Data: cf.Data})
	}
	for _, df := range rec.DataFields() {
		dj := DataFieldJSON{
			Tag:       df.Tag(),
			Ind1:      string(df.Indicator1),
			Ind2:      string(df.Indicator2),
			Subfields: make([]SubfieldJSON, 0, len(df.Subfields)),
		}
		for _, sf := range df.Subfields {
			dj.Subfields = append(dj.Subfields, SubfieldJSON{Code: string(sf.Code), Data: sf.Data})
		}
		out.DataFields = append(out.DataFields, dj)
	}
	return out, nil
}

func toDiagnosticJSON(diags []*codec.Diagnostic) []DiagnosticJSON {
	out := make([]DiagnosticJSON, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticJSON{
			Severity:      d.Severity.String(),
			Code:          string(d.Code),
			Message:       d.Message,
			Position:      d.Position,
			ControlNumber: d.ControlNumber,
			Tag:           d.Tag,
		})
	}
	return out
}
