// Package marcxml converts between records and MARCXML documents in the
// MARC21 slim schema.
//
// The package sits on the event surface: Writer is an event.Handler that
// renders events as XML, and Reader parses a document and produces events.
// Either side can be paired with event.Emit or event.Builder:
//
//	// records -> MARCXML
//	w := marcxml.NewWriter(out)
//	err := event.Emit(records, w)
//
//	// MARCXML -> records
//	records, err := marcxml.Decode(in)
//
// The leader is written as its 24-character tape form. Text is always UTF-8
// in the document regardless of the leader's coding scheme.
package marcxml

// Namespace is the MARC21 slim schema namespace.
const Namespace = "http://www.loc.gov/MARC21/slim"

const (
	elemCollection   = "collection"
	elemRecord       = "record"
	elemLeader       = "leader"
	elemControlField = "controlfield"
	elemDataField    = "datafield"
	elemSubfield     = "subfield"

	attrTag  = "tag"
	attrInd1 = "ind1"
	attrInd2 = "ind2"
	attrCode = "code"
)
