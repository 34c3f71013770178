// Package marc holds the in-memory bibliographic record model shared by the
// binary codec, the stream reader and writer, and the MARCXML adapter.
//
// A Record is one Leader plus an ordered list of control fields and an
// ordered list of data fields. Fields are partitioned strictly by tag: tags
// whose first two characters are '0' are control fields, everything else is a
// data field. The control-number field (tag "001") is unique and always kept
// first among the control fields.
//
// Field is a closed variant. Callers switch on the concrete type (or on
// Kind) rather than probing for behaviour:
//
//	for _, f := range rec.Fields() {
//	    switch f := f.(type) {
//	    case *marc.ControlField:
//	        fmt.Println(f.Tag(), f.Data)
//	    case *marc.DataField:
//	        fmt.Println(f.Tag(), len(f.Subfields))
//	    }
//	}
//
// Records are not safe for concurrent mutation. A record handed out by a
// reader belongs to the caller.
package marc
