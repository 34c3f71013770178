package stream_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/ssargent/marcstream/pkg/stream"
)

// ExampleWriter demonstrates encoding a record built in code
func ExampleWriter() {
	rec := marc.NewRecord()
	if err := rec.AddField(marc.NewControlField("001", "12345")); err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	w := stream.NewWriter(&buf, stream.WriterConfig{})
	if _, err := w.Write(rec); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", buf.Len())
	fmt.Printf("Leader: %q\n", buf.String()[:24])

	// Output:
	// Encoded 44 bytes
	// Leader: "00044nam  2200037   4500"
}

// ExampleReader demonstrates decoding with collected diagnostics
func ExampleReader() {
	rec := marc.NewRecord()
	_ = rec.AddField(marc.NewControlField("001", "ocm42"))
	_ = rec.AddField(marc.NewDataField("245", '0', '0').AddSubfield('a', "Foo").AddSubfield('b', "Bar"))
	data, err := stream.Marshal(rec)
	if err != nil {
		log.Fatal(err)
	}

	collector := codec.NewCollector()
	r := stream.NewReader(bytes.NewReader(data), stream.ReaderConfig{ErrorHandler: collector})
	it := r.Iterator()
	for it.Next() {
		for _, f := range it.Record().Fields() {
			switch f := f.(type) {
			case *marc.ControlField:
				fmt.Printf("%s %s\n", f.Tag(), f.Data)
			case *marc.DataField:
				for _, sf := range f.Subfields {
					fmt.Printf("%s $%c %s\n", f.Tag(), sf.Code, sf.Data)
				}
			}
		}
	}
	if err := it.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Diagnostics: %d\n", len(collector.All()))

	// Output:
	// 001 ocm42
	// 245 $a Foo
	// 245 $b Bar
	// Diagnostics: 0
}
