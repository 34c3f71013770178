package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/event"
	"github.com/ssargent/marcstream/pkg/marcxml"
	"github.com/ssargent/marcstream/pkg/stream"
)

// toxmlCmd represents the toxml command
var toxmlCmd = &cobra.Command{
	Use:   "toxml [file]",
	Short: "Convert tape-format records to MARCXML",
	Long: `Convert tape-format records into a MARCXML collection document.

Records are streamed: each one is written as soon as it is decoded. A fatal
decoding problem stops the conversion after the records before it.

Examples:
  marc toxml records.mrc -o records.xml
  cat records.mrc | marc toxml > records.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		outPath, _ := cmd.Flags().GetString("output")

		cfg, err := readerConfig(cmd, nil)
		if err != nil {
			return err
		}

		in, name, err := openInput(cmd, path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := openOutput(cmd, outPath)
		if err != nil {
			return err
		}
		defer out.Close()

		cfg.Source = name
		count, err := convertToXML(stream.NewReader(in, cfg), marcxml.NewWriter(out))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, err := out.Write([]byte("\n")); err != nil {
			return err
		}

		if outPath != "" && outPath != "-" {
			cmd.Printf("Converted %d records to %s\n", count, outPath)
		}
		return nil
	},
}

// convertToXML streams every record from r into w as one collection. The
// collection is closed even when decoding stops early.
func convertToXML(r *stream.Reader, w *marcxml.Writer) (int, error) {
	if err := w.HandleEvent(event.Event{Kind: event.StartCollection}); err != nil {
		return 0, err
	}

	count := 0
	it := r.Iterator()
	for it.Next() {
		if err := event.EmitRecord(it.Record(), w); err != nil {
			return count, err
		}
		count++
	}

	if err := w.HandleEvent(event.Event{Kind: event.EndCollection}); err != nil {
		return count, err
	}
	return count, it.Err()
}

func init() {
	rootCmd.AddCommand(toxmlCmd)
	toxmlCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	addEncodingFlag(toxmlCmd, "Input text encoding: auto, latin1 or utf8 (default from config)")
}
