package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/event"
	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/ssargent/marcstream/pkg/marcxml"
	"github.com/ssargent/marcstream/pkg/stream"
)

// fromxmlCmd represents the fromxml command
var fromxmlCmd = &cobra.Command{
	Use:   "fromxml [file]",
	Short: "Convert MARCXML to tape-format records",
	Long: `Convert a MARCXML document into tape-format records.

Each record is encoded as soon as its closing element is read. With an
explicit --encoding the leader's character coding scheme is rewritten to
match.

Examples:
  marc fromxml records.xml -o records.mrc
  marc fromxml --encoding=utf8 < records.xml > records.mrc`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		outPath, _ := cmd.Flags().GetString("output")

		enc := container.Config().WriterEncoding()
		if v, _ := cmd.Flags().GetString("encoding"); v != "" {
			parsed, err := codec.ParseEncoding(v)
			if err != nil {
				return err
			}
			enc = parsed
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

		writer := stream.NewWriter(out, stream.WriterConfig{
			Encoding:   enc,
			BufferSize: container.Config().Writer.BufferSize,
			Observer:   container.Metrics(),
		})

		count := 0
		builder := &event.Builder{OnRecord: func(rec *marc.Record) error {
			if _, err := writer.Write(rec); err != nil {
				return err
			}
			count++
			return nil
		}}
		if err := marcxml.NewReader(in).Parse(builder); err != nil {
			_ = writer.Flush()
			return fmt.Errorf("%s: record %d: %w", name, count+1, err)
		}
		if err := writer.Flush(); err != nil {
			return err
		}

		if outPath != "" && outPath != "-" {
			cmd.Printf("Converted %d records to %s\n", count, outPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fromxmlCmd)
	fromxmlCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	addEncodingFlag(fromxmlCmd, "Output text encoding: auto, latin1 or utf8 (default from config)")
}
