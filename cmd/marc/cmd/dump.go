package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/stream"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump [file...]",
	Short: "Print records as text",
	Long: `Decode tape-format records and print each one as text: a LEADER line
followed by one line per field, with subfields written as $ and the code.

Reads standard input when no file is given or the file is "-".

Examples:
  marc dump records.mrc
  marc dump --encoding=utf8 < records.mrc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"-"}
		}

		cfg, err := readerConfig(cmd, nil)
		if err != nil {
			return err
		}

		out := bufio.NewWriter(cmd.OutOrStdout())
		defer out.Flush()

		first := true
		for _, path := range args {
			in, name, err := openInput(cmd, path)
			if err != nil {
				return err
			}

			cfg.Source = name
			it := stream.NewReader(in, cfg).Iterator()
			for it.Next() {
				if !first {
					_ = out.WriteByte('\n')
				}
				first = false
				if err := codec.WriteText(out, it.Record()); err != nil {
					in.Close()
					return err
				}
			}
			in.Close()
			if err := it.Err(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	addEncodingFlag(dumpCmd, "Text encoding: auto, latin1 or utf8 (default from config)")
}
