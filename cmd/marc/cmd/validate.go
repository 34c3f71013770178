package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/stream"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Check files for format problems",
	Long: `Decode every record in each file and report the diagnostics found.

Files are decoded in parallel. The command fails when any file hits a fatal
problem, or with --strict when any error-level diagnostic is reported.

Examples:
  marc validate *.mrc
  marc validate --jobs=4 --strict --verbose catalog.mrc`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, _ := cmd.Flags().GetInt("jobs")
		strict, _ := cmd.Flags().GetBool("strict")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := readerConfig(cmd, nil)
		if err != nil {
			return err
		}

		sources := make([]stream.Source, 0, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()
			sources = append(sources, stream.Source{Name: path, Reader: f})
		}

		results, err := stream.CountAll(context.Background(), sources, cfg, jobs)
		if err != nil {
			return err
		}

		summary := summarize(results)
		for _, s := range summary {
			cmd.Printf("%s: %d records, %d warnings, %d errors", s.source, s.records, s.warnings, s.errors)
			if s.fatal != nil {
				cmd.Printf(", stopped: %v", s.fatal)
			}
			cmd.Printf("\n")
			if verbose {
				for _, d := range s.diagnostics {
					cmd.Printf("  %v\n", d)
				}
			}
		}

		for _, s := range summary {
			if s.fatal != nil {
				return fmt.Errorf("%s: fatal diagnostic", s.source)
			}
			if strict && s.errors > 0 {
				return fmt.Errorf("%s: %d errors", s.source, s.errors)
			}
		}
		return nil
	},
}

type fileSummary struct {
	source      string
	records     int
	warnings    int
	errors      int
	fatal       error
	diagnostics []*codec.Diagnostic
}

// summarize tallies each result's own diagnostics
func summarize(results []stream.Result) []fileSummary {
	out := make([]fileSummary, len(results))
	for i, r := range results {
		out[i] = fileSummary{
			source:      r.Source,
			records:     r.Count,
			fatal:       r.Err,
			diagnostics: r.Diagnostics,
		}
		for _, d := range r.Diagnostics {
			switch d.Severity {
			case codec.SeverityWarning:
				out[i].warnings++
			case codec.SeverityError:
				out[i].errors++
			}
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Number of files decoded at once")
	validateCmd.Flags().Bool("strict", false, "Fail on error-level diagnostics too")
	validateCmd.Flags().BoolP("verbose", "v", false, "List every diagnostic")
	addEncodingFlag(validateCmd, "Text encoding: auto, latin1 or utf8 (default from config)")
}
