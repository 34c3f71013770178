package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/logging"
	"github.com/ssargent/marcstream/pkg/stream"
)

// readerConfig builds the stream reader configuration shared by the
// decoding commands. Diagnostics are logged, counted and collected.
func readerConfig(cmd *cobra.Command, collector *codec.Collector) (stream.ReaderConfig, error) {
	enc := container.Config().ReaderEncoding()
	if v, _ := cmd.Flags().GetString("encoding"); v != "" {
		parsed, err := codec.ParseEncoding(v)
		if err != nil {
			return stream.ReaderConfig{}, err
		}
		enc = parsed
	}

	handlers := []codec.ErrorHandler{logging.NewDiagnosticLogger(container.Logger())}
	if collector != nil {
		handlers = append(handlers, collector)
	}

	return stream.ReaderConfig{
		Encoding:     enc,
		ErrorHandler: container.Metrics().ErrorHandler(codec.MultiHandler(handlers...)),
		Observer:     container.Metrics(),
	}, nil
}

func addEncodingFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("encoding", "e", "", usage)
}
