// Package logging builds the zap logger used by the CLI and the HTTP server
// and adapts it to the codec's diagnostic surface.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/config"
)

// New builds a logger from the logging section of the configuration.
func New(cfg config.Logging) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = level
	// Diagnostics go to stderr so stdout stays clean for record output
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// DiagnosticLogger is a codec.ErrorHandler that logs every diagnostic.
// Warnings are logged at warn level, errors and fatal diagnostics at error
// level; a fatal diagnostic never terminates the process.
type DiagnosticLogger struct {
	sugar *zap.SugaredLogger
}

// NewDiagnosticLogger wraps logger.
func NewDiagnosticLogger(logger *zap.Logger) *DiagnosticLogger {
	return &DiagnosticLogger{sugar: logger.Named("codec").Sugar()}
}

func (l *DiagnosticLogger) Warning(d *codec.Diagnostic) {
	l.sugar.Warnw(d.Message, fields(d)...)
}

func (l *DiagnosticLogger) Error(d *codec.Diagnostic) {
	l.sugar.Errorw(d.Message, fields(d)...)
}

func (l *DiagnosticLogger) Fatal(d *codec.Diagnostic) {
	l.sugar.Errorw(d.Message, fields(d)...)
}

func fields(d *codec.Diagnostic) []interface{} {
	kv := []interface{}{
		"severity", d.Severity.String(),
		"code", string(d.Code),
		"position", d.Position,
	}
	if d.ControlNumber != "" {
		kv = append(kv, "control_number", d.ControlNumber)
	}
	if d.Tag != "" {
		kv = append(kv, "tag", d.Tag)
	}
	if d.Source != "" {
		kv = append(kv, "source", d.Source)
	}
	if d.Stream != "" {
		kv = append(kv, "stream", d.Stream)
	}
	return kv
}
