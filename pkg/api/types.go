package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/metrics"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind           string
	Port           int
	ReaderEncoding codec.Encoding // default for decode requests without ?encoding=
	WriterEncoding codec.Encoding // used when encoding MARCXML into tape records
	MaxBodyBytes   int64          // request body limit (0 = default)
}

// Dependencies are the shared services a Server needs
type Dependencies struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// DecodeResponse is returned by the decode endpoint
type DecodeResponse struct {
	Records     []RecordJSON     `json:"records"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Complete    bool             `json:"complete"` // false when a fatal diagnostic stopped decoding
	Encoding    string           `json:"encoding"`
}

// RecordJSON is the JSON form of a record
type RecordJSON struct {
	Leader        string             `json:"leader"`
	ControlFields []ControlFieldJSON `json:"control_fields,omitempty"`
	DataFields    []DataFieldJSON    `json:"data_fields,omitempty"`
}

// ControlFieldJSON is the JSON form of a control field
type ControlFieldJSON struct {
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

// DataFieldJSON is the JSON form of a data field
type DataFieldJSON struct {
	Tag       string         `json:"tag"`
	Ind1      string         `json:"ind1"`
	Ind2      string         `json:"ind2"`
	Subfields []SubfieldJSON `json:"subfields"`
}

// SubfieldJSON is the JSON form of a subfield
type SubfieldJSON struct {
	Code string `json:"code"`
	Data string `json:"data"`
}

// DiagnosticJSON is the JSON form of a codec diagnostic
type DiagnosticJSON struct {
	Severity      string `json:"severity"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Position      int64  `json:"position"`
	ControlNumber string `json:"control_number,omitempty"`
	Tag           string `json:"tag,omitempty"`
}
