package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/logging"
	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/ssargent/marcstream/pkg/marcxml"
	"github.com/ssargent/marcstream/pkg/metrics"
	"github.com/ssargent/marcstream/pkg/stream"
)

const (
	defaultMaxBodyBytes = 32 << 20

	contentTypeMARC    = "application/marc"
	contentTypeMARCXML = "application/marcxml+xml"

	// DiagnosticCountHeader reports how many diagnostics a conversion produced
	DiagnosticCountHeader = "X-Diagnostic-Count"
)

// Server holds the API server state
type Server struct {
	config  ServerConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewServer creates a new API server. Missing dependencies are replaced with
// no-op versions.
func NewServer(config ServerConfig, deps Dependencies) *Server {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Server{
		config:  config,
		logger:  logger,
		metrics: m,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleDecode decodes a tape-format body and returns the records and every
// diagnostic as JSON. Records decoded before a fatal diagnostic are still
// returned, with complete set to false.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	records, diags, enc, err := s.decodeBody(w, r)
	if err != nil && !isFatal(err) {
		s.sendReadError(w, err)
		return
	}

	resp := DecodeResponse{
		Records:     make([]RecordJSON, 0, len(records)),
		Diagnostics: toDiagnosticJSON(diags),
		Complete:    err == nil,
		Encoding:    enc.String(),
	}
	for _, rec := range records {
		rj, convErr := toRecordJSON(rec)
		if convErr != nil {
			sendError(w, convErr.Error(), http.StatusInternalServerError)
			return
		}
		resp.Records = append(resp.Records, rj)
	}

	w.Header().Set(DiagnosticCountHeader, strconv.Itoa(len(diags)))
	sendSuccess(w, resp)
}

// handleToMARCXML converts a tape-format body into a MARCXML collection
func (s *Server) handleToMARCXML(w http.ResponseWriter, r *http.Request) {
	records, diags, _, err := s.decodeBody(w, r)
	if err != nil {
		if isFatal(err) {
			sendError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.sendReadError(w, err)
		return
	}

	doc, err := marcxml.Marshal(records)
	if err != nil {
		if d, ok := codec.AsDiagnostic(err); ok {
			s.metrics.RecordDiagnostic(d)
			sendError(w, d.Error(), http.StatusUnprocessableEntity)
			return
		}
		sendError(w, fmt.Sprintf("failed to render MARCXML: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeMARCXML)
	w.Header().Set(DiagnosticCountHeader, strconv.Itoa(len(diags)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handleEncode converts a MARCXML body into tape-format records
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	records, err := marcxml.Decode(body)
	if err != nil {
		s.sendReadError(w, err)
		return
	}

	var buf bytes.Buffer
	writer := stream.NewWriter(&buf, stream.WriterConfig{
		Encoding: s.config.WriterEncoding,
		Observer: s.metrics,
	})
	for _, rec := range records {
		if _, err := writer.Write(rec); err != nil {
			if d, ok := codec.AsDiagnostic(err); ok {
				s.metrics.RecordDiagnostic(d)
			}
			sendError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}
	if err := writer.Flush(); err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeMARC)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeBody reads every record in the request body. Diagnostics are
// counted, logged and collected for the response.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) ([]*marc.Record, []*codec.Diagnostic, codec.Encoding, error) {
	enc := s.config.ReaderEncoding
	if v := r.URL.Query().Get("encoding"); v != "" {
		parsed, err := codec.ParseEncoding(v)
		if err != nil {
			return nil, nil, enc, badRequest{err}
		}
		enc = parsed
	}

	collector := codec.NewCollector()
	logger := s.logger.With(zap.String("conversion_id", r.Header.Get(ConversionIDHeader)))
	handler := s.metrics.ErrorHandler(codec.MultiHandler(collector, logging.NewDiagnosticLogger(logger)))

	reader := stream.NewReader(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes), stream.ReaderConfig{
		Encoding:     enc,
		ErrorHandler: handler,
		Source:       "request",
		Observer:     s.metrics,
	})
	records, err := reader.ReadAll()
	if len(records) > 0 || err == nil {
		enc = reader.Encoding()
	}
	return records, collector.All(), enc, err
}

// sendReadError maps request body errors to a status code
func (s *Server) sendReadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sendError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	sendError(w, err.Error(), http.StatusBadRequest)
}

// badRequest marks a client error that happened before decoding started
type badRequest struct {
	err error
}

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func isFatal(err error) bool {
	d, ok := codec.AsDiagnostic(err)
	return ok && d.IsFatal()
}
