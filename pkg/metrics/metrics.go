// Package metrics holds the Prometheus metrics for record codec activity and
// the HTTP service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/marcstream/pkg/codec"
)

const (
	directionDecode = "decode"
	directionEncode = "encode"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Codec metrics
	recordsTotal     *prometheus.CounterVec
	recordBytesTotal *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcstream_records_total",
				Help: "Total number of records decoded or encoded",
			},
			[]string{"direction"},
		),

		recordBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcstream_record_bytes_total",
				Help: "Total number of record bytes decoded or encoded",
			},
			[]string{"direction"},
		),

		diagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcstream_diagnostics_total",
				Help: "Total number of codec diagnostics by severity and code",
			},
			[]string{"severity", "code"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcstream_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marcstream_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marcstream_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),
	}

	return m
}

// RecordRead counts a decoded record. It satisfies stream.Observer.
func (m *Metrics) RecordRead(bytes int) {
	m.recordsTotal.WithLabelValues(directionDecode).Inc()
	m.recordBytesTotal.WithLabelValues(directionDecode).Add(float64(bytes))
}

// RecordWritten counts an encoded record. It satisfies stream.Observer.
func (m *Metrics) RecordWritten(bytes int) {
	m.recordsTotal.WithLabelValues(directionEncode).Inc()
	m.recordBytesTotal.WithLabelValues(directionEncode).Add(float64(bytes))
}

// RecordDiagnostic counts a diagnostic
func (m *Metrics) RecordDiagnostic(d *codec.Diagnostic) {
	m.diagnosticsTotal.WithLabelValues(d.Severity.String(), string(d.Code)).Inc()
}

// ErrorHandler returns a codec.ErrorHandler that counts each diagnostic and
// then passes it on to next, which may be nil.
func (m *Metrics) ErrorHandler(next codec.ErrorHandler) codec.ErrorHandler {
	return &countingHandler{m: m, next: next}
}

type countingHandler struct {
	m    *Metrics
	next codec.ErrorHandler
}

func (h *countingHandler) Warning(d *codec.Diagnostic) { h.count(d) }
func (h *countingHandler) Error(d *codec.Diagnostic)   { h.count(d) }
func (h *countingHandler) Fatal(d *codec.Diagnostic)   { h.count(d) }

func (h *countingHandler) count(d *codec.Diagnostic) {
	h.m.RecordDiagnostic(d)
	codec.Report(h.next, d)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Capture the status code for the request counter
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
