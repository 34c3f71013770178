// Package api is the marcstream REST API.
//
// Routes, all under /api/v1 except /metrics:
//
//	GET  /health            liveness
//	POST /records/decode    tape records in, JSON records and diagnostics out
//	POST /records/marcxml   tape records in, MARCXML collection out
//	POST /records/encode    MARCXML in, tape records out
//	GET  /metrics           Prometheus scrape endpoint
//
// Decode endpoints accept ?encoding=auto|latin1|utf8 to override the
// configured text encoding. Every response carries an X-Conversion-ID
// header that also appears in the server's log lines for the request.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Routes returns the router with all routes configured. gatherer backs the
// /metrics endpoint; nil uses the default Prometheus registry.
func (s *Server) Routes(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	m := s.metrics

	r := chi.NewRouter()

	// Middleware
	r.Use(conversionIDMiddleware)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{ConversionIDHeader, DiagnosticCountHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Post("/records/decode", m.InstrumentHandler("POST", "/api/v1/records/decode", s.handleDecode))
		r.Post("/records/marcxml", m.InstrumentHandler("POST", "/api/v1/records/marcxml", s.handleToMARCXML))
		r.Post("/records/encode", m.InstrumentHandler("POST", "/api/v1/records/encode", s.handleEncode))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, config ServerConfig, deps Dependencies) error {
	server := NewServer(config, deps)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(deps.Gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting marcstream REST API server", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	server.logger.Info("shutting down marcstream REST API server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
