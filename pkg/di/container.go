// Package di provides dependency injection container
package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ssargent/marcstream/pkg/api" //nolint:depguard
	"github.com/ssargent/marcstream/pkg/config"
	"github.com/ssargent/marcstream/pkg/logging"
	"github.com/ssargent/marcstream/pkg/metrics"
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container with the
// default configuration. Call Configure once the real configuration is
// known.
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Container{
		config:        config.DefaultConfig(),
		logger:        zap.NewNop(),
		registry:      registry,
		metrics:       metrics.NewMetrics(registry),
		serverFactory: api.NewServerFactory(),
	}
}

// Configure installs cfg and rebuilds the logger from it
func (c *Container) Configure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	c.config = cfg
	c.logger = logger
	return nil
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Metrics returns the application metrics
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Registry returns the Prometheus registry the metrics are registered with
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Dependencies returns the services the API server needs
func (c *Container) Dependencies() api.Dependencies {
	return api.Dependencies{
		Logger:   c.logger,
		Metrics:  c.metrics,
		Gatherer: c.registry,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// SetLogger allows overriding the logger (for testing)
func (c *Container) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// Sync flushes the logger
func (c *Container) Sync() {
	_ = c.logger.Sync()
}
