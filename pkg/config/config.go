/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/marcstream/pkg/codec"
)

// Config represents the marcstream configuration
type Config struct {
	Reader  Reader  `yaml:"reader"`
	Writer  Writer  `yaml:"writer"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
}

// Reader contains stream reader configuration
type Reader struct {
	Encoding string `yaml:"encoding"`
}

// Writer contains stream writer configuration
type Writer struct {
	Encoding   string `yaml:"encoding"`
	BufferSize int    `yaml:"buffer_size"`
}

// Logging contains logging configuration
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Server contains HTTP server configuration
type Server struct {
	Port int    `yaml:"port"`
	Bind string `yaml:"bind"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Reader: Reader{
			Encoding: "auto",
		},
		Writer: Writer{
			Encoding:   "auto",
			BufferSize: 64 * 1024,
		},
		Logging: Logging{
			Level: "info",
		},
		Server: Server{
			Port: 9300,
			Bind: "127.0.0.1",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes the default configuration to configPath
func BootstrapConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}
	return config, nil
}

// Validate checks encodings, sizes and the log level
func (c *Config) Validate() error {
	var errs []error

	if _, err := codec.ParseEncoding(c.Reader.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("reader.encoding: %w", err))
	}
	if _, err := codec.ParseEncoding(c.Writer.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("writer.encoding: %w", err))
	}
	if c.Writer.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("writer.buffer_size must be positive, got %d", c.Writer.BufferSize))
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}

// ReaderEncoding returns the parsed reader encoding. Call Validate first.
func (c *Config) ReaderEncoding() codec.Encoding {
	e, _ := codec.ParseEncoding(c.Reader.Encoding)
	return e
}

// WriterEncoding returns the parsed writer encoding. Call Validate first.
func (c *Config) WriterEncoding() codec.Encoding {
	e, _ := codec.ParseEncoding(c.Writer.Encoding)
	return e
}

// Address returns the bind:port listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./marcstream.yaml"
	}

	// For Linux/macOS, use ~/.config/marcstream/config.yaml
	configDir := filepath.Join(homeDir, ".config", "marcstream")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
