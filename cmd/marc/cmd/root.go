/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/config"
	"github.com/ssargent/marcstream/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marc",
	Short: "marcstream - MARC tape record toolkit",
	Long: `marcstream reads and writes MARC bibliographic records in the ISO 2709
tape format and converts them to and from MARCXML.

Malformed input is decoded leniently: problems are reported as warnings
and errors, and decoding only stops on fatal conditions.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
}

// loadConfig reads the configuration file when it exists, applies flag
// overrides and configures the container.
func loadConfig(cmd *cobra.Command, args []string) error {
	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	return container.Configure(cfg)
}

// openInput returns stdin for "" or "-", otherwise the named file
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to open input: %w", err)
	}
	return f, path, nil
}

// openOutput returns stdout for "" or "-", otherwise creates the named file
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
