/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/marcstream/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the marcstream REST API server.

The server decodes tape-format records to JSON, converts between the tape
format and MARCXML, and exposes Prometheus metrics at /metrics. It runs
until interrupted.

Examples:
  marc serve
  marc serve --port=9400 --bind=0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.Config()
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serverConfig := api.ServerConfig{
			Bind:           cfg.Server.Bind,
			Port:           cfg.Server.Port,
			ReaderEncoding: cfg.ReaderEncoding(),
			WriterEncoding: cfg.WriterEncoding(),
		}

		cmd.Printf("Starting marcstream REST API server on %s\n", cfg.Address())
		cmd.Printf("Metrics available at: http://%s/metrics\n", cfg.Address())

		starter := container.GetServerFactory().CreateServerStarter()
		if err := starter.StartServer(ctx, serverConfig, container.Dependencies()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 9300, "Port to listen on (default from config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to (default from config)")
}
