package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/docentlabs/docent/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Docent server",
	Long: `Start the Docent HTTP server.

The server provides:
  - POST /generate         - Full tutorial generation (file upload or JSON source)
  - POST /generate/outline - Outline only
  - POST /generate/draft   - Draft without the review pass
  - GET  /health           - Liveness check

Examples:
  docent serve                    # Start on default port 8080
  docent serve --port 3000        # Start on custom port
  docent serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cm, err := loadConfig()
		if err != nil {
			return err
		}
		cm.WatchConfig()

		cfg := cm.Get()
		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		srv, err := server.New(server.Config{
			Host:     host,
			Port:     port,
			Pipeline: buildPipeline(cfg, logger),
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		// Shut down cleanly on SIGINT/SIGTERM.
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown error", "error", err)
			}
		}()

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
