package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codecollab/swarm/internal/config"
	"github.com/codecollab/swarm/internal/history"
	"github.com/codecollab/swarm/internal/server"
	"github.com/codecollab/swarm/internal/swarm"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API exposing the agent pipeline.

Endpoints:
  GET  /              service info
  GET  /api/health    health check
  GET  /api/agents    the fixed agent roles
  POST /api/process   run a task through the pipeline
  GET  /api/history   recent run results
  GET  /api/stats     aggregate run statistics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		s, cleanup, err := buildSwarm(cfg, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		ring := history.NewRing(cfg.History.RingSize)

		var store *history.Store
		if cfg.History.Persist {
			dbPath := cfg.History.DBPath
			if dbPath == "" {
				dbPath = history.DefaultDBPath()
			}
			store, err = history.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()
		}

		logger := swarm.NopLogger()
		if cfg.Debug.LogPath != "" {
			logger, err = swarm.NewDebugLogger(cfg.Debug.LogPath)
			if err != nil {
				return fmt.Errorf("open debug log: %w", err)
			}
			defer logger.Close()
		}

		srv, err := server.NewServer(s, ring, store, logger, &server.Config{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		})
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		color.Green("Serving on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
		}

		color.Yellow("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (overrides config)")
}
