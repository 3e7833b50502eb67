package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sidebar/dashboard"
	"github.com/jpalmerr/sidebar/internal/preview"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd runs a board and serves a live preview.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live board preview",
	Long: `Run a board definition and serve a live preview.

The server will:
  - Load the board definition
  - Join the configured viewers and refresh the board on its interval
  - Pull feed lines when a feed is configured
  - Serve the preview page, frames as JSON and text, an event stream
    and Prometheus metrics

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  sidebar serve -c board.yaml
  SIDEBAR_PORT=9090 sidebar serve -c board.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "override the definition's port (env SIDEBAR_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(v)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port := v.GetInt("port"); port != 0 {
		cfg.Port = port
	}

	logger.Info("config loaded",
		"kind", cfg.Kind,
		"lines", len(cfg.Lines),
		"teams", len(cfg.Teams),
		"viewers", len(cfg.Viewers),
	)

	p, err := preview.New(cfg,
		preview.WithLogger(logger),
		preview.WithAssets(dashboard.Assets),
	)
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start preview - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
