package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adsops/google-ads-mcp-server/internal/app"
	"github.com/adsops/google-ads-mcp-server/internal/config"
	"github.com/adsops/google-ads-mcp-server/internal/logging"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
)

// Stdio-only entry point for desktop MCP clients. stdout is reserved for
// JSON-RPC frames; logs go to logs/mcp-stdio.log.
func main() {
	_ = godotenv.Load()

	logger, cleanup, err := logging.New("mcp-stdio")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("config")
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	server, err := app.NewMCPServer(cfg, logger, metrics.NewMetrics(app.MetricsNamespace))
	if err != nil {
		logger.WithError(err).Error("server setup failed")
		fmt.Fprintf(os.Stderr, "google-ads-mcp-server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP over stdio")
	if err := app.RunMCPStdio(ctx, server, os.Stdin, os.Stdout); err != nil {
		logger.WithError(err).Error("stdio server error")
		os.Exit(1)
	}
}
