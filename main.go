package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/app"
	"github.com/adsops/google-ads-mcp-server/internal/config"
	"github.com/adsops/google-ads-mcp-server/internal/logging"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/version"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Flags / env
	httpAddr := flag.String("http", envOr("MCP_HTTP_ADDR", cfg.HTTPAddr), "MCP HTTP listen address (e.g., :8080)")
	stdio := flag.Bool("stdio", false, "Serve MCP over stdin/stdout instead of HTTP")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.Parse()
	cfg.HTTPAddr = *httpAddr

	// In stdio mode stdout carries JSON-RPC frames, so logs only go to file.
	logger, cleanup, err := logging.NewWithConfig(logging.Config{
		Component: "mcp-server",
		Level:     *logLevel,
		Stderr:    !*stdio,
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer cleanup()

	logger.WithFields(logrus.Fields{
		"version": version.Get().Version,
		"stdio":   *stdio,
	}).Info("starting google ads mcp server")

	m := metrics.NewMetrics(app.MetricsNamespace)
	server, err := app.NewMCPServer(cfg, logger, m)
	if err != nil {
		logger.WithError(err).Error("server setup failed")
		fmt.Fprintf(os.Stderr, "google-ads-mcp-server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *stdio {
		err = app.RunMCPStdio(ctx, server, os.Stdin, os.Stdout)
	} else {
		err = app.RunMCPHTTP(ctx, server, cfg)
	}
	if err != nil {
		logger.WithError(err).Error("MCP server error")
		os.Exit(1)
	}
	logger.Info("MCP server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
