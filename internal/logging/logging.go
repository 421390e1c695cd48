// Package logging builds the per-component logrus loggers. Each component
// writes to logs/<component>.log; stdio servers must never log to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultDir is the directory log files are created in.
const DefaultDir = "logs"

// Config controls where a component logs.
type Config struct {
	Component string
	// Dir defaults to DefaultDir.
	Dir string
	// Level is a logrus level name; empty means info.
	Level string
	// Stderr mirrors file output to stderr. Only safe when stdout and stderr
	// are not part of the protocol stream.
	Stderr bool
}

// New creates a logger for component writing to logs/<component>.log and
// returns it with a cleanup.
func New(component string) (*logrus.Entry, func(), error) {
	return NewWithConfig(Config{Component: component, Level: os.Getenv("LOG_LEVEL")})
}

// NewWithConfig creates a logger from cfg.
func NewWithConfig(cfg Config) (*logrus.Entry, func(), error) {
	if strings.TrimSpace(cfg.Component) == "" {
		return nil, nil, fmt.Errorf("logging: component is required")
	}
	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(level)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(dir, cfg.Component+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = f
	if cfg.Stderr {
		out = io.MultiWriter(f, os.Stderr)
	}
	logger.SetOutput(out)
	return logger.WithField("component", cfg.Component), func() { _ = f.Close() }, nil
}
