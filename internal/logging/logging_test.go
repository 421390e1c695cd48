package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithConfigWritesFile(t *testing.T) {
	dir := t.TempDir()
	log, cleanup, err := NewWithConfig(Config{Component: "mcp-server", Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.WithField("tool", "get_campaigns").Debug("tool call")
	cleanup()

	b, err := os.ReadFile(filepath.Join(dir, "mcp-server.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "component=mcp-server") || !strings.Contains(out, "tool=get_campaigns") {
		t.Fatalf("unexpected log output: %s", out)
	}
	if log.Logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", log.Logger.GetLevel())
	}
}

func TestNewWithConfigRejectsBadInput(t *testing.T) {
	if _, _, err := NewWithConfig(Config{Dir: t.TempDir()}); err == nil {
		t.Fatalf("expected missing component error")
	}
	if _, _, err := NewWithConfig(Config{Component: "x", Dir: t.TempDir(), Level: "loud"}); err == nil {
		t.Fatalf("expected bad level error")
	}
}

func TestNewDefaultsToLogsDir(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("LOG_LEVEL", "")

	log, cleanup, err := New("adsctl")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer cleanup()
	log.Info("hello")
	if _, err := os.Stat(filepath.Join(DefaultDir, "adsctl.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}
