package logging_test

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"examclock/internal/platform/config"
	"examclock/internal/platform/logging"
)

func TestNewWritesToDataDirLog(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg, true)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("tick applied", zap.String("phase", "running"))
	_ = logger.Sync()

	raw, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "tick applied") || !strings.Contains(string(raw), `"phase":"running"`) {
		t.Fatalf("debug entry missing from log: %s", raw)
	}
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.LogLevel = "chatty"
	logger, err := logging.New(cfg, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug must be disabled at the fallback level")
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info must be enabled at the fallback level")
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()
	if logging.OrNop(nil) == nil {
		t.Fatalf("expected a nop logger")
	}
}
