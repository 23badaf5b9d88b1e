package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "examclock/internal/platform/errors"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Duration != 45*time.Minute || cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if cfg.StatePath != filepath.Join(dir, "state.json") || cfg.DBPath != filepath.Join(dir, "examclock.db") {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.Notifier != NotifierDesktop || cfg.Sound != SoundBeep {
		t.Fatalf("unexpected capability defaults: %+v", cfg)
	}
}

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	if _, err := New(""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestNewOverlaysYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	body := "label: Midterm\nduration: 6m\ntick_interval: 250ms\nnotifier: none\nsound: NONE\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Label != "Midterm" || cfg.Duration != 6*time.Minute || cfg.TickInterval != 250*time.Millisecond {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Notifier != NotifierNone || cfg.Sound != SoundNone {
		t.Fatalf("capabilities not applied: %+v", cfg)
	}
}

func TestNewRejectsInvalidYAML(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"bad duration":   "duration: soon\n",
		"thresholds":     "warning_threshold: 30s\ncritical_threshold: 1m\n",
		"notifier":       "notifier: pager\n",
		"sound":          "sound: siren\n",
		"malformed yaml": "duration: [\n",
	}
	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := New(dir); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestHeadlessDisablesCapabilities(t *testing.T) {
	t.Parallel()
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	h := cfg.Headless()
	if h.Notifier != NotifierNone || h.Sound != SoundNone {
		t.Fatalf("expected headless capabilities, got %+v", h)
	}
	if cfg.Notifier != NotifierDesktop {
		t.Fatalf("headless must not mutate the receiver")
	}
}
