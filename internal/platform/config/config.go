package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "examclock/internal/platform/errors"
)

const (
	FileName = "config.yaml"

	DefaultDuration          = 45 * time.Minute
	DefaultTickInterval      = 500 * time.Millisecond
	DefaultWarningThreshold  = 5 * time.Minute
	DefaultCriticalThreshold = time.Minute
	DefaultToneFrequencyHz   = 880

	NotifierDesktop = "desktop"
	NotifierNone    = "none"
	SoundBeep       = "beep"
	SoundBell       = "bell"
	SoundNone       = "none"
)

type Config struct {
	DataDir    string
	StatePath  string
	DBPath     string
	LogPath    string
	ReportsDir string

	Label             string
	Duration          time.Duration
	TickInterval      time.Duration
	WarningThreshold  time.Duration
	CriticalThreshold time.Duration
	ToneFrequencyHz   float64
	Notifier          string
	Sound             string
	LogLevel          string
}

// fileConfig mirrors config.yaml. Durations are Go duration strings ("45m").
type fileConfig struct {
	Label             string  `yaml:"label"`
	Duration          string  `yaml:"duration"`
	TickInterval      string  `yaml:"tick_interval"`
	WarningThreshold  string  `yaml:"warning_threshold"`
	CriticalThreshold string  `yaml:"critical_threshold"`
	ToneFrequencyHz   float64 `yaml:"tone_frequency_hz"`
	Notifier          string  `yaml:"notifier"`
	Sound             string  `yaml:"sound"`
	LogLevel          string  `yaml:"log_level"`
}

// DefaultDataDir is where session state lives when --data-dir is not given.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".examclock"
	}
	return filepath.Join(home, ".examclock")
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	cfg := Config{
		DataDir:           dataDir,
		StatePath:         filepath.Join(dataDir, "state.json"),
		DBPath:            filepath.Join(dataDir, "examclock.db"),
		LogPath:           filepath.Join(dataDir, "examclock.log"),
		ReportsDir:        filepath.Join(dataDir, "reports"),
		Label:             "exam",
		Duration:          DefaultDuration,
		TickInterval:      DefaultTickInterval,
		WarningThreshold:  DefaultWarningThreshold,
		CriticalThreshold: DefaultCriticalThreshold,
		ToneFrequencyHz:   DefaultToneFrequencyHz,
		Notifier:          NotifierDesktop,
		Sound:             SoundBeep,
		LogLevel:          "info",
	}
	if err := cfg.overlay(filepath.Join(dataDir, FileName)); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("%w: decode config: %v", apperrors.ErrInvalidInput, err)
	}

	if strings.TrimSpace(fc.Label) != "" {
		c.Label = strings.TrimSpace(fc.Label)
	}
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"duration", fc.Duration, &c.Duration},
		{"tick_interval", fc.TickInterval, &c.TickInterval},
		{"warning_threshold", fc.WarningThreshold, &c.WarningThreshold},
		{"critical_threshold", fc.CriticalThreshold, &c.CriticalThreshold},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidInput, d.name, err)
		}
		*d.dst = parsed
	}
	if fc.ToneFrequencyHz != 0 {
		c.ToneFrequencyHz = fc.ToneFrequencyHz
	}
	if fc.Notifier != "" {
		c.Notifier = strings.ToLower(fc.Notifier)
	}
	if fc.Sound != "" {
		c.Sound = strings.ToLower(fc.Sound)
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Duration < time.Second:
		return fmt.Errorf("%w: duration must be at least 1s", apperrors.ErrInvalidInput)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive", apperrors.ErrInvalidInput)
	case c.CriticalThreshold <= 0 || c.WarningThreshold <= c.CriticalThreshold:
		return fmt.Errorf("%w: thresholds must satisfy 0 < critical < warning", apperrors.ErrInvalidInput)
	case c.ToneFrequencyHz <= 0:
		return fmt.Errorf("%w: tone frequency must be positive", apperrors.ErrInvalidInput)
	}
	switch c.Notifier {
	case NotifierDesktop, NotifierNone:
	default:
		return fmt.Errorf("%w: notifier %q", apperrors.ErrInvalidInput, c.Notifier)
	}
	switch c.Sound {
	case SoundBeep, SoundBell, SoundNone:
	default:
		return fmt.Errorf("%w: sound %q", apperrors.ErrInvalidInput, c.Sound)
	}
	return nil
}

// Headless disables capabilities that need a long-lived terminal view.
func (c Config) Headless() Config {
	c.Notifier = NotifierNone
	c.Sound = SoundNone
	return c
}
