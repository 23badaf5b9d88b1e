package domain_test

import (
	"errors"
	"testing"
	"time"

	"examclock/internal/modules/session/domain"
	apperrors "examclock/internal/platform/errors"
)

var base = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestNewStateIsIdle(t *testing.T) {
	t.Parallel()
	s := domain.NewState(45 * time.Minute)
	if s.Phase() != domain.PhaseIdle {
		t.Fatalf("expected idle, got %s", s.Phase())
	}
	if s.Remaining != 45*time.Minute || !s.SoundOn || s.Violations.Total() != 0 {
		t.Fatalf("unexpected fresh state: %+v", s)
	}
	if got := domain.NewState(0).Duration; got != domain.DefaultDuration {
		t.Fatalf("expected default duration, got %s", got)
	}
}

func TestRemainingIsDerivedFromStartedAt(t *testing.T) {
	t.Parallel()
	s, err := domain.NewState(45 * time.Minute).Start(base)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	at := base.Add(10*time.Minute + 250*time.Millisecond)
	first, second := s.RemainingAt(at), s.RemainingAt(at)
	if first != second {
		t.Fatalf("remaining must be deterministic: %s vs %s", first, second)
	}
	if first != 35*time.Minute-250*time.Millisecond {
		t.Fatalf("unexpected remaining %s", first)
	}
	if s.RemainingAt(base.Add(-time.Minute)) != 45*time.Minute {
		t.Fatalf("clock skew before start must clamp to duration")
	}
	if s.RemainingAt(base.Add(2*time.Hour)) != 0 {
		t.Fatalf("remaining must clamp at zero")
	}
}

func TestPauseResumePreservesRemaining(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s, err := s.Pause(base.Add(44*time.Minute + 30*time.Second))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.Phase() != domain.PhasePaused || s.Remaining != 30*time.Second {
		t.Fatalf("unexpected paused state: %+v", s)
	}
	// Time spent paused does not count.
	s, err = s.Start(base.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := s.RemainingAt(base.Add(2 * time.Hour)); got != 30*time.Second {
		t.Fatalf("expected 30s after resume, got %s", got)
	}
}

func TestTickEndsAtZero(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(time.Minute).Start(base)
	s = s.Tick(base.Add(61 * time.Second))
	if !s.Ended || s.Running || s.Remaining != 0 {
		t.Fatalf("expected ended state, got %+v", s)
	}
	if s.Phase() != domain.PhaseEnded {
		t.Fatalf("expected ended phase, got %s", s.Phase())
	}
	again := s.Tick(base.Add(5 * time.Minute))
	if again.Remaining != 0 || !again.Ended {
		t.Fatalf("tick after end must be a no-op")
	}
}

func TestTransitionErrors(t *testing.T) {
	t.Parallel()
	idle := domain.NewState(time.Minute)
	if _, err := idle.Pause(base); !errors.Is(err, apperrors.ErrNotRunning) {
		t.Fatalf("pause idle: expected not running, got %v", err)
	}
	running, _ := idle.Start(base)
	if _, err := running.Start(base); !errors.Is(err, apperrors.ErrAlreadyRunning) {
		t.Fatalf("double start: expected already running, got %v", err)
	}
	ended, _ := running.Exit(base.Add(time.Second))
	if _, err := ended.Start(base); !errors.Is(err, apperrors.ErrSessionEnded) {
		t.Fatalf("start ended: expected session ended, got %v", err)
	}
	if _, err := ended.Exit(base); !errors.Is(err, apperrors.ErrSessionEnded) {
		t.Fatalf("exit ended: expected session ended, got %v", err)
	}
	late, err := ended.Record(domain.CategoryTabSwitch, base.Add(2*time.Second))
	if err != nil || late.Violations.Total() != 1 || !late.Ended {
		t.Fatalf("record ended: expected append, got total=%d err=%v", late.Violations.Total(), err)
	}
	if _, err := idle.Record("screenshot", base); !errors.Is(err, apperrors.ErrUnknownCategory) {
		t.Fatalf("record unknown: expected unknown category, got %v", err)
	}
}

func TestExitFromIdleSynthesizesStart(t *testing.T) {
	t.Parallel()
	s, err := domain.NewState(45 * time.Minute).Exit(base)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if !s.StartedAt.Equal(base) || s.Remaining != 45*time.Minute || !s.Ended {
		t.Fatalf("unexpected exited state: %+v", s)
	}
	if got := s.Summary().TimeTakenText(); got != "N/A" {
		t.Fatalf("expected N/A time taken, got %q", got)
	}
}

func TestExitWhileRunningFreezesRemaining(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s, err := s.Exit(base.Add(20 * time.Minute))
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if s.Running || !s.Ended || s.Remaining != 25*time.Minute {
		t.Fatalf("unexpected exited state: %+v", s)
	}
	if got := s.Summary().TimeTakenText(); got != "20:00" {
		t.Fatalf("expected 20:00 taken, got %q", got)
	}
}

func TestResetKeepsSoundPreference(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s, _ = s.Record(domain.CategoryMultipleFaces, base.Add(time.Second))
	s = s.SetSound(false)
	s = s.Reset()
	if s.Phase() != domain.PhaseIdle || s.Remaining != 45*time.Minute || s.Violations.Total() != 0 {
		t.Fatalf("reset did not restore defaults: %+v", s)
	}
	if s.SoundOn {
		t.Fatalf("reset must keep sound preference")
	}
}

func TestNormalizeRepairsInvariants(t *testing.T) {
	t.Parallel()
	s := domain.State{
		Duration:  time.Minute,
		Remaining: 2 * time.Minute,
		Running:   true,
		Ended:     true,
	}.Normalize()
	if s.Running || s.Remaining != time.Minute {
		t.Fatalf("unexpected normalized state: %+v", s)
	}
	if len(s.Violations) != 3 {
		t.Fatalf("every category must be present, got %v", s.Violations)
	}

	orphan := domain.State{Duration: time.Minute, Remaining: -time.Second, Running: true}.Normalize()
	if orphan.Running || orphan.Remaining != 0 {
		t.Fatalf("running without start must not run: %+v", orphan)
	}
}

func TestExamScenario(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s = s.Tick(base.Add(44*time.Minute + 30*time.Second))
	if got := domain.FormatClock(s.Remaining); got != "00:30" {
		t.Fatalf("expected 00:30, got %s", got)
	}

	s, _ = s.Pause(base.Add(44*time.Minute + 30*time.Second))
	resumeAt := base.Add(50 * time.Minute)
	s, _ = s.Start(resumeAt)
	if got := domain.FormatClock(s.RemainingAt(resumeAt)); got != "00:30" {
		t.Fatalf("expected 00:30 after resume, got %s", got)
	}

	s, err := s.Record(domain.CategoryTabSwitch, resumeAt.Add(10*time.Second))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	s = s.Tick(resumeAt.Add(31 * time.Second))
	if !s.Ended || domain.FormatClock(s.Remaining) != "00:00" {
		t.Fatalf("expected ended at 00:00, got %+v", s)
	}

	summary := s.Summary()
	if summary.TimeTakenText() != "45:00" {
		t.Fatalf("expected 45:00 taken, got %s", summary.TimeTakenText())
	}
	if summary.Counts[domain.CategoryTabSwitch] != 1 || summary.Counts[domain.CategoryMultipleFaces] != 0 {
		t.Fatalf("unexpected counts: %v", summary.Counts)
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()
	cases := map[time.Duration]string{
		0:                                     "00:00",
		499 * time.Millisecond:                "00:00",
		500 * time.Millisecond:                "00:01",
		59*time.Second + 600*time.Millisecond: "01:00",
		45 * time.Minute:                      "45:00",
		100 * time.Minute:                     "100:00",
	}
	for in, want := range cases {
		if got := domain.FormatClock(in); got != want {
			t.Fatalf("FormatClock(%s) = %q, want %q", in, got, want)
		}
	}
}
