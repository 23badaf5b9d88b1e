package domain

import (
	"time"

	apperrors "examclock/internal/platform/errors"
)

const DefaultDuration = 45 * time.Minute

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
	PhaseEnded   Phase = "ended"
)

// State is the single durable record shared by every view of a session.
// While Running, Remaining is a cached display value; RemainingAt derives
// the authoritative value from StartedAt.
type State struct {
	Duration   time.Duration
	Remaining  time.Duration
	Running    bool
	Ended      bool
	StartedAt  time.Time
	SoundOn    bool
	Violations ViolationLog
}

func NewState(duration time.Duration) State {
	if duration <= 0 {
		duration = DefaultDuration
	}
	duration = duration.Truncate(time.Millisecond)
	return State{
		Duration:   duration,
		Remaining:  duration,
		SoundOn:    true,
		Violations: NewViolationLog(),
	}
}

// Millis normalizes instants to the precision of the durable record.
func Millis(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}

func (s State) Phase() Phase {
	switch {
	case s.Ended:
		return PhaseEnded
	case s.Running:
		return PhaseRunning
	case s.Remaining == s.Duration && s.StartedAt.IsZero():
		return PhaseIdle
	default:
		return PhasePaused
	}
}

// RemainingAt is Duration minus the time elapsed since StartedAt, clamped
// to [0, Duration]. It never decrements a counter.
func (s State) RemainingAt(now time.Time) time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return s.Remaining
	}
	left := s.Duration - Millis(now).Sub(s.StartedAt)
	switch {
	case left < 0:
		return 0
	case left > s.Duration:
		return s.Duration
	}
	return left
}

// Elapsed is the exam time consumed so far.
func (s State) Elapsed(now time.Time) time.Duration {
	return s.Duration - s.RemainingAt(now)
}

func (s State) Start(now time.Time) (State, error) {
	switch s.Phase() {
	case PhaseRunning:
		return s, apperrors.ErrAlreadyRunning
	case PhaseEnded:
		return s, apperrors.ErrSessionEnded
	}
	s.StartedAt = Millis(now).Add(-(s.Duration - s.Remaining))
	s.Running = true
	return s, nil
}

// Tick recomputes Remaining and ends the session once it reaches zero.
func (s State) Tick(now time.Time) State {
	if !s.Running {
		return s
	}
	s.Remaining = s.RemainingAt(now)
	if s.Remaining == 0 {
		s.Running = false
		s.Ended = true
	}
	return s
}

func (s State) Pause(now time.Time) (State, error) {
	if !s.Running {
		if s.Ended {
			return s, apperrors.ErrSessionEnded
		}
		return s, apperrors.ErrNotRunning
	}
	s = s.Tick(now)
	s.Running = false
	return s, nil
}

// Exit ends the session early. A session that never started gets a
// synthesized StartedAt so the summary still has an anchor.
func (s State) Exit(now time.Time) (State, error) {
	if s.Ended {
		return s, apperrors.ErrSessionEnded
	}
	now = Millis(now)
	if s.Running {
		s = s.Tick(now)
		s.Running = false
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = now.Add(-(s.Duration - s.Remaining))
	}
	s.Ended = true
	return s, nil
}

// Reset returns to a fresh session. The sound preference survives.
func (s State) Reset() State {
	fresh := NewState(s.Duration)
	fresh.SoundOn = s.SoundOn
	return fresh
}

// Record appends a violation in any phase, including after the end. The
// archived copy of an ended session is not touched.
func (s State) Record(category Category, now time.Time) (State, error) {
	if err := category.Validate(); err != nil {
		return s, err
	}
	s.Violations = s.Violations.With(category, Millis(now))
	return s, nil
}

func (s State) SetSound(on bool) State {
	s.SoundOn = on
	return s
}

// Normalize restores the invariants on a state that came from outside
// (a stored or remote record).
func (s State) Normalize() State {
	if s.Duration <= 0 {
		s.Duration = DefaultDuration
	}
	s.Remaining = s.Remaining.Truncate(time.Millisecond)
	if s.Remaining < 0 {
		s.Remaining = 0
	}
	if s.Remaining > s.Duration {
		s.Remaining = s.Duration
	}
	if s.Running && s.Ended {
		s.Running = false
	}
	if s.Running && s.StartedAt.IsZero() {
		s.Running = false
	}
	s.StartedAt = Millis(s.StartedAt)
	s.Violations = s.Violations.normalized()
	return s
}
