package dto

import "time"

type EventKind string

const (
	EventWarning         EventKind = "warning"
	EventCriticalStarted EventKind = "critical_started"
	EventCriticalStopped EventKind = "critical_stopped"
)

type Event struct {
	Kind  EventKind
	Title string
	Body  string
}

type ObserveInput struct {
	Previous time.Duration
	Current  time.Duration
	SoundOn  bool
	// Resumed marks a start or resume; entering the critical window that
	// way starts the alert even without a crossing.
	Resumed bool
}

type StatusOutput struct {
	CriticalActive bool
	ToneActive     bool
	Dismissed      bool
	AudioUnlocked  bool
}
