package domain

import (
	"fmt"
	"time"
)

const (
	DefaultWarning  = 5 * time.Minute
	DefaultCritical = time.Minute

	AppTitle    = "Exam Timer"
	CriticalTag = "exam-critical"
)

type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarning, Critical: DefaultCritical}
}

func (t Thresholds) warningSec() int  { return Seconds(t.Warning) }
func (t Thresholds) criticalSec() int { return Seconds(t.Critical) }

// InCritical reports whether a remaining value sits inside the critical
// window, excluding zero.
func (t Thresholds) InCritical(sec int) bool {
	return sec > 0 && sec <= t.criticalSec()
}

type Effect int

const (
	EffectNone Effect = iota
	EffectWarn
	EffectCriticalStart
	EffectCriticalStop
)

func (e Effect) String() string {
	switch e {
	case EffectWarn:
		return "warn"
	case EffectCriticalStart:
		return "critical_start"
	case EffectCriticalStop:
		return "critical_stop"
	}
	return "none"
}

// Seconds rounds to the nearest whole second, as displayed.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + 500*time.Millisecond) / time.Second)
}

// Evaluate maps a move of the remaining time from prev to next whole
// seconds onto the edge-triggered alert it causes.
func Evaluate(t Thresholds, prev, next int) Effect {
	warn, crit := t.warningSec(), t.criticalSec()
	switch {
	case next == 0:
		return EffectCriticalStop
	case prev > crit && next <= crit:
		return EffectCriticalStart
	case prev <= crit && next > crit:
		return EffectCriticalStop
	case prev > warn && next > crit && next <= warn:
		return EffectWarn
	}
	return EffectNone
}

type Notification struct {
	Title string
	Body  string
	Tag   string
}

func WarningNotification(t Thresholds) Notification {
	return Notification{Title: AppTitle, Body: describe(t.Warning) + " remaining"}
}

func CriticalNotification(t Thresholds) Notification {
	left := describe(t.Critical)
	return Notification{
		Title: fmt.Sprintf("%s — %s remaining", AppTitle, left),
		Body:  fmt.Sprintf("Critical: %s left. Please wrap up.", left),
		Tag:   CriticalTag,
	}
}

func describe(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return plural(int(d/time.Minute), "minute")
	}
	return plural(Seconds(d), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
