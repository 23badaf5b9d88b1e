package domain

import (
	"fmt"
	"time"
)

type Summary struct {
	StartedAt time.Time
	TimeTaken time.Duration
	Counts    map[Category]int
	Timeline  []Entry
}

// Summary reports consumed exam time (Duration - Remaining), which stays
// stable across reloads and excludes time spent paused.
func (s State) Summary() Summary {
	taken := s.Duration - s.Remaining
	if taken < 0 {
		taken = 0
	}
	return Summary{
		StartedAt: s.StartedAt,
		TimeTaken: taken,
		Counts:    s.Violations.Counts(),
		Timeline:  s.Violations.Timeline(),
	}
}

// TimeTakenText is "N/A" when nothing was consumed.
func (s Summary) TimeTakenText() string {
	if WholeSeconds(s.TimeTaken) == 0 {
		return "N/A"
	}
	return FormatClock(s.TimeTaken)
}

// WholeSeconds rounds half up, matching what the clock displays.
func WholeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + 500*time.Millisecond) / time.Second)
}

// FormatClock renders MM:SS; minutes are not capped at 59.
func FormatClock(d time.Duration) string {
	total := WholeSeconds(d)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Session is an ended session as archived in history.
type Session struct {
	ID        string
	Label     string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	TimeTaken time.Duration
	EndedBy   EndReason
	Timeline  []Entry
}

// Report is the stored markdown report of an archived session.
type Report struct {
	SessionID string
	Label     string
	StartedAt time.Time
	Path      string
	Markdown  string
}

type EndReason string

const (
	EndedByTimeout EndReason = "timeout"
	EndedByExit    EndReason = "exit"
)

func (s Session) Counts() map[Category]int {
	out := make(map[Category]int, len(categories))
	for _, c := range categories {
		out[c] = 0
	}
	for _, e := range s.Timeline {
		out[e.Category]++
	}
	return out
}

// SchemaVersion tags archived session reports.
const SchemaVersion = 1
