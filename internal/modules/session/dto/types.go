package dto

import (
	"time"

	alertdto "examclock/internal/modules/alert/dto"
)

type ViolationEntry struct {
	Category string
	Label    string
	At       time.Time
}

type CategoryCount struct {
	Key   string
	Label string
	Count int
}

type SummaryOutput struct {
	StartedAt     time.Time
	TimeTaken     time.Duration
	TimeTakenText string
	Counts        []CategoryCount
	Total         int
	Timeline      []ViolationEntry
}

// Snapshot is everything a view needs to render one frame.
type Snapshot struct {
	Phase            string
	Remaining        time.Duration
	RemainingText    string
	RemainingSeconds int
	Duration         time.Duration
	Running          bool
	Ended            bool
	SoundOn          bool
	StartedAt        time.Time
	Counts           []CategoryCount
	Total            int
	Recent           []ViolationEntry
	Alert            alertdto.StatusOutput
	// Events are alerts raised by the operation that produced this snapshot.
	Events  []alertdto.Event
	Summary *SummaryOutput
}

type ReportOutput struct {
	SessionID string
	Label     string
	StartedAt time.Time
	Path      string
	Markdown  string
}

type HistoryEntry struct {
	ID        string
	Label     string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	TimeTaken time.Duration
	EndedBy   string
	Total     int
	Counts    []CategoryCount
}
