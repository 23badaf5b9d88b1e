package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "examclock/internal/platform/errors"
)

// Category is one of the closed set of proctoring violations.
type Category string

const (
	CategoryMultipleFaces Category = "multipleFaces"
	CategoryTabSwitch     Category = "tabSwitch"
	CategoryProhibitedApp Category = "prohibitedApp"
)

var categories = []Category{CategoryMultipleFaces, CategoryTabSwitch, CategoryProhibitedApp}

// Categories lists the categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func ParseCategory(raw string) (Category, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(raw)))
	for _, c := range categories {
		if strings.ToLower(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCategory, raw)
}

func (c Category) Validate() error {
	for _, known := range categories {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", apperrors.ErrUnknownCategory, string(c))
}

// Label is the long form used in the live log and timeline.
func (c Category) Label() string {
	switch c {
	case CategoryMultipleFaces:
		return "Multiple Faces Detected"
	case CategoryTabSwitch:
		return "Tab Switch Detected"
	case CategoryProhibitedApp:
		return "Prohibited Application Detected"
	}
	return string(c)
}

// ShortLabel is the form used in summary tallies.
func (c Category) ShortLabel() string {
	switch c {
	case CategoryMultipleFaces:
		return "Multiple Faces"
	case CategoryTabSwitch:
		return "Tab Switch"
	case CategoryProhibitedApp:
		return "Prohibited App"
	}
	return string(c)
}

// ViolationLog holds append-only timestamps per category. Values are
// treated as immutable: With returns a new log.
type ViolationLog map[Category][]time.Time

type Entry struct {
	Category Category
	At       time.Time
}

func NewViolationLog() ViolationLog {
	log := make(ViolationLog, len(categories))
	for _, c := range categories {
		log[c] = []time.Time{}
	}
	return log
}

func (l ViolationLog) Clone() ViolationLog {
	out := make(ViolationLog, len(categories))
	for _, c := range categories {
		out[c] = append([]time.Time{}, l[c]...)
	}
	return out
}

func (l ViolationLog) With(category Category, at time.Time) ViolationLog {
	out := l.Clone()
	out[category] = append(out[category], at)
	return out
}

func (l ViolationLog) Total() int {
	total := 0
	for _, c := range categories {
		total += len(l[c])
	}
	return total
}

func (l ViolationLog) Counts() map[Category]int {
	out := make(map[Category]int, len(categories))
	for _, c := range categories {
		out[c] = len(l[c])
	}
	return out
}

// Entries returns the log in storage order: category order, then append order.
func (l ViolationLog) Entries() []Entry {
	out := make([]Entry, 0, l.Total())
	for _, c := range categories {
		for _, at := range l[c] {
			out = append(out, Entry{Category: c, At: at})
		}
	}
	return out
}

// Timeline merges every category chronologically. Equal timestamps keep
// category order.
func (l ViolationLog) Timeline() []Entry {
	out := l.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Recent returns up to n entries, most recent first. n <= 0 means all.
func (l ViolationLog) Recent(n int) []Entry {
	timeline := l.Timeline()
	out := make([]Entry, 0, len(timeline))
	for i := len(timeline) - 1; i >= 0; i-- {
		out = append(out, timeline[i])
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

func (l ViolationLog) normalized() ViolationLog {
	out := make(ViolationLog, len(categories))
	for _, c := range categories {
		times := make([]time.Time, 0, len(l[c]))
		for _, at := range l[c] {
			times = append(times, Millis(at))
		}
		out[c] = times
	}
	return out
}
