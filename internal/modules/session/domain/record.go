package domain

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	apperrors "examclock/internal/platform/errors"
)

// TimestampLayout is how violation instants are written to the record.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type record struct {
	RemainingMs int64            `json:"remainingMs"`
	Running     bool             `json:"running"`
	Ended       bool             `json:"ended"`
	StartedAt   *int64           `json:"startedAt"`
	SoundOn     bool             `json:"soundOn"`
	Violations  recordViolations `json:"violations"`
}

type recordViolations struct {
	MultipleFaces []string `json:"multipleFaces"`
	TabSwitch     []string `json:"tabSwitch"`
	ProhibitedApp []string `json:"prohibitedApp"`
}

// MarshalRecord encodes the durable record shared between views. Duration
// is configuration and is not part of it.
func MarshalRecord(s State) ([]byte, error) {
	s = s.Normalize()
	rec := record{
		RemainingMs: s.Remaining.Milliseconds(),
		Running:     s.Running,
		Ended:       s.Ended,
		SoundOn:     s.SoundOn,
		Violations: recordViolations{
			MultipleFaces: formatTimes(s.Violations[CategoryMultipleFaces]),
			TabSwitch:     formatTimes(s.Violations[CategoryTabSwitch]),
			ProhibitedApp: formatTimes(s.Violations[CategoryProhibitedApp]),
		},
	}
	if !s.StartedAt.IsZero() {
		ms := s.StartedAt.UnixMilli()
		rec.StartedAt = &ms
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return payload, nil
}

func formatTimes(times []time.Time) []string {
	out := make([]string, 0, len(times))
	for _, at := range times {
		out = append(out, at.UTC().Format(TimestampLayout))
	}
	return out
}

// maxEpochMs bounds epoch-millisecond instants read from a record.
const maxEpochMs = 8.64e15

// UnmarshalRecord hydrates a State from a stored record. Each field falls
// back to its default on its own; only a payload that is not a JSON object
// is rejected.
func UnmarshalRecord(payload []byte, duration time.Duration) (State, error) {
	state := NewState(duration)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return state, fmt.Errorf("%w: %v", apperrors.ErrCorruptState, err)
	}
	if fields == nil {
		return state, fmt.Errorf("%w: empty record", apperrors.ErrCorruptState)
	}

	if raw, ok := fields["remainingMs"]; ok {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err == nil && !math.IsNaN(ms) {
			// Clamp in milliseconds; large values overflow time.Duration.
			ms = math.Max(0, math.Min(ms, float64(state.Duration.Milliseconds())))
			state.Remaining = time.Duration(math.Round(ms)) * time.Millisecond
		}
	}
	decodeBool(fields, "running", &state.Running)
	decodeBool(fields, "ended", &state.Ended)
	decodeBool(fields, "soundOn", &state.SoundOn)
	if raw, ok := fields["startedAt"]; ok {
		if at, ok := decodeInstant(raw); ok {
			state.StartedAt = at
		}
	}
	if raw, ok := fields["violations"]; ok {
		state.Violations = decodeViolations(raw)
	}
	return state.Normalize(), nil
}

func decodeBool(fields map[string]json.RawMessage, key string, dst *bool) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}

func decodeViolations(raw json.RawMessage) ViolationLog {
	log := NewViolationLog()
	byCategory := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &byCategory); err != nil {
		return log
	}
	for _, c := range categories {
		list, ok := byCategory[string(c)]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(list, &items); err != nil {
			continue
		}
		for _, item := range items {
			if at, ok := decodeInstant(item); ok {
				log[c] = append(log[c], at)
			}
		}
	}
	return log
}

// decodeInstant accepts an ISO-8601 string or epoch milliseconds.
func decodeInstant(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return time.Time{}, false
		}
		at, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}, false
		}
		return Millis(at), true
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil || math.IsNaN(ms) || math.Abs(ms) > maxEpochMs {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC(), true
}
