package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"examclock/internal/modules/session/domain"
	apperrors "examclock/internal/platform/errors"
)

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s = s.Tick(base.Add(12*time.Minute + 345*time.Millisecond))
	s, _ = s.Record(domain.CategoryMultipleFaces, base.Add(time.Minute+7*time.Millisecond))
	s, _ = s.Record(domain.CategoryTabSwitch, base.Add(2*time.Minute))
	s = s.SetSound(false)

	payload, err := domain.MarshalRecord(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := domain.UnmarshalRecord(payload, 45*time.Minute)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordWireFormat(t *testing.T) {
	t.Parallel()
	s, _ := domain.NewState(45 * time.Minute).Start(base)
	s, _ = s.Record(domain.CategoryTabSwitch, base.Add(1500*time.Millisecond))
	payload, err := domain.MarshalRecord(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(payload)
	for _, want := range []string{
		`"remainingMs":2700000`,
		`"running":true`,
		`"startedAt":1767603600000`,
		`"tabSwitch":["2026-01-05T09:00:01.500Z"]`,
		`"multipleFaces":[]`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("payload %s missing %s", text, want)
		}
	}

	idle, _ := domain.MarshalRecord(domain.NewState(time.Minute))
	if !strings.Contains(string(idle), `"startedAt":null`) {
		t.Fatalf("idle record must carry a null start: %s", idle)
	}
}

func TestUnmarshalRecordDefaultsPerField(t *testing.T) {
	t.Parallel()
	payload := `{
		"remainingMs": "soon",
		"running": true,
		"ended": true,
		"startedAt": "yesterday",
		"violations": {
			"tabSwitch": ["2026-01-05T09:00:00.000Z", "garbage", 1767603660000],
			"screenshots": ["2026-01-05T09:00:00.000Z"]
		}
	}`
	s, err := domain.UnmarshalRecord([]byte(payload), 45*time.Minute)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Remaining != 45*time.Minute || s.Running || !s.Ended || !s.StartedAt.IsZero() || !s.SoundOn {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	tabs := s.Violations[domain.CategoryTabSwitch]
	if len(tabs) != 2 || !tabs[1].Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected tab switches: %v", tabs)
	}
	if len(s.Violations) != 3 || len(s.Violations[domain.CategoryMultipleFaces]) != 0 {
		t.Fatalf("unknown categories must be dropped: %v", s.Violations)
	}
}

func TestUnmarshalRecordClampsRemaining(t *testing.T) {
	t.Parallel()
	s, err := domain.UnmarshalRecord([]byte(`{"remainingMs": 99999999, "soundOn": false}`), time.Minute)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Remaining != time.Minute || s.SoundOn {
		t.Fatalf("unexpected state: %+v", s)
	}
}

func TestUnmarshalRecordRejectsNonObject(t *testing.T) {
	t.Parallel()
	for _, payload := range []string{"", "[1,2]", "null", "{"} {
		if _, err := domain.UnmarshalRecord([]byte(payload), time.Minute); !errors.Is(err, apperrors.ErrCorruptState) {
			t.Fatalf("payload %q: expected corrupt state, got %v", payload, err)
		}
	}
}

func TestUnmarshalRecordClampsOutOfRangeNumbers(t *testing.T) {
	t.Parallel()
	cases := map[string]time.Duration{
		`{"remainingMs": 1e20}`:   45 * time.Minute,
		`{"remainingMs": 1e16}`:   45 * time.Minute,
		`{"remainingMs": -5}`:     0,
		`{"remainingMs": -1e20}`:  0,
		`{"remainingMs": 1500.4}`: 1500 * time.Millisecond,
	}
	for payload, want := range cases {
		s, err := domain.UnmarshalRecord([]byte(payload), 45*time.Minute)
		if err != nil {
			t.Fatalf("%s: unmarshal: %v", payload, err)
		}
		if s.Remaining != want {
			t.Fatalf("%s: remaining=%v, want %v", payload, s.Remaining, want)
		}
	}

	s, err := domain.UnmarshalRecord([]byte(`{"running": true, "startedAt": 1e300}`), 45*time.Minute)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.StartedAt.IsZero() {
		t.Fatalf("out of range startedAt must be dropped, got %v", s.StartedAt)
	}
}
