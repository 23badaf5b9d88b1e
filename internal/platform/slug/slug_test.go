package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Final Exam":            "final-exam",
		"  CS 101 -- Midterm! ": "cs-101-midterm",
		"Prüfung Analysis":      "pr-fung-analysis",
		"":                      "session",
		"!!!":                   "session",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMakeCapsLength(t *testing.T) {
	t.Parallel()
	got := Make(strings.Repeat("abc ", 30))
	if len(got) > MaxLen {
		t.Fatalf("slug too long: %d", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug must not end with a dash: %q", got)
	}
}
