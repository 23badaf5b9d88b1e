package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "examclock/internal/modules/session/dto"
	"examclock/internal/ui/theme"
)

// Urgency buckets the remaining time for styling.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyCritical
)

// Model renders the running clock, the violation log and, once the
// session has ended, its summary.
type Model struct {
	snap     sessiondto.Snapshot
	warning  time.Duration
	critical time.Duration
	progress progress.Model
	log      viewport.Model
	width    int
	height   int
}

func New(warning, critical time.Duration) Model {
	return Model{
		warning:  warning,
		critical: critical,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		log:      viewport.New(0, 0),
	}
}

func (m Model) SetSnapshot(snap sessiondto.Snapshot) Model {
	m.snap = snap
	m.log.SetContent(m.renderLog())
	return m
}

func (m Model) Snapshot() sessiondto.Snapshot { return m.snap }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.progress.Width = max(min(size.Width-8, 60), 10)
		m.log.Width = max(size.Width-6, 10)
		m.log.Height = max(size.Height-18, 3)
		m.log.SetContent(m.renderLog())
	}
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m Model) Urgency() Urgency {
	sec := m.snap.RemainingSeconds
	switch {
	case m.snap.Ended || sec <= 0:
		return UrgencyNormal
	case time.Duration(sec)*time.Second <= m.critical:
		return UrgencyCritical
	case time.Duration(sec)*time.Second <= m.warning:
		return UrgencyWarning
	}
	return UrgencyNormal
}

func (m Model) View() string {
	if m.snap.Ended && m.snap.Summary != nil {
		return m.renderSummary()
	}
	sections := []string{
		m.renderHeader(),
		"",
		m.clockStyle().Render(bigClock(m.snap.RemainingText)),
		"",
		m.progress.ViewAs(m.fraction()),
		"",
		m.renderCounters(),
		theme.Pane.Width(max(m.log.Width+2, 12)).Render(m.log.View()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) fraction() float64 {
	if m.snap.Duration <= 0 {
		return 0
	}
	return float64(m.snap.Remaining) / float64(m.snap.Duration)
}

// clockStyle blinks the critical face on alternate seconds.
func (m Model) clockStyle() lipgloss.Style {
	switch m.Urgency() {
	case UrgencyCritical:
		if m.snap.RemainingSeconds%2 == 0 {
			return theme.ClockCritical
		}
		return theme.ClockDim
	case UrgencyWarning:
		return theme.ClockWarning
	}
	return theme.Clock
}

func (m Model) renderHeader() string {
	phase := strings.ToUpper(m.snap.Phase)
	badge := theme.Title.Render(phase)
	switch m.Urgency() {
	case UrgencyCritical:
		badge += "  " + lipgloss.NewStyle().Foreground(theme.Red).Bold(true).Render("CRITICAL")
	case UrgencyWarning:
		badge += "  " + lipgloss.NewStyle().Foreground(theme.Yellow).Render("warning")
	}
	sound := "sound on"
	if !m.snap.SoundOn {
		sound = "sound off"
	} else if !m.snap.Alert.AudioUnlocked {
		sound = "sound on (press e to enable)"
	}
	return badge + theme.Muted.Render("  ·  "+sound)
}

func (m Model) renderCounters() string {
	parts := make([]string, 0, len(m.snap.Counts))
	for i, c := range m.snap.Counts {
		parts = append(parts, fmt.Sprintf("[%d] %s: %d", i+1, c.Label, c.Count))
	}
	total := theme.Hot.Render(fmt.Sprintf("Violations: %d", m.snap.Total))
	return total + theme.Muted.Render("   "+strings.Join(parts, "   "))
}

func (m Model) renderLog() string {
	if len(m.snap.Recent) == 0 {
		return theme.Muted.Render("No violations recorded.")
	}
	lines := make([]string, 0, len(m.snap.Recent))
	for _, e := range m.snap.Recent {
		lines = append(lines, fmt.Sprintf("%s  %s", theme.Muted.Render(e.At.Local().Format("15:04:05")), e.Label))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	s := m.snap.Summary
	lines := []string{
		theme.Title.Render("Session Complete"),
		"",
		fmt.Sprintf("Total time taken: %s", theme.Hot.Render(s.TimeTakenText)),
		"",
	}
	for _, c := range s.Counts {
		lines = append(lines, fmt.Sprintf("%s: %d", c.Label, c.Count))
	}
	lines = append(lines, "", theme.Title.Render("Timeline"))
	if len(s.Timeline) == 0 {
		lines = append(lines, theme.Muted.Render("No violations recorded."))
	}
	for _, e := range s.Timeline {
		lines = append(lines, fmt.Sprintf("%s  %s", theme.Muted.Render(e.At.Local().Format("15:04:05")), e.Label))
	}
	lines = append(lines, "", theme.Muted.Render("n new session  ·  q quit"))
	return theme.PaneActive.Render(strings.Join(lines, "\n"))
}
