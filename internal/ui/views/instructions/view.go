package instructions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"examclock/internal/ui/theme"
)

const rules = `# %s

**Duration:** %s

## Before you begin

- The clock keeps counting if this window closes. Reopen it to continue.
- Pausing stops the clock; time spent paused does not count.
- A warning appears at %s remaining and a sustained alert at %s.
- The proctor logs violations with keys **1**, **2** and **3**.

## Controls

| Key | Action |
|-----|--------|
| s | start or resume |
| p | pause |
| x | exit the test |
| r | reset |
| 1 / 2 / 3 | multiple faces / tab switch / prohibited app |
| m | sound on or off |
| e | enable sound |
| ? | help |
`

// Model shows the exam rules before the clock starts.
type Model struct {
	viewport viewport.Model
	markdown string
	width    int
	height   int
}

func New(label, duration, warning, critical string) Model {
	return Model{
		viewport: viewport.New(0, 0),
		markdown: fmt.Sprintf(rules, label, duration, warning, critical),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.viewport.Width = max(size.Width, 1)
		m.viewport.Height = max(size.Height-2, 1)
		m.viewport.SetContent(m.render())
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return m.markdown
	}
	footer := theme.Hot.Render("press enter to start") + theme.Muted.Render("  ·  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", footer)
}

func (m Model) render() string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		return m.markdown
	}
	out, err := r.Render(m.markdown)
	if err != nil {
		return m.markdown
	}
	return strings.TrimRight(out, "\n")
}
