package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	alertdto "examclock/internal/modules/alert/dto"
	sessiondto "examclock/internal/modules/session/dto"
	"examclock/internal/ui/theme"
	instructionsview "examclock/internal/ui/views/instructions"
	timerview "examclock/internal/ui/views/timer"
)

const (
	titleIdle     = "Exam Timer"
	titleComplete = "Session Complete"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// SessionPort is the slice of the session use-case the view drives.
type SessionPort interface {
	Load(ctx context.Context) (sessiondto.Snapshot, error)
	Tick(ctx context.Context) (sessiondto.Snapshot, error)
	Start(ctx context.Context) (sessiondto.Snapshot, error)
	Pause(ctx context.Context) (sessiondto.Snapshot, error)
	Exit(ctx context.Context) (sessiondto.Snapshot, error)
	Reset(ctx context.Context) (sessiondto.Snapshot, error)
	Record(ctx context.Context, category string) (sessiondto.Snapshot, error)
	SetSound(ctx context.Context, on bool) (sessiondto.Snapshot, error)
	EnableSound(ctx context.Context) (sessiondto.Snapshot, error)
	Dismiss(ctx context.Context) (sessiondto.Snapshot, error)
}

// ─── screens ─────────────────────────────────────────────────────────────────

type screen int

const (
	screenInstructions screen = iota
	screenTimer
)

// ─── messages ────────────────────────────────────────────────────────────────

// RemoteMsg carries a snapshot produced by a change in another view.
type RemoteMsg struct {
	Snapshot sessiondto.Snapshot
}

type snapshotMsg struct {
	op   string
	snap sessiondto.Snapshot
	err  error
}

type tickMsg struct{ gen int }

type titleTickMsg struct{ gen int }

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	Exit    key.Binding
	Reset   key.Binding
	New     key.Binding
	Faces   key.Binding
	Tab     key.Binding
	App     key.Binding
	Sound   key.Binding
	Enable  key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/resume")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Exit:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "exit test")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Faces:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "multiple faces")),
		Tab:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "tab switch")),
		App:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "prohibited app")),
		Sound:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sound on/off")),
		Enable:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "enable sound")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss alert")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Exit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Exit, k.Reset, k.New},
		{k.Faces, k.Tab, k.App},
		{k.Sound, k.Enable, k.Dismiss},
		{k.Help, k.Quit},
	}
}

var categoryKeys = map[string]string{
	"1": "multipleFaces",
	"2": "tabSwitch",
	"3": "prohibitedApp",
}

// ─── model ───────────────────────────────────────────────────────────────────

// Options configures the root model.
type Options struct {
	Label        string
	Duration     time.Duration
	TickInterval time.Duration
	Warning      time.Duration
	Critical     time.Duration
	AutoStart    bool
}

// Model is the root Bubble Tea model. It routes between the instructions
// and timer screens, drives the tick loop and owns the quit guard and the
// critical alert modal. Session logic stays behind SessionPort.
type Model struct {
	session SessionPort
	opts    Options

	instructions instructionsview.Model
	timer        timerview.Model

	screen      screen
	snap        sessiondto.Snapshot
	keys        keyMap
	help        help.Model
	showHelp    bool
	confirmQuit bool
	status      string
	width       int
	height      int

	// The tick loop and the hidden-window title loop are cancelled by
	// bumping their generation; stale messages are dropped.
	tickGen  int
	ticking  bool
	titleGen int
	blurred  bool
}

func NewModel(session SessionPort, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	if opts.Label == "" {
		opts.Label = titleIdle
	}
	return Model{
		session: session,
		opts:    opts,
		instructions: instructionsview.New(
			opts.Label,
			formatMinutes(opts.Duration),
			formatMinutes(opts.Warning),
			formatMinutes(opts.Critical),
		),
		timer:  timerview.New(opts.Warning, opts.Critical),
		keys:   defaultKeys(),
		help:   help.New(),
		status: "loading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.call("load", m.session.Load),
		tea.SetWindowTitle(titleIdle),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3}
		m.instructions, _ = m.instructions.Update(inner)
		m.timer, _ = m.timer.Update(inner)
		return m, nil

	case snapshotMsg:
		return m.applySnapshot(msg)

	case RemoteMsg:
		m.status = "updated from another window"
		return m.applySnapshot(snapshotMsg{op: "remote", snap: msg.Snapshot})

	case tickMsg:
		if msg.gen != m.tickGen || !m.ticking {
			return m, nil
		}
		return m, tea.Batch(m.call("tick", m.session.Tick), m.scheduleTick())

	case tea.BlurMsg:
		m.blurred = true
		m.titleGen++
		return m, tea.Batch(tea.SetWindowTitle(m.hiddenTitle()), m.titleTick())

	case tea.FocusMsg:
		m.blurred = false
		m.titleGen++
		return m, tea.SetWindowTitle(m.focusTitle())

	case titleTickMsg:
		if msg.gen != m.titleGen || !m.blurred {
			return m, nil
		}
		return m, tea.Batch(tea.SetWindowTitle(m.hiddenTitle()), m.titleTick())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.screen == screenTimer {
		m.timer, cmd = m.timer.Update(msg)
	} else {
		m.instructions, cmd = m.instructions.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N", "esc":
			m.confirmQuit = false
			m.status = "still running"
		}
		return m, nil
	}

	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// The critical modal holds every key except dismiss and quit.
	if m.modalVisible() {
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			return m, m.call("dismiss", m.session.Dismiss)
		case msg.String() == "ctrl+c":
			return m.requestQuit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	if m.screen == screenInstructions {
		if msg.String() == "enter" {
			m.screen = screenTimer
			return m, m.call("start", m.session.Start)
		}
		var cmd tea.Cmd
		m.instructions, cmd = m.instructions.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		return m, m.call("start", m.session.Start)
	case key.Matches(msg, m.keys.Pause):
		return m, m.call("pause", m.session.Pause)
	case key.Matches(msg, m.keys.Exit):
		return m, m.call("exit", m.session.Exit)
	case key.Matches(msg, m.keys.Reset):
		return m, m.call("reset", m.session.Reset)
	case key.Matches(msg, m.keys.New):
		if m.snap.Ended {
			return m, m.call("reset", m.session.Reset)
		}
	case key.Matches(msg, m.keys.Faces), key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.App):
		category := categoryKeys[msg.String()]
		return m, m.call("record", func(ctx context.Context) (sessiondto.Snapshot, error) {
			return m.session.Record(ctx, category)
		})
	case key.Matches(msg, m.keys.Sound):
		on := !m.snap.SoundOn
		return m, m.call("sound", func(ctx context.Context) (sessiondto.Snapshot, error) {
			return m.session.SetSound(ctx, on)
		})
	case key.Matches(msg, m.keys.Enable):
		return m, m.call("enable", m.session.EnableSound)
	}

	var cmd tea.Cmd
	m.timer, cmd = m.timer.Update(msg)
	return m, cmd
}

// requestQuit guards against leaving a running exam by accident.
func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.snap.Running && !m.snap.Ended {
		m.confirmQuit = true
		return m, nil
	}
	return m, tea.Quit
}

func (m Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = msg.op + ": " + msg.err.Error()
	} else if msg.op != "tick" && msg.op != "remote" {
		m.status = msg.op + " ok"
	}
	if msg.snap.Phase != "" {
		m.snap = msg.snap
	}
	m.timer = m.timer.SetSnapshot(m.snap)
	for _, ev := range msg.snap.Events {
		m.status = eventStatus(ev)
	}

	var cmds []tea.Cmd
	switch {
	case msg.op == "load":
		switch {
		case m.snap.Phase != "idle":
			m.screen = screenTimer
		case m.opts.AutoStart:
			m.screen = screenTimer
		}
		if m.opts.AutoStart && (m.snap.Phase == "idle" || m.snap.Phase == "paused") {
			cmds = append(cmds, m.call("start", m.session.Start))
		}
	case msg.op == "reset" && msg.err == nil:
		m.screen = screenInstructions
	case msg.op == "remote" && m.snap.Phase == "idle":
		m.screen = screenInstructions
	case msg.op == "remote":
		m.screen = screenTimer
	}
	if !m.snap.Running || m.snap.Ended {
		m.confirmQuit = false
	}

	switch {
	case m.snap.Running && !m.ticking:
		m.ticking = true
		m.tickGen++
		cmds = append(cmds, m.scheduleTick())
	case !m.snap.Running && m.ticking:
		m.ticking = false
		m.tickGen++
	}
	if !m.blurred && (msg.op == "exit" || msg.op == "reset" || msg.op == "tick" || msg.op == "remote") {
		cmds = append(cmds, tea.SetWindowTitle(m.focusTitle()))
	}
	return m, tea.Batch(cmds...)
}

func eventStatus(ev alertdto.Event) string {
	switch ev.Kind {
	case alertdto.EventWarning:
		return ev.Body
	case alertdto.EventCriticalStarted:
		return ev.Title
	case alertdto.EventCriticalStopped:
		return "alert cleared"
	}
	return ""
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	status := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(status), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.confirmQuit:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			theme.Modal.Render("The exam is still running.\nQuit anyway? (y/n)"))
	case m.modalVisible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.renderModal())
	case m.screen == screenTimer:
		content = m.timer.View()
	default:
		content = m.instructions.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

func (m Model) renderHeader() string {
	title := theme.Title.Render("examclock") + theme.Muted.Render("  "+m.opts.Label)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(title) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) renderModal() string {
	title := lipgloss.NewStyle().Foreground(theme.Red).Bold(true).Render(m.snap.RemainingText + " remaining")
	body := "Critical: time is almost up. Please wrap up."
	return theme.Modal.Render(title + "\n\n" + body + "\n\n" + theme.Muted.Render("enter to dismiss"))
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) modalVisible() bool {
	return m.screen == screenTimer && m.snap.Alert.CriticalActive && !m.snap.Alert.Dismissed
}

func (m Model) hiddenTitle() string {
	if m.snap.RemainingText == "" {
		return titleIdle
	}
	return m.snap.RemainingText + " — " + titleIdle
}

func (m Model) focusTitle() string {
	if m.snap.Ended {
		return titleComplete
	}
	return titleIdle
}

func (m Model) call(op string, fn func(context.Context) (sessiondto.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(context.Background())
		return snapshotMsg{op: op, snap: snap, err: err}
	}
}

func (m Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.opts.TickInterval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) titleTick() tea.Cmd {
	gen := m.titleGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return titleTickMsg{gen: gen} })
}

func formatMinutes(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
