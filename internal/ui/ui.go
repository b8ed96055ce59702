package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/somnolab/somno/internal/logfeed"
	"github.com/somnolab/somno/internal/state"
)

// maxLogLines bounds how much of the prediction log the viewport holds.
const maxLogLines = 500

// Options configures the watch UI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	SessionName string
	PollTick    time.Duration
	ThemeName   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	store       *state.Store
	sessionName string
	tick        time.Duration

	theme  Theme
	styles Styles

	spinner  spinner.Model
	viewport viewport.Model

	snapshot state.Snapshot
	follow   bool
	width    int
	height   int
	ready    bool
}

type tickMsg time.Time

// NewModel builds the initial model from options.
func NewModel(opts Options) Model {
	theme := ThemeByName(opts.ThemeName)
	styles := theme.Styles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	tick := opts.PollTick
	if tick <= 0 {
		tick = time.Second
	}

	return Model{
		store:       opts.Store,
		sessionName: opts.SessionName,
		tick:        tick,
		theme:       theme,
		styles:      styles,
		spinner:     sp,
		follow:      true,
	}
}

// Run starts the watch UI and blocks until the user exits or the context is
// cancelled.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scheduleTick())
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.follow = true
			m.viewport.GotoBottom()
			return m, nil
		case "up", "k", "pgup":
			m.follow = false
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.scheduleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// layout sizes the viewport to whatever the header and footer leave over.
func (m *Model) layout() {
	headerLines := 3
	footerLines := 1
	frame := 2 // log frame border
	height := m.height - headerLines - footerLines - frame
	if height < 3 {
		height = 3
	}
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(width, height)
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
}

func (m *Model) refresh() {
	m.snapshot = m.store.Snapshot()
	lines := logfeed.Tail(m.snapshot.LogLines, maxLogLines)
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("somno") +
		m.styles.Muted.Render(" · session ") +
		m.styles.Status.Render(m.sessionName))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.Separator.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(m.styles.LogFrame.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("G follow · g top · q quit"))
	return b.String()
}

func (m Model) statusLine() string {
	snap := m.snapshot
	if snap.IsOffline() {
		return m.styles.Danger.Render("server unreachable") +
			m.styles.Muted.Render(fmt.Sprintf(" (%d failed polls)", snap.ConsecutiveFailures))
	}
	if !snap.HasStatus {
		return m.spinner.View() + m.styles.Muted.Render(" waiting for status...")
	}

	status := m.styles.statusStyle(snap.Status).Render(strings.ToUpper(snap.Status.String()))
	if !snap.Status.Terminal() {
		status = m.spinner.View() + " " + status
	}
	if !snap.LastUpdated.IsZero() {
		status += m.styles.Muted.Render(" · updated " + snap.LastUpdated.Format("15:04:05"))
	}
	if snap.LastError != nil {
		status += m.styles.Warning.Render(" · last poll failed")
	}
	return status
}
