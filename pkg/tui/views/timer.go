// Package views holds the Bubble Tea models for running timers and
// protocols in the terminal.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/benchquest/pkg/research"
	"tableflip.dev/benchquest/pkg/timeutil"
	"tableflip.dev/benchquest/pkg/tui/theme"
)

const maxBarWidth = 60

// TickMsg is sent after every session tick so views redraw.
type TickMsg struct {
	Completed []research.Timer
}

// TimerModel shows one research timer with a progress bar.
type TimerModel struct {
	store *research.Store
	id    string
	theme theme.Theme
	bar   progress.Model

	quitting bool
}

func newBar(th theme.Theme) progress.Model {
	bar := progress.New(progress.WithGradient(th.Muted, th.Accent))
	bar.Width = 40
	return bar
}

// NewTimer shows the timer id from store.
func NewTimer(store *research.Store, id string, th theme.Theme) *TimerModel {
	return &TimerModel{store: store, id: id, theme: th, bar: newBar(th)}
}

func (m *TimerModel) Init() tea.Cmd { return nil }

func (m *TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = barWidth(msg.Width)
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			toggleTimer(m.store, m.id)
		case "r":
			m.store.ResetTimer(m.id)
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *TimerModel) View() string {
	t, ok := m.store.Timer(m.id)
	if !ok {
		return m.theme.Footer.Status.Render("timer not found") + "\n"
	}
	body := timerView(m.theme, m.bar, t)
	help := m.theme.Footer.Help.Render(helpLine("space", "start/pause", "r", "reset", "q", "quit"))
	return lipgloss.JoinVertical(lipgloss.Left, m.theme.Panel.Frame.Render(body), help) + "\n"
}

// Quitting reports whether the user asked to leave.
func (m *TimerModel) Quitting() bool { return m.quitting }

func toggleTimer(store *research.Store, id string) {
	t, ok := store.Timer(id)
	if !ok {
		return
	}
	if t.Running {
		store.PauseTimer(id)
	} else {
		store.StartTimer(id)
	}
}

func timerView(th theme.Theme, bar progress.Model, t research.Timer) string {
	elapsed := 0.0
	if t.Duration > 0 {
		elapsed = float64(t.Duration-t.Remaining) / float64(t.Duration)
	}
	state := "paused"
	switch {
	case t.Completed:
		state = "complete"
	case t.Running:
		state = "running"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		th.Panel.Title.Render(t.Name),
		"",
		th.Panel.Active.Render(timeutil.Clock(t.Remaining))+"  "+th.Footer.Status.Render(state),
		bar.ViewAs(elapsed),
	)
}

func barWidth(termWidth int) int {
	w := termWidth - 10
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

// helpLine renders key/description pairs.
func helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s %s", pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, " • ")
}
