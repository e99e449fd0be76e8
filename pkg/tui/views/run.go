package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/research"
	"tableflip.dev/benchquest/pkg/tui/theme"
)

// RunModel walks a protocol run step by step. Timer and checklist steps get
// a live research timer or checklist; every other widget shows its config.
type RunModel struct {
	run      *protocol.RunSession
	research *research.Store
	theme    theme.Theme
	bar      progress.Model

	// research ids created for each widget, so revisits reuse them
	timers     map[string]string
	checklists map[string]string

	saved    bool
	quitting bool
}

// NewRun prepares the first step of run.
func NewRun(run *protocol.RunSession, store *research.Store, th theme.Theme) *RunModel {
	m := &RunModel{
		run:        run,
		research:   store,
		theme:      th,
		bar:        newBar(th),
		timers:     make(map[string]string),
		checklists: make(map[string]string),
	}
	m.enter()
	return m
}

// enter creates the research state for the current step, or saves the run
// once every step is behind it.
func (m *RunModel) enter() {
	w, ok := m.run.Current()
	if !ok {
		if !m.saved {
			m.saved = m.run.Save()
		}
		return
	}
	switch cfg := w.Config.(type) {
	case protocol.TimerConfig:
		if _, ok := m.timers[w.ID]; ok {
			return
		}
		id := m.research.AddTimer(w.Label(), cfg.Duration, w.ID)
		m.timers[w.ID] = id
		if cfg.AutoStart {
			m.research.StartTimer(id)
		}
	case protocol.ChecklistConfig:
		if _, ok := m.checklists[w.ID]; ok {
			return
		}
		m.checklists[w.ID] = m.research.AddChecklist(w.Label(), w.ID, cfg.Items...)
	}
}

// leave pauses a timer the user moves away from.
func (m *RunModel) leave() {
	w, ok := m.run.Current()
	if !ok {
		return
	}
	if id, ok := m.timers[w.ID]; ok {
		m.research.PauseTimer(id)
	}
}

func (m *RunModel) Init() tea.Cmd { return nil }

func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = barWidth(msg.Width)
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m *RunModel) key(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "q", "esc", "ctrl+c":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}
	if m.run.Finished() {
		if k == "enter" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	w, _ := m.run.Current()
	switch k {
	case "enter", "n":
		m.leave()
		m.run.MarkDone()
		m.enter()
	case "s":
		m.leave()
		m.run.Next()
		m.enter()
	case " ":
		if id, ok := m.timers[w.ID]; ok {
			toggleTimer(m.research, id)
		}
	case "r":
		if id, ok := m.timers[w.ID]; ok {
			m.research.ResetTimer(id)
		}
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			m.toggleItem(w, int(k[0]-'1'))
		}
	}
	return m, nil
}

func (m *RunModel) toggleItem(w protocol.Widget, index int) {
	id, ok := m.checklists[w.ID]
	if !ok {
		return
	}
	c, ok := m.research.Checklist(id)
	if !ok || index >= len(c.Items) {
		return
	}
	m.research.ToggleChecklistItem(id, c.Items[index].ID)
}

// Saved reports whether the finished run reached the journal.
func (m *RunModel) Saved() bool { return m.saved }

func (m *RunModel) Quitting() bool { return m.quitting }

func (m *RunModel) View() string {
	if m.run.Finished() {
		return m.report()
	}
	p := m.run.Protocol()
	th := m.theme

	header := th.Panel.Title.Render(p.Name) + "  " +
		th.Footer.Status.Render(fmt.Sprintf("step %d of %d", m.run.Step()+1, len(p.Widgets)))

	var steps strings.Builder
	for i, w := range p.Widgets {
		line := fmt.Sprintf("%d. %s", i+1, w.Label())
		switch {
		case i == m.run.Step():
			steps.WriteString(th.Panel.Active.Render("▸ " + line))
		case m.run.Done(w.ID):
			steps.WriteString(th.Panel.Done.Render("✓ " + line))
		default:
			steps.WriteString(th.Panel.Body.Render("  " + line))
		}
		steps.WriteString("\n")
	}

	w, _ := m.run.Current()
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		strings.TrimRight(steps.String(), "\n"),
		"",
		m.step(w),
	)
	help := th.Footer.Help.Render(m.help(w))
	return lipgloss.JoinVertical(lipgloss.Left, th.Panel.Frame.Render(body), help) + "\n"
}

func (m *RunModel) step(w protocol.Widget) string {
	th := m.theme
	if id, ok := m.timers[w.ID]; ok {
		if t, ok := m.research.Timer(id); ok {
			return timerView(th, m.bar, t)
		}
	}
	if id, ok := m.checklists[w.ID]; ok {
		if c, ok := m.research.Checklist(id); ok {
			return checklistView(th, c)
		}
	}
	if w.Config == nil {
		return th.Panel.Body.Render(string(w.Type))
	}
	return th.Panel.Body.Render(w.Config.Summary())
}

func checklistView(th theme.Theme, c research.Checklist) string {
	var b strings.Builder
	b.WriteString(th.Panel.Title.Render(c.Title))
	if len(c.Items) == 0 {
		b.WriteString("\n")
		b.WriteString(th.Footer.Status.Render("no items"))
	}
	for i, item := range c.Items {
		mark := "[ ]"
		style := th.Panel.Body
		if item.Completed {
			mark = "[x]"
			style = th.Panel.Done
		}
		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%s %d. %s", mark, i+1, item.Text)))
	}
	return b.String()
}

func (m *RunModel) help(w protocol.Widget) string {
	pairs := []string{"enter", "done", "s", "skip"}
	if _, ok := m.timers[w.ID]; ok {
		pairs = append(pairs, "space", "start/pause", "r", "reset")
	}
	if _, ok := m.checklists[w.ID]; ok {
		pairs = append(pairs, "1-9", "toggle")
	}
	return helpLine(append(pairs, "q", "quit")...)
}

func (m *RunModel) report() string {
	th := m.theme
	status := "Run saved to journal."
	if !m.saved {
		status = "Run already saved."
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		th.Report.Header.Render("Protocol complete"),
		"",
		th.Report.Text.Render(m.run.Summary()),
		"",
		th.Footer.Status.Render(status),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		th.Report.Frame.Render(body),
		th.Footer.Help.Render(helpLine("enter", "close")),
	) + "\n"
}
