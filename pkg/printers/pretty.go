package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/quest"
	"tableflip.dev/benchquest/pkg/settings"
	"tableflip.dev/benchquest/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
	// Now is used for relative times; defaults to time.Now.
	Now func() time.Time
	// Theme picks the heatmap palette.
	Theme settings.ThemeMode
}

const wrapWidth = 60

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func (pp *PrettyPrint) w() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now != nil {
		return pp.Now()
	}
	return time.Now()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.w())
}

func (pp *PrettyPrint) Title(s string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.w(), s)
}

// TitleWithCount prints "title - n noun(s)".
func (pp *PrettyPrint) TitleWithCount(s string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.w(), s)
	if count != 1 {
		noun += "s"
	}
	_, _ = c.Fprintf(pp.w(), " - %d %s\n", count, noun)
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.w(), " none\n\n")
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	return tbl
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

// Protocols lists the library.
func (pp *PrettyPrint) Protocols(list []protocol.Protocol) {
	pp.TitleWithCount("Protocols", len(list), "protocol")
	if len(list) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	header := []interface{}{bold("Name"), bold("Steps"), bold("Modified")}
	if pp.ShowID {
		header = append([]interface{}{bold("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, p := range list {
		row := []interface{}{p.Name, len(p.Widgets), humanize.RelTime(p.LastModified, pp.now(), "ago", "from now")}
		if pp.ShowID {
			row = append([]interface{}{faint(p.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.w(), tbl)
	pp.NewLine()
}

// Protocol prints one protocol with its steps.
func (pp *PrettyPrint) Protocol(p protocol.Protocol) {
	pp.Title(p.Name)
	if p.Description != "" {
		_, _ = fmt.Fprintln(pp.w(), wordwrap.String(p.Description, wrapWidth))
	}
	_, _ = fmt.Fprintln(pp.w(), faint(fmt.Sprintf("created %s, modified %s",
		humanize.RelTime(p.Created, pp.now(), "ago", "from now"),
		humanize.RelTime(p.LastModified, pp.now(), "ago", "from now"))))
	pp.NewLine()
	if len(p.Widgets) == 0 {
		pp.none()
		return
	}
	pp.Widgets(p.Widgets)
}

func (pp *PrettyPrint) Widgets(widgets []protocol.Widget) {
	tbl := pp.table()
	for i, w := range widgets {
		summary := ""
		if w.Config != nil {
			summary = w.Config.Summary()
		}
		row := []interface{}{fmt.Sprintf("%d.", i+1), w.Label(), faint(protocol.DefaultTitle(w.Type)), summary}
		if pp.ShowID {
			row = append([]interface{}{faint(w.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.w(), tbl)
	pp.NewLine()
}

// WidgetTypes prints the palette.
func (pp *PrettyPrint) WidgetTypes() {
	tbl := pp.table()
	tbl.AddRow(bold("Type"), bold("Title"), bold("Default"))
	for _, t := range protocol.WidgetTypes() {
		tbl.AddRow(string(t), protocol.DefaultTitle(t), protocol.DefaultConfig(t).Summary())
	}
	_, _ = fmt.Fprintln(pp.w(), tbl)
}

// Bar renders progress out of target as a fixed width bar.
func Bar(progress, target, width int) string {
	if target <= 0 || width <= 0 {
		return ""
	}
	filled := progress * width / target
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func questType(t quest.Type) string {
	return titleCase(strings.ReplaceAll(string(t), "_", " "))
}

// Quests lists quests with progress bars.
func (pp *PrettyPrint) Quests(quests []quest.Quest) {
	pp.TitleWithCount("Quests", len(quests), "quest")
	if len(quests) == 0 {
		pp.none()
		return
	}
	done := color.New(color.FgGreen)
	tbl := pp.table()
	for _, q := range quests {
		mark := " "
		if q.Completed {
			mark = done.Sprint("✓")
		}
		row := []interface{}{mark, q.Title, Bar(q.Progress, q.Target, 10), fmt.Sprintf("%d/%d", q.Progress, q.Target), fmt.Sprintf("+%d", q.Reward), faint(questType(q.Type))}
		if pp.ShowID {
			row = append([]interface{}{faint(q.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.w(), tbl)
	pp.NewLine()
}

// Companion prints the lab companion card.
func (pp *PrettyPrint) Companion(c quest.Companion) {
	pp.Title("Companion")
	tbl := pp.table()
	tbl.AddRow("Mood", titleCase(string(c.Mood)))
	tbl.AddRow("Energy", fmt.Sprintf("%s %d/%d", Bar(c.Energy, quest.MaxEnergy, 10), c.Energy, quest.MaxEnergy))
	tbl.AddRow("Interactions", humanize.Comma(int64(c.TotalInteractions)))
	if !c.LastInteraction.IsZero() {
		tbl.AddRow("Last seen", humanize.RelTime(c.LastInteraction, pp.now(), "ago", "from now"))
	}
	_, _ = fmt.Fprintln(pp.w(), tbl)
	pp.NewLine()
}

// Journal prints one day.
func (pp *PrettyPrint) Journal(e journal.Entry) {
	pp.TitleWithCount(e.Date, len(e.Logs), "log")
	if len(e.Logs) == 0 {
		pp.none()
		return
	}
	for _, line := range e.Logs {
		wrapped := wordwrap.String(line, wrapWidth)
		_, _ = fmt.Fprintln(pp.w(), "• "+strings.ReplaceAll(wrapped, "\n", "\n  "))
	}
	pp.NewLine()
}

func (pp *PrettyPrint) Settings(s settings.Settings) {
	pp.Title("Settings")
	tbl := pp.table()
	tbl.AddRow("Theme", string(s.ThemeMode))
	tbl.AddRow("Corners", string(s.CornerStyle))
	_, _ = fmt.Fprintln(pp.w(), tbl)
}

// Status prints the dashboard.
func (pp *PrettyPrint) Status(st app.Status) {
	pp.Title(fmt.Sprintf("Level %d", st.Level))
	tbl := pp.table()
	tbl.AddRow("Score", fmt.Sprintf("%s %s", humanize.Comma(int64(st.Score)), faint(fmt.Sprintf("(%d/%d to next level)", st.LevelProgress, quest.PointsPerLevel))))
	tbl.AddRow("Companion", fmt.Sprintf("%s, energy %d", titleCase(string(st.Companion.Mood)), st.Companion.Energy))
	tbl.AddRow("Protocols", st.Protocols)
	tbl.AddRow("Quests done", st.Completed)
	tbl.AddRow("Today", fmt.Sprintf("%d logs, activity %s", len(st.Today.Logs), pp.cell(st.TodayLevel, fmt.Sprint(st.TodayLevel))))
	_, _ = fmt.Fprintln(pp.w(), tbl)
	pp.NewLine()

	if len(st.Timers) > 0 {
		pp.Title("Timers")
		t := pp.table()
		for _, timer := range st.Timers {
			state := "paused"
			switch {
			case timer.Completed:
				state = "done"
			case timer.Running:
				state = "running"
			}
			t.AddRow(timer.Name, timeutil.Clock(timer.Remaining), Bar(timer.Duration-timer.Remaining, timer.Duration, 10), faint(state))
		}
		_, _ = fmt.Fprintln(pp.w(), t)
		pp.NewLine()
	}
	pp.Quests(st.Active)
}

// Export prints a journal day export as written to disk.
func (pp *PrettyPrint) Export(text, path string) {
	_, _ = fmt.Fprintln(pp.w(), text)
	if path != "" {
		pp.NewLine()
		_, _ = color.New(color.Faint).Fprintf(pp.w(), "written to %s\n", path)
	}
}
