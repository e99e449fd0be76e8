// Package log writes to and reads from the research journal.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/printers"
)

var errNoSession = errors.New("can not log, no session")

// Log appends a line to today's journal.
type Log struct {
	Message string
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Log) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	if strings.TrimSpace(n.Message) == "" {
		return errors.New("log message is required")
	}
	n.Session.Journal.AddLog(n.Message)
	return show(n.Session, n.Session.Journal.Now(), n.Output, n.Out)
}

// Show prints one day.
type Show struct {
	On      time.Time
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Show) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	return show(n.Session, n.On, n.Output, n.Out)
}

func show(s *app.Session, on time.Time, output string, out io.Writer) error {
	date := journal.DateKey(on)
	e, ok := s.Journal.Entry(date)
	if !ok {
		e = journal.Entry{Date: date}
	}
	if output == "json" {
		return printers.JSON(out, e)
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Journal(e)
	return nil
}

// Export renders one day as text and writes journal-{date}.txt into Dir
// unless Dir is empty.
type Export struct {
	On      time.Time
	Dir     string
	Out     io.Writer
	Session *app.Session

	Path string
}

func (n *Export) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	date := journal.DateKey(n.On)
	text := n.Session.Journal.ExportDay(date)
	if text == "" {
		return fmt.Errorf("no journal entry for %s", date)
	}
	if n.Dir != "" {
		path, err := n.Session.Journal.WriteExport(n.Dir, date)
		if err != nil {
			return err
		}
		n.Path = path
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Export(text, n.Path)
	return nil
}

// Heatmap prints the activity calendar for a month or a whole year.
type Heatmap struct {
	Year     int
	Month    time.Month
	FullYear bool
	Output   string
	Out      io.Writer
	Session  *app.Session
}

func (n *Heatmap) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	pp := printers.PrettyPrint{Out: n.Out, Theme: n.Session.Settings.Get().ThemeMode}
	if n.FullYear {
		cals := n.Session.HeatmapYear(n.Year)
		if n.Output == "json" {
			return printers.JSON(n.Out, cals)
		}
		pp.HeatmapYear(cals)
		return nil
	}
	cal := n.Session.Heatmap(n.Year, n.Month)
	if n.Output == "json" {
		return printers.JSON(n.Out, cal)
	}
	pp.Heatmap(cal)
	pp.Legend()
	return nil
}
