// Package heatmap derives per-day activity levels from journal entries.
package heatmap

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tableflip.dev/benchquest/pkg/journal"
)

// MaxLevel is the most intense bucket.
const MaxLevel = 4

var timerMinutes = regexp.MustCompile(`Timer completed:.*\((\d+) minutes\)`)

// Activity scores a day: one point per log line, one per hundred characters
// of content, and one per quarter hour of completed timers.
func Activity(e journal.Entry) float64 {
	content := utf8.RuneCountInString(strings.Join(e.Logs, ""))
	minutes := 0
	for _, line := range e.Logs {
		if m := timerMinutes.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				minutes += n
			}
		}
	}
	return float64(len(e.Logs)) + float64(content)/100 + float64(minutes)/15
}

// Level buckets an entry into 0..MaxLevel. Days without logs are 0.
func Level(e journal.Entry) int {
	if len(e.Logs) == 0 {
		return 0
	}
	return LevelFor(Activity(e))
}

// LevelFor buckets a positive activity score.
func LevelFor(activity float64) int {
	switch {
	case activity <= 2:
		return 1
	case activity <= 5:
		return 2
	case activity <= 10:
		return 3
	default:
		return MaxLevel
	}
}

// Day is one cell of the calendar grid.
type Day struct {
	Date     time.Time
	Key      string
	Level    int
	Activity float64
	LogCount int
	HasEntry bool
	// Padding cells belong to the previous month and only align the grid.
	Padding bool
}

// Calendar is a month laid out in Sunday-first weeks.
type Calendar struct {
	Year  int
	Month time.Month
	Weeks [][]Day
	// Sessions counts days of the month that have a journal entry.
	Sessions int
}

// Days returns the non-padding days in order.
func (c Calendar) Days() []Day {
	var days []Day
	for _, week := range c.Weeks {
		for _, d := range week {
			if !d.Padding {
				days = append(days, d)
			}
		}
	}
	return days
}

// Month builds the calendar for month of year.
func Month(entries map[string]journal.Entry, year int, month time.Month) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	cal := Calendar{Year: year, Month: month}

	var cells []Day
	for i := int(first.Weekday()); i > 0; i-- {
		date := first.AddDate(0, 0, -i)
		cells = append(cells, Day{Date: date, Key: journal.DateKey(date), Padding: true})
	}

	for i := 0; i < DaysIn(year, month); i++ {
		date := first.AddDate(0, 0, i)
		key := journal.DateKey(date)
		day := Day{Date: date, Key: key}
		if e, ok := entries[key]; ok {
			day.HasEntry = true
			day.LogCount = len(e.Logs)
			day.Level = Level(e)
			if day.LogCount > 0 {
				day.Activity = Activity(e)
			}
			cal.Sessions++
		}
		cells = append(cells, day)
	}

	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		cal.Weeks = append(cal.Weeks, cells[i:end])
	}
	return cal
}

// Year builds all twelve months of year.
func Year(entries map[string]journal.Entry, year int) []Calendar {
	months := make([]Calendar, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, Month(entries, year, m))
	}
	return months
}

// DaysIn reports the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
