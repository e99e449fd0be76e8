package heatmap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/journal"
)

func TestActivityEmptyLogs(t *testing.T) {
	e := journal.Entry{Logs: []string{"", ""}}
	assert.InDelta(t, 2.0, Activity(e), 1e-9)
	assert.Equal(t, 1, Level(e))
}

func TestActivityTimerMinutes(t *testing.T) {
	line := "Timer completed: X (30 minutes)"
	e := journal.Entry{Logs: []string{line}}

	want := 1 + float64(len(line))/100 + 2
	assert.InDelta(t, want, Activity(e), 1e-9)
	assert.Equal(t, 2, Level(e))
}

func TestActivityContentLength(t *testing.T) {
	e := journal.Entry{Logs: []string{strings.Repeat("x", 20)}}
	assert.InDelta(t, 1.2, Activity(e), 1e-9)

	// Minutes only count for the timer completion line shape.
	e = journal.Entry{Logs: []string{"Timer started (30 minutes)"}}
	assert.InDelta(t, 1.26, Activity(e), 1e-9)

	e = journal.Entry{Logs: []string{
		`Timer completed: "Incubate" (60 minutes)`,
		`Timer completed: "Spin" (15 minutes)`,
	}}
	content := len(e.Logs[0]) + len(e.Logs[1])
	assert.InDelta(t, 2+float64(content)/100+5, Activity(e), 1e-9)
	assert.Equal(t, 3, Level(e))
}

func TestLevelBuckets(t *testing.T) {
	assert.Equal(t, 0, Level(journal.Entry{}))
	assert.Equal(t, 1, LevelFor(2))
	assert.Equal(t, 2, LevelFor(2.01))
	assert.Equal(t, 2, LevelFor(5))
	assert.Equal(t, 3, LevelFor(10))
	assert.Equal(t, 4, LevelFor(10.5))
}

func TestMonthPaddingAndSessions(t *testing.T) {
	// April 2026 starts on a Wednesday.
	entries := map[string]journal.Entry{
		"2026-04-01": {Date: "2026-04-01", Logs: []string{"a"}},
		"2026-04-15": {Date: "2026-04-15", Logs: []string{"a", "b", "c", "d", "e", "f"}},
		"2026-05-01": {Date: "2026-05-01", Logs: []string{"other month"}},
	}

	cal := Month(entries, 2026, time.April)
	require.NotEmpty(t, cal.Weeks)

	first := cal.Weeks[0]
	require.Len(t, first, 7)
	for i := 0; i < 3; i++ {
		assert.True(t, first[i].Padding, "cell %d should pad", i)
		assert.Equal(t, 0, first[i].Level)
	}
	assert.Equal(t, "2026-03-29", first[0].Key)
	assert.Equal(t, "2026-04-01", first[3].Key)
	assert.Equal(t, 1, first[3].Level)

	days := cal.Days()
	assert.Len(t, days, 30)
	assert.Equal(t, 2, cal.Sessions)
	assert.Equal(t, 3, days[14].Level)
	assert.Equal(t, 6, days[14].LogCount)

	// 3 padding + 30 days = 33 cells, the last week is partial.
	assert.Len(t, cal.Weeks, 5)
	assert.Len(t, cal.Weeks[4], 5)
}

func TestYear(t *testing.T) {
	months := Year(nil, 2024)
	require.Len(t, months, 12)
	assert.Len(t, months[1].Days(), 29)
	assert.Equal(t, time.December, months[11].Month)
}
