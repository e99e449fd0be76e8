package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/heatmap"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/quest"
	"tableflip.dev/benchquest/pkg/settings"
)

var now = time.Date(2026, 4, 14, 12, 0, 0, 0, time.Local)

func newPrinter(t *testing.T) (*PrettyPrint, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	return &PrettyPrint{Out: &buf, Now: func() time.Time { return now }}, &buf
}

func TestProtocols(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.Protocols([]protocol.Protocol{{
		ID:           "protocol-1",
		Name:         "Miniprep",
		Widgets:      []protocol.Widget{{Type: protocol.Timer}},
		LastModified: now.Add(-2 * time.Hour),
	}})
	out := buf.String()
	assert.Contains(t, out, "Protocols - 1 protocol")
	assert.Contains(t, out, "Miniprep")
	assert.Contains(t, out, "2 hours ago")
	assert.NotContains(t, out, "protocol-1")
}

func TestProtocolsEmpty(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.Protocols(nil)
	assert.Contains(t, buf.String(), "Protocols - 0 protocols")
	assert.Contains(t, buf.String(), "none")
}

func TestProtocolDetail(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.ShowID = true
	pp.Protocol(protocol.Protocol{
		Name:        "PCR",
		Description: "amplify the insert",
		Widgets: []protocol.Widget{
			{ID: "widget-1", Type: protocol.PCR, Title: "Cycle", Config: protocol.DefaultConfig(protocol.PCR)},
		},
		Created:      now.Add(-48 * time.Hour),
		LastModified: now,
	})
	out := buf.String()
	assert.Contains(t, out, "amplify the insert")
	assert.Contains(t, out, "widget-1")
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "30 cycles")
}

func TestQuests(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.Quests([]quest.Quest{
		{ID: "quest-timer-1", Title: "Time Keeper", Type: quest.TimerComplete, Target: 5, Progress: 2, Reward: 30},
	})
	out := buf.String()
	assert.Contains(t, out, "[####------]")
	assert.Contains(t, out, "2/5")
	assert.Contains(t, out, "+30")
	assert.Contains(t, out, "Timer Complete")
}

func TestCompanion(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.Companion(quest.Companion{Mood: quest.Proud, Energy: 80, TotalInteractions: 1200, LastInteraction: now.Add(-time.Minute)})
	out := buf.String()
	assert.Contains(t, out, "Proud")
	assert.Contains(t, out, "80/100")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "1 minute ago")
}

func TestJournal(t *testing.T) {
	pp, buf := newPrinter(t)
	pp.Journal(journal.Entry{Date: "2026-04-14", Logs: []string{"Protocol Run: A\nSteps:\n  1. timer"}})
	assert.True(t, strings.HasPrefix(buf.String(), "2026-04-14 - 1 log\n"))
	assert.Contains(t, buf.String(), "• Protocol Run: A")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[#####-----]", Bar(1, 2, 10))
	assert.Equal(t, "[##########]", Bar(9, 3, 10))
	assert.Equal(t, "", Bar(1, 0, 10))
}

func TestHeatmapPlain(t *testing.T) {
	pp, buf := newPrinter(t)
	entries := map[string]journal.Entry{
		"2026-04-01": {Date: "2026-04-01", Logs: []string{"", ""}},
	}
	pp.Heatmap(heatmap.Month(entries, 2026, time.April))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "April", strings.TrimSpace(lines[0]))
	assert.Equal(t, "          1. 2  3  4", lines[1])
	assert.Contains(t, buf.String(), "1 sessions")
}

func TestLevelColors(t *testing.T) {
	light := LevelColors(settings.Light)
	require.Len(t, light, heatmap.MaxLevel+1)
	assert.Equal(t, "#ebedf0", light[0])
	assert.Equal(t, "#216e39", light[heatmap.MaxLevel])

	dark := LevelColors(settings.Dark)
	assert.NotEqual(t, light[2], dark[2])
	assert.Equal(t, light, LevelColors("neon"))
}
