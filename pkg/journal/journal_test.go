package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/kv"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestExportDayRoundTrip(t *testing.T) {
	s := New(kv.NewMemory(), nil, nil)
	s.Now = fixedClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local))

	s.AddLog("a")
	s.AddLog("b")

	assert.Equal(t, "## 2026-03-14\na\nb", s.ExportDay("2026-03-14"))
	assert.Equal(t, "", s.ExportDay("2026-03-15"))
}

func TestAddLogUsesCallTimeDay(t *testing.T) {
	s := New(kv.NewMemory(), nil, nil)
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	s.Now = func() time.Time { return now }

	s.AddLog("late")
	now = now.Add(2 * time.Minute)
	s.AddLog("early")

	assert.Equal(t, []string{"2026-03-15", "2026-03-14"}, s.Dates())
	e, ok := s.Entry("2026-03-15")
	require.True(t, ok)
	assert.Equal(t, []string{"early"}, e.Logs)
}

func TestPersistedAcrossLoads(t *testing.T) {
	mem := kv.NewMemory()
	bus := events.NewBus()
	var logged []int
	bus.Subscribe(events.JournalLogged, func(ev events.Event) { logged = append(logged, ev.Value) })

	s := New(mem, bus, nil)
	s.Now = fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	s.AddLog("Protocol Run: PCR")
	s.AddLog("Timer completed: \"Spin\" (5 minutes)")
	assert.Equal(t, []int{1, 2}, logged)

	reloaded := New(mem, nil, nil)
	reloaded.Load()
	entries := reloaded.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-03-14", entries["2026-03-14"].Date)
	assert.Len(t, entries["2026-03-14"].Logs, 2)
}

func TestEntriesAreCopies(t *testing.T) {
	s := New(nil, nil, nil)
	s.Now = fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	s.AddLog("one")

	entries := s.Entries()
	e := entries["2026-03-14"]
	e.Logs[0] = "changed"
	assert.Equal(t, "## 2026-03-14\none", s.ExportDay("2026-03-14"))
}

func TestWriteExport(t *testing.T) {
	s := New(nil, nil, nil)
	s.Now = fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	s.AddLog("a")

	dir := t.TempDir()
	path, err := s.WriteExport(dir, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "journal-2026-03-14.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## 2026-03-14\na", string(data))

	_, err = s.WriteExport(dir, "2026-01-01")
	assert.Error(t, err)
}
