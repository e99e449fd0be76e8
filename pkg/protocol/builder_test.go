package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/quest"
)

type progressCall struct {
	id       string
	progress int
}

type fakeQuests struct {
	calls []progressCall
}

func (f *fakeQuests) UpdateQuestProgress(id string, progress int) {
	f.calls = append(f.calls, progressCall{id, progress})
}

type fakeJournal struct {
	logs []string
}

func (f *fakeJournal) AddLog(text string) { f.logs = append(f.logs, text) }

func TestBuilderStates(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	assert.Equal(t, StateEmpty, b.State())

	p, ok := b.Create("  Miniprep  ", " plasmid ")
	require.True(t, ok)
	assert.Equal(t, "Miniprep", p.Name)
	assert.Equal(t, "plasmid", p.Description)
	assert.Equal(t, StateEditor, b.State())

	b.Close()
	assert.Equal(t, StateLibrary, b.State())

	require.NoError(t, b.Open(p.ID))
	assert.Equal(t, StateEditor, b.State())

	require.NoError(t, b.Delete(p.ID))
	assert.Equal(t, StateEmpty, b.State())
}

func TestBuilderCreateIgnoresBlankName(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	_, ok := b.Create("   ", "x")
	assert.False(t, ok)
	assert.Empty(t, s.Protocols())
}

func TestBuilderOpenUnknown(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	err := b.Open("protocol-missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBuilderWidgetLifecycle(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	b.Create("ELISA", "")

	id, err := b.AddWidget(Timer, nil)
	require.NoError(t, err)

	p, _ := s.Current()
	w, _ := p.Widget(id)
	assert.Equal(t, "Timer", w.Title)
	assert.Equal(t, DefaultPosition, w.Position)

	require.NoError(t, b.ConfigureWidget(id, TimerConfig{Duration: 900, AutoStart: true}))
	require.NoError(t, b.Rename(id, "Block"))
	require.NoError(t, b.Move(id, Position{X: 10, Y: 20}))

	p, _ = s.Current()
	w, _ = p.Widget(id)
	assert.Equal(t, "Block", w.Title)
	assert.Equal(t, TimerConfig{Duration: 900, AutoStart: true}, w.Config)
	assert.Equal(t, Position{X: 10, Y: 20}, w.Position)

	require.NoError(t, b.Remove(id))
	assert.True(t, errors.Is(b.Remove(id), ErrNoWidget))
}

func TestBuilderConfigureRejectsInvalid(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	b.Create("Buffer", "")
	id, err := b.AddWidget(PH, nil)
	require.NoError(t, err)

	assert.Error(t, b.ConfigureWidget(id, PHConfig{Target: 15, Range: PHRange{Min: 6, Max: 7}}))
	assert.Error(t, b.ConfigureWidget(id, TimerConfig{Duration: 60}))

	p, _ := s.Current()
	w, _ := p.Widget(id)
	assert.Equal(t, DefaultConfig(PH), w.Config)
}

func TestBuilderAddWidgetNeedsProtocol(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	_, err := b.AddWidget(Note, nil)
	assert.True(t, errors.Is(err, ErrNoProtocol))

	b.Create("A", "")
	_, err = b.AddWidget(WidgetType("hologram"), nil)
	assert.Error(t, err)
}

func TestBuilderSave(t *testing.T) {
	s, _ := newStore(t)
	quests := &fakeQuests{}
	b := NewBuilder(s, quests)
	p, _ := b.Create("Gel", "")

	saved, err := b.Save()
	require.NoError(t, err)
	assert.Equal(t, p.ID, saved.ID)
	assert.Equal(t, []progressCall{{quest.ProtocolQuestID, 1}}, quests.calls)
	assert.False(t, s.IsBuilding())
	assert.Equal(t, ViewRun, b.Mode())
	assert.Equal(t, StateLibrary, b.State())
}

func TestBuilderSaveWithoutCurrent(t *testing.T) {
	s, _ := newStore(t)
	quests := &fakeQuests{}
	b := NewBuilder(s, quests)
	_, err := b.Save()
	assert.True(t, errors.Is(err, ErrNoProtocol))
	assert.Empty(t, quests.calls)
}

func TestRunSession(t *testing.T) {
	s, _ := newStore(t)
	b := NewBuilder(s, nil)
	p, _ := b.Create("Transformation", "")
	_, err := b.AddWidget(Timer, nil)
	require.NoError(t, err)
	noteID, err := b.AddWidget(Note, nil)
	require.NoError(t, err)
	require.NoError(t, b.Rename(noteID, ""))

	journal := &fakeJournal{}
	run, err := s.NewRun(p.ID, journal)
	require.NoError(t, err)

	w, ok := run.Current()
	require.True(t, ok)
	assert.Equal(t, Timer, w.Type)
	assert.True(t, run.MarkDone())
	assert.True(t, run.Done(w.ID))
	assert.Equal(t, 1, run.Step())

	assert.False(t, run.Next())
	assert.True(t, run.Finished())
	_, ok = run.Current()
	assert.False(t, ok)
	assert.False(t, run.Next())

	assert.True(t, run.Save())
	assert.False(t, run.Save())
	assert.Equal(t, []string{"Protocol Run: Transformation\nSteps:\n  1. Timer\n  2. note"}, journal.logs)
}

func TestNewRunUnknown(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.NewRun("protocol-missing", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}
