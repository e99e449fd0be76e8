package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/kv"
)

func newStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s := New(mem, events.NewBus(), nil)
	clock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, mem
}

func TestCreateProtocolSelectsAndBuilds(t *testing.T) {
	s, _ := newStore(t)
	p := s.CreateProtocol("Western Blot", "transfer day")

	assert.Regexp(t, `^protocol-\d+-[0-9a-f]{9}$`, p.ID)
	assert.Equal(t, DefaultQuestReward, p.QuestReward)
	assert.Empty(t, p.Widgets)
	assert.True(t, s.IsBuilding())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, p.ID, current.ID)
}

func TestAddThenRemoveWidgetRestoresList(t *testing.T) {
	s, _ := newStore(t)
	s.CreateProtocol("PCR", "")
	first := s.AddWidget(Widget{Type: Note, Title: "Prep"})
	require.NotEmpty(t, first)

	before, _ := s.Current()
	id := s.AddWidget(Widget{Type: Timer})
	require.NotEmpty(t, id)
	assert.True(t, s.RemoveWidget(id))

	after, _ := s.Current()
	assert.Equal(t, before.Widgets, after.Widgets)
}

func TestAddWidgetWithoutCurrent(t *testing.T) {
	s, _ := newStore(t)
	assert.Equal(t, "", s.AddWidget(Widget{Type: Timer}))
	assert.False(t, s.UpdateWidget("widget-1", WidgetUpdate{}))
}

func TestAddWidgetFillsDefaultConfig(t *testing.T) {
	s, _ := newStore(t)
	s.CreateProtocol("PCR", "")
	id := s.AddWidget(Widget{Type: PCR})

	p, _ := s.Current()
	w, ok := p.Widget(id)
	require.True(t, ok)
	assert.Equal(t, PCRConfig{Cycles: 30, Denaturation: 95, Annealing: 55, Extension: 72}, w.Config)
}

func TestDeleteProtocolClearsCurrentOnlyWhenSelected(t *testing.T) {
	s, _ := newStore(t)
	a := s.CreateProtocol("A", "")
	b := s.CreateProtocol("B", "")

	assert.True(t, s.DeleteProtocol(a.ID))
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b.ID, current.ID)

	assert.True(t, s.DeleteProtocol(b.ID))
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Protocols())
}

func TestSaveProtocolStampsAndIgnoresUnknown(t *testing.T) {
	s, _ := newStore(t)
	p := s.CreateProtocol("A", "")

	p.Description = "changed"
	assert.True(t, s.SaveProtocol(p))
	saved, _ := s.Protocol(p.ID)
	assert.Equal(t, "changed", saved.Description)
	assert.True(t, saved.LastModified.After(p.LastModified))

	assert.False(t, s.SaveProtocol(Protocol{ID: "protocol-missing"}))
	assert.Len(t, s.Protocols(), 1)
}

func TestUpdateWidgetMerges(t *testing.T) {
	s, _ := newStore(t)
	s.CreateProtocol("A", "")
	id := s.AddWidget(Widget{Type: Timer, Title: "Incubate", Position: DefaultPosition})

	title := "Spin"
	assert.True(t, s.UpdateWidget(id, WidgetUpdate{Title: &title}))
	assert.True(t, s.MoveWidget(id, Position{X: 120, Y: 80}))
	assert.True(t, s.UpdateWidget(id, WidgetUpdate{Config: NoteConfig{Content: "wrong type"}}))

	p, _ := s.Current()
	w, _ := p.Widget(id)
	assert.Equal(t, "Spin", w.Title)
	assert.Equal(t, Position{X: 120, Y: 80}, w.Position)
	assert.Equal(t, TimerConfig{Duration: 300}, w.Config)
}

func TestStorageRoundTrip(t *testing.T) {
	s, mem := newStore(t)
	s.CreateProtocol("A", "first")
	s.AddWidget(Widget{Type: PH, Title: "Check"})
	s.AddWidget(Widget{Type: Dilution})

	reloaded := New(mem, nil, nil)
	reloaded.LoadFromStorage()
	require.Len(t, reloaded.Protocols(), 1)
	assert.Equal(t, s.Protocols(), reloaded.Protocols())

	_, ok := reloaded.Current()
	assert.False(t, ok, "selection is not persisted")
}

func TestLoadFromStorageSkipsBadProtocols(t *testing.T) {
	mem := kv.NewMemory()
	good := Protocol{ID: "protocol-1", Name: "Good", Widgets: []Widget{{ID: "w1", Type: Note, Config: NoteConfig{Content: "hi"}}}}
	goodRaw, err := json.Marshal(good)
	require.NoError(t, err)
	stored := `[` + string(goodRaw) + `,{"id":"protocol-2","widgets":[{"id":"w","type":"hologram"}]}]`
	require.NoError(t, mem.Write(StorageKey, []byte(stored)))

	s := New(mem, nil, nil)
	s.LoadFromStorage()
	require.Len(t, s.Protocols(), 1)
	assert.Equal(t, "Good", s.Protocols()[0].Name)
}

func TestSaveKeepsUndecodableProtocols(t *testing.T) {
	mem := kv.NewMemory()
	bad := `{"id":"protocol-2","widgets":[{"id":"w","type":"hologram"}]}`
	require.NoError(t, mem.Write(StorageKey, []byte(`[`+bad+`]`)))

	s := New(mem, nil, nil)
	s.LoadFromStorage()
	require.Empty(t, s.Protocols())
	s.CreateProtocol("Fresh", "")

	var raws []json.RawMessage
	_, err := kv.GetJSON(mem, StorageKey, &raws)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.JSONEq(t, bad, string(raws[1]))

	reloaded := New(mem, nil, nil)
	reloaded.LoadFromStorage()
	require.Len(t, reloaded.Protocols(), 1)
	assert.Equal(t, "Fresh", reloaded.Protocols()[0].Name)
}

func TestLoadFromStorageMalformed(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Write(StorageKey, []byte("{")))
	s := New(mem, nil, nil)
	s.LoadFromStorage()
	assert.Empty(t, s.Protocols())
}

func TestWidgetJSONKeepsConfigType(t *testing.T) {
	w := Widget{ID: "w1", Type: Pattern, Title: "Plate", Config: PatternConfig{Steps: []string{"A1", "B1"}, RepeatCount: 3}, Position: DefaultPosition}
	raw, err := json.Marshal(w)
	require.NoError(t, err)

	var got Widget
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, w, got)
}

func TestWidgetJSONMissingConfigGetsDefaults(t *testing.T) {
	var w Widget
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w","type":"temperature","title":"Heat","config":{"target":37}}`), &w))
	assert.Equal(t, TemperatureConfig{Unit: "celsius", Target: 37}, w.Config)
}

func TestEventsPublished(t *testing.T) {
	s, _ := newStore(t)
	var topics []events.Topic
	s.bus.SubscribeAll(func(ev events.Event) { topics = append(topics, ev.Topic) })

	p := s.CreateProtocol("A", "")
	s.AddWidget(Widget{Type: Note})
	s.DeleteProtocol(p.ID)
	assert.Equal(t, []events.Topic{events.ProtocolChanged, events.ProtocolChanged, events.ProtocolDeleted}, topics)
}
