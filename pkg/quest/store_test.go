package quest

import (
	"strings"
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
	s.Now = func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.Local) }
	return s, mem
}

func TestStarterQuests(t *testing.T) {
	quests := Starter()
	require.Len(t, quests, 3)
	assert.Equal(t, Quest{
		ID:          ProtocolQuestID,
		Title:       "Create Your First Protocol",
		Description: "Build and save your first research protocol",
		Type:        ProtocolComplete,
		Target:      1,
		Reward:      50,
		Unlocked:    true,
	}, quests[0])
	assert.Equal(t, 5, quests[1].Target)
	assert.Equal(t, 30, quests[1].Reward)
	assert.Equal(t, 3, quests[2].Target)
	assert.Equal(t, 25, quests[2].Reward)
}

func TestCompleteQuestIsIdempotent(t *testing.T) {
	s, _ := newStore(t)

	assert.True(t, s.CompleteQuest(TimerQuestID))
	assert.False(t, s.CompleteQuest(TimerQuestID))
	assert.Equal(t, 30, s.Score())

	q, ok := s.Quest(TimerQuestID)
	require.True(t, ok)
	assert.True(t, q.Completed)
	assert.Equal(t, q.Target, q.Progress)
	assert.Equal(t, Excited, s.Companion().Mood)
}

func TestCompleteUnknownQuest(t *testing.T) {
	s, _ := newStore(t)
	assert.False(t, s.CompleteQuest("quest-missing"))
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, Happy, s.Companion().Mood)
}

func TestProgressAutoCompletes(t *testing.T) {
	s, _ := newStore(t)

	s.UpdateQuestProgress(TimerQuestID, 3)
	q, _ := s.Quest(TimerQuestID)
	assert.Equal(t, 3, q.Progress)
	assert.False(t, q.Completed)

	s.UpdateQuestProgress(TimerQuestID, 5)
	q, _ = s.Quest(TimerQuestID)
	assert.True(t, q.Completed)
	assert.Equal(t, 30, s.Score())

	s.UpdateQuestProgress(TimerQuestID, 1)
	q, _ = s.Quest(TimerQuestID)
	assert.Equal(t, 5, q.Progress, "completed quests are frozen")
	assert.Equal(t, 30, s.Score())
}

func TestProgressIsCapped(t *testing.T) {
	s, _ := newStore(t)
	s.UpdateQuestProgress(ChecklistQuestID, 99)
	q, _ := s.Quest(ChecklistQuestID)
	assert.Equal(t, 3, q.Progress)
	assert.True(t, q.Completed)
}

func TestIncrementQuestProgress(t *testing.T) {
	s, _ := newStore(t)
	s.IncrementQuestProgress(TimerQuestID, 2)
	s.IncrementQuestProgress(TimerQuestID, 2)
	q, _ := s.Quest(TimerQuestID)
	assert.Equal(t, 4, q.Progress)
}

func TestLevelUpSetsProud(t *testing.T) {
	s, _ := newStore(t)
	var levels []int
	s.bus.Subscribe(events.PlayerLevelUp, func(ev events.Event) { levels = append(levels, ev.Value) })

	s.AddScore(60)
	assert.Equal(t, 1, s.Level())

	s.CompleteQuest(ProtocolQuestID)
	assert.Equal(t, 110, s.Score())
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, Proud, s.Companion().Mood)
	assert.Equal(t, 10, s.LevelProgress())
	assert.Equal(t, []int{2}, levels)

	s.CompleteQuest(ChecklistQuestID)
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, Excited, s.Companion().Mood)
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, 1, LevelForScore(0))
	assert.Equal(t, 1, LevelForScore(99))
	assert.Equal(t, 2, LevelForScore(100))
	assert.Equal(t, 4, LevelForScore(350))
	assert.Equal(t, 1, LevelForScore(-5))
}

func TestGenerateDailyQuestsOncePerDay(t *testing.T) {
	s, mem := newStore(t)

	assert.True(t, s.GenerateDailyQuests())
	assert.False(t, s.GenerateDailyQuests())

	daily := 0
	for _, q := range s.Quests() {
		if strings.HasPrefix(q.ID, DailyPrefix) {
			daily++
			assert.Equal(t, DailyLogin, q.Type)
			assert.Equal(t, 2, q.Target)
			assert.Equal(t, 20, q.Reward)
		}
	}
	assert.Equal(t, 1, daily)

	marker, err := mem.Read(LastGenerationKey)
	require.NoError(t, err)
	assert.Equal(t, `"Mon Jan 05 2026"`, string(marker))
}

func TestGenerateDailyQuestsReplacesYesterday(t *testing.T) {
	s, _ := newStore(t)
	s.GenerateDailyQuests()
	first, _ := s.DailyQuest()

	s.Now = func() time.Time { return time.Date(2026, 1, 6, 9, 0, 0, 0, time.Local) }
	assert.True(t, s.GenerateDailyQuests())

	second, ok := s.DailyQuest()
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, s.Quests(), 4)
}

func TestGenerateDailyQuestsWithoutStorage(t *testing.T) {
	s := New(nil, nil, nil)
	assert.True(t, s.GenerateDailyQuests())
	assert.False(t, s.GenerateDailyQuests())
}

func TestInteractWithCompanion(t *testing.T) {
	s, _ := newStore(t)
	s.InteractWithCompanion()

	c := s.Companion()
	assert.Equal(t, MaxEnergy, c.Energy)
	assert.Equal(t, 1, c.TotalInteractions)
	assert.Equal(t, s.Now(), c.LastInteraction)
	assert.Equal(t, Happy, c.Mood)

	s.mu.Lock()
	s.companion.Energy = 40
	s.mu.Unlock()
	s.InteractWithCompanion()
	assert.Equal(t, 45, s.Companion().Energy)
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, mem := newStore(t)
	s.UpdateQuestProgress(TimerQuestID, 2)
	s.CompleteQuest(ProtocolQuestID)
	s.UpdateCompanionMood(Sleepy)

	reloaded := New(mem, nil, nil)
	reloaded.Load()
	assert.Equal(t, 50, reloaded.Score())
	assert.Equal(t, 1, reloaded.Level())
	assert.Equal(t, Sleepy, reloaded.Companion().Mood)
	q, _ := reloaded.Quest(TimerQuestID)
	assert.Equal(t, 2, q.Progress)
	assert.Len(t, reloaded.Completed(), 1)
	assert.Len(t, reloaded.Active(), 2)
}

func TestLoadFallsBackOnMalformed(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Write(QuestsKey, []byte("not json")))
	require.NoError(t, mem.Write(ScoreKey, []byte(`{"score":250,"level":3}`)))

	s := New(mem, nil, nil)
	s.Load()
	assert.Len(t, s.Quests(), 3)
	assert.Equal(t, 250, s.Score())
	assert.Equal(t, 3, s.Level())
	assert.Equal(t, Happy, s.Companion().Mood)
}

func TestParseMood(t *testing.T) {
	m, err := ParseMood("Proud")
	require.NoError(t, err)
	assert.Equal(t, Proud, m)
	_, err = ParseMood("grumpy")
	assert.Error(t, err)
	assert.Len(t, Moods(), 5)
}

func TestDefaultCompanionUsesClock(t *testing.T) {
	s, _ := newStore(t)
	s.Load()
	assert.Equal(t, s.Now(), s.Companion().LastInteraction)
}
