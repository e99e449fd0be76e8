package quest

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/kv"
)

const (
	QuestsKey         = "research-quests"
	CompanionKey      = "research-companion"
	ScoreKey          = "research-score"
	LastGenerationKey = "last-quest-generation"

	// GenerationLayout matches the stored daily marker, e.g. "Mon Jan 05 2026".
	GenerationLayout = "Mon Jan 02 2006"
)

// Store owns quests, the companion and the player's score.
type Store struct {
	mu        sync.Mutex
	quests    []Quest
	companion Companion
	score     int
	level     int
	// lastGeneration mirrors the daily marker when no kv store is wired.
	lastGeneration string

	kv  kv.Store
	bus *events.Bus
	log *slog.Logger
	Now func() time.Time
}

func New(store kv.Store, bus *events.Bus, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{kv: store, bus: bus, log: log, Now: time.Now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.quests = Starter()
	s.companion = Companion{Mood: Happy, Energy: MaxEnergy, LastInteraction: s.Now()}
	s.score = 0
	s.level = 1
}

// UpdateQuestProgress sets progress, capped at the target, on an open quest
// and completes it once the target is met.
func (s *Store) UpdateQuestProgress(id string, progress int) {
	s.mu.Lock()
	out := s.progressLocked(id, func(int) int { return progress })
	s.mu.Unlock()
	s.publish(out)
}

// IncrementQuestProgress adds delta to the current progress of an open quest.
func (s *Store) IncrementQuestProgress(id string, delta int) {
	s.mu.Lock()
	out := s.progressLocked(id, func(current int) int { return current + delta })
	s.mu.Unlock()
	s.publish(out)
}

func (s *Store) progressLocked(id string, next func(current int) int) []events.Event {
	q := s.findLocked(id)
	if q == nil || q.Completed {
		return nil
	}
	q.Progress = clamp(next(q.Progress), 0, q.Target)
	out := []events.Event{{Topic: events.QuestProgress, Subject: id, Value: q.Progress}}
	if q.Progress >= q.Target {
		out = append(out, s.completeLocked(id)...)
	}
	s.saveLocked()
	return out
}

// CompleteQuest completes an open quest and credits its reward. Completing
// a quest twice credits it once. It reports whether a transition happened.
func (s *Store) CompleteQuest(id string) bool {
	s.mu.Lock()
	out := s.completeLocked(id)
	if len(out) > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()
	s.publish(out)
	return len(out) > 0
}

func (s *Store) completeLocked(id string) []events.Event {
	q := s.findLocked(id)
	if q == nil || q.Completed {
		return nil
	}
	q.Completed = true
	q.Progress = q.Target
	s.score += q.Reward
	s.companion.Mood = Excited

	out := []events.Event{{Topic: events.QuestCompleted, Subject: id, Value: q.Reward}}
	out = append(out, s.checkLevelUpLocked()...)
	out = append(out, events.Event{Topic: events.CompanionChanged, Subject: string(s.companion.Mood)})
	return out
}

// checkLevelUpLocked raises the level to match the score; levels never drop.
func (s *Store) checkLevelUpLocked() []events.Event {
	level := LevelForScore(s.score)
	if level <= s.level {
		return nil
	}
	s.level = level
	s.companion.Mood = Proud
	return []events.Event{{Topic: events.PlayerLevelUp, Value: level}}
}

// AddScore credits points outside of quests.
func (s *Store) AddScore(points int) {
	s.mu.Lock()
	s.score += points
	out := s.checkLevelUpLocked()
	if len(out) > 0 {
		out = append(out, events.Event{Topic: events.CompanionChanged, Subject: string(s.companion.Mood)})
	}
	s.saveLocked()
	s.mu.Unlock()
	s.publish(out)
}

// GenerateDailyQuests swaps in a fresh daily quest once per calendar day and
// reports whether it did.
func (s *Store) GenerateDailyQuests() bool {
	now := s.Now()
	today := now.Format(GenerationLayout)

	s.mu.Lock()
	last := s.lastGeneration
	s.mu.Unlock()
	if s.kv != nil {
		if _, err := kv.GetJSON(s.kv, LastGenerationKey, &last); err != nil {
			s.log.Warn("quest: read daily marker", "error", err)
		}
	}
	if last == today {
		return false
	}

	daily := Quest{
		ID:          fmt.Sprintf("%s%d", DailyPrefix, now.UnixMilli()),
		Title:       "Daily Research Goal",
		Description: "Complete any 2 research tasks today",
		Type:        DailyLogin,
		Target:      2,
		Reward:      20,
		Unlocked:    true,
	}

	s.mu.Lock()
	kept := make([]Quest, 0, len(s.quests)+1)
	for _, q := range s.quests {
		if !q.Daily() {
			kept = append(kept, q)
		}
	}
	s.quests = append(kept, daily)
	s.lastGeneration = today
	if s.kv != nil {
		if err := kv.SetJSON(s.kv, LastGenerationKey, today); err != nil {
			s.log.Warn("quest: write daily marker", "error", err)
		}
	}
	s.saveLocked()
	s.mu.Unlock()

	s.log.Debug("quest: generated daily quest", "id", daily.ID)
	return true
}

// DailyQuest returns the current daily quest, if any.
func (s *Store) DailyQuest() (Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quests {
		if q.Daily() {
			return q, true
		}
	}
	return Quest{}, false
}

func (s *Store) UpdateCompanionMood(mood Mood) {
	s.mu.Lock()
	s.companion.Mood = mood
	s.saveLocked()
	s.mu.Unlock()
	s.publish([]events.Event{{Topic: events.CompanionChanged, Subject: string(mood)}})
}

// InteractWithCompanion records an interaction and restores a little energy.
func (s *Store) InteractWithCompanion() {
	s.mu.Lock()
	s.companion.LastInteraction = s.Now()
	s.companion.TotalInteractions++
	s.companion.Energy = clamp(s.companion.Energy+5, 0, MaxEnergy)
	mood := s.companion.Mood
	s.saveLocked()
	s.mu.Unlock()
	s.publish([]events.Event{{Topic: events.CompanionChanged, Subject: string(mood)}})
}

func (s *Store) Quests() []Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Quest(nil), s.quests...)
}

func (s *Store) Quest(id string) (Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q := s.findLocked(id); q != nil {
		return *q, true
	}
	return Quest{}, false
}

// Active lists unlocked quests that are still open.
func (s *Store) Active() []Quest {
	var out []Quest
	for _, q := range s.Quests() {
		if q.Unlocked && !q.Completed {
			out = append(out, q)
		}
	}
	return out
}

func (s *Store) Completed() []Quest {
	var out []Quest
	for _, q := range s.Quests() {
		if q.Completed {
			out = append(out, q)
		}
	}
	return out
}

func (s *Store) Companion() Companion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companion
}

func (s *Store) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Store) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// LevelProgress returns the points earned inside the current level.
func (s *Store) LevelProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.score < 0 {
		return 0
	}
	return s.score % PointsPerLevel
}

// Load reads quests, companion and score. Missing or unreadable keys keep
// their defaults.
func (s *Store) Load() {
	if s.kv == nil {
		return
	}

	var quests []Quest
	questsFound, err := kv.GetJSON(s.kv, QuestsKey, &quests)
	if err != nil {
		s.log.Warn("quest: load quests", "error", err)
		questsFound = false
	}

	var companion Companion
	companionFound, err := kv.GetJSON(s.kv, CompanionKey, &companion)
	if err != nil {
		s.log.Warn("quest: load companion", "error", err)
		companionFound = false
	}

	var score Score
	scoreFound, err := kv.GetJSON(s.kv, ScoreKey, &score)
	if err != nil {
		s.log.Warn("quest: load score", "error", err)
		scoreFound = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if questsFound && quests != nil {
		s.quests = quests
	}
	if companionFound {
		if _, err := ParseMood(string(companion.Mood)); err != nil {
			companion.Mood = Happy
		}
		companion.Energy = clamp(companion.Energy, 0, MaxEnergy)
		s.companion = companion
	}
	if scoreFound {
		s.score = score.Score
		s.level = score.Level
		if s.level < 1 {
			s.level = 1
		}
	}
}

func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Store) saveLocked() {
	if s.kv == nil {
		return
	}
	if err := kv.SetJSON(s.kv, QuestsKey, s.quests); err != nil {
		s.log.Warn("quest: save quests", "error", err)
	}
	if err := kv.SetJSON(s.kv, CompanionKey, s.companion); err != nil {
		s.log.Warn("quest: save companion", "error", err)
	}
	if err := kv.SetJSON(s.kv, ScoreKey, Score{Score: s.score, Level: s.level}); err != nil {
		s.log.Warn("quest: save score", "error", err)
	}
}

func (s *Store) findLocked(id string) *Quest {
	for i := range s.quests {
		if s.quests[i].ID == id {
			return &s.quests[i]
		}
	}
	return nil
}

func (s *Store) publish(out []events.Event) {
	for _, ev := range out {
		s.bus.Publish(ev)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
