package app

import (
	"time"

	"tableflip.dev/benchquest/pkg/heatmap"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/quest"
	"tableflip.dev/benchquest/pkg/research"
)

// Status is a snapshot of the player and today's work.
type Status struct {
	Score         int              `json:"score"`
	Level         int              `json:"level"`
	LevelProgress int              `json:"levelProgress"`
	Companion     quest.Companion  `json:"companion"`
	Active        []quest.Quest    `json:"activeQuests"`
	Completed     int              `json:"completedQuests"`
	Protocols     int              `json:"protocols"`
	Timers        []research.Timer `json:"timers,omitempty"`
	Today         journal.Entry    `json:"today"`
	TodayLevel    int              `json:"todayLevel"`
}

// Status collects the dashboard numbers at now.
func (s *Session) Status(now time.Time) Status {
	today, ok := s.Journal.Entry(journal.DateKey(now))
	if !ok {
		today = journal.Entry{Date: journal.DateKey(now)}
	}
	return Status{
		Score:         s.Quests.Score(),
		Level:         s.Quests.Level(),
		LevelProgress: s.Quests.LevelProgress(),
		Companion:     s.Quests.Companion(),
		Active:        s.Quests.Active(),
		Completed:     len(s.Quests.Completed()),
		Protocols:     len(s.Protocols.Protocols()),
		Timers:        s.Research.Timers(),
		Today:         today,
		TodayLevel:    heatmap.Level(today),
	}
}

// Heatmap returns the activity calendar for one month.
func (s *Session) Heatmap(year int, month time.Month) heatmap.Calendar {
	return heatmap.Month(s.Journal.Entries(), year, month)
}

// HeatmapYear returns all twelve months of year.
func (s *Session) HeatmapYear(year int) []heatmap.Calendar {
	return heatmap.Year(s.Journal.Entries(), year)
}
