package quest

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Well known quest ids progressed by research activity.
const (
	ProtocolQuestID  = "quest-protocol-1"
	TimerQuestID     = "quest-timer-1"
	ChecklistQuestID = "quest-checklist-1"
	DailyPrefix      = "daily-"
)

type Type string

const (
	ProtocolComplete  Type = "protocol_complete"
	TimerComplete     Type = "timer_complete"
	ChecklistComplete Type = "checklist_complete"
	DailyLogin        Type = "daily_login"
)

// Quest is a goal with a point reward. Progress never exceeds Target and a
// completed quest is frozen at Target.
type Quest struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Type        Type   `json:"type" yaml:"type"`
	Target      int    `json:"target" yaml:"target"`
	Progress    int    `json:"progress" yaml:"progress"`
	Reward      int    `json:"reward" yaml:"reward"`
	Completed   bool   `json:"completed" yaml:"completed"`
	Unlocked    bool   `json:"unlocked" yaml:"unlocked"`
}

// Daily reports whether q is the rotating daily quest.
func (q Quest) Daily() bool {
	return strings.HasPrefix(q.ID, DailyPrefix)
}

type Mood string

const (
	Happy   Mood = "happy"
	Excited Mood = "excited"
	Working Mood = "working"
	Sleepy  Mood = "sleepy"
	Proud   Mood = "proud"
)

var moods = []Mood{Happy, Excited, Working, Sleepy, Proud}

// Moods lists every companion mood.
func Moods() []Mood {
	return append([]Mood(nil), moods...)
}

func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range moods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("quest: unknown mood %q", s)
}

// MaxEnergy caps companion energy.
const MaxEnergy = 100

// Companion is the cosmetic sidekick reacting to progress.
type Companion struct {
	Mood              Mood      `json:"mood"`
	Energy            int       `json:"energy"`
	LastInteraction   time.Time `json:"lastInteraction"`
	TotalInteractions int       `json:"totalInteractions"`
}

// Score is the persisted player score and level.
type Score struct {
	Score int `json:"score"`
	Level int `json:"level"`
}

// PointsPerLevel is the score needed for each level.
const PointsPerLevel = 100

// LevelForScore is floor(score/100)+1.
func LevelForScore(score int) int {
	if score < 0 {
		return 1
	}
	return score/PointsPerLevel + 1
}

//go:embed starter.yaml
var starterYAML []byte

// Starter returns the quests every new player begins with.
func Starter() []Quest {
	var quests []Quest
	if err := yaml.Unmarshal(starterYAML, &quests); err != nil {
		panic(fmt.Sprintf("quest: embedded starter quests: %v", err))
	}
	return quests
}
