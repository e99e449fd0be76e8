package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversByTopic(t *testing.T) {
	bus := NewBus()

	var quests, all []Event
	unsubscribe := bus.Subscribe(QuestCompleted, func(ev Event) { quests = append(quests, ev) })
	bus.SubscribeAll(func(ev Event) { all = append(all, ev) })

	bus.Publish(Event{Topic: QuestCompleted, Subject: "quest-timer-1", Value: 30})
	bus.Publish(Event{Topic: JournalLogged, Subject: "2026-01-05"})

	assert.Len(t, quests, 1)
	assert.Len(t, all, 2)
	assert.Equal(t, "quest-timer-1", quests[0].Subject)

	unsubscribe()
	bus.Publish(Event{Topic: QuestCompleted, Subject: "quest-checklist-1"})
	assert.Len(t, quests, 1)
	assert.Len(t, all, 3)
}

func TestBusHandlersMayPublish(t *testing.T) {
	bus := NewBus()
	var levels []int
	bus.Subscribe(QuestCompleted, func(ev Event) {
		bus.Publish(Event{Topic: PlayerLevelUp, Value: 2})
	})
	bus.Subscribe(PlayerLevelUp, func(ev Event) { levels = append(levels, ev.Value) })

	bus.Publish(Event{Topic: QuestCompleted})
	assert.Equal(t, []int{2}, levels)
}

func TestNilBusDrops(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(Event{Topic: SettingsChanged}) })
}

func TestDescribe(t *testing.T) {
	ev := Event{Topic: TimerCompleted, Subject: "timer-1", Value: 5}
	assert.Equal(t, `topic:"timer.completed" subject:"timer-1" value:5`, ev.Describe())
}
