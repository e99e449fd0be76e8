package events

import (
	"fmt"
	"sync"
)

// Topic names a kind of store change.
type Topic string

const (
	ProtocolChanged    Topic = "protocol.changed"
	ProtocolDeleted    Topic = "protocol.deleted"
	ProtocolRun        Topic = "protocol.run"
	TimerCompleted     Topic = "timer.completed"
	ChecklistCompleted Topic = "checklist.completed"
	QuestProgress      Topic = "quest.progress"
	QuestCompleted     Topic = "quest.completed"
	PlayerLevelUp      Topic = "player.levelup"
	CompanionChanged   Topic = "companion.changed"
	JournalLogged      Topic = "journal.logged"
	SettingsChanged    Topic = "settings.changed"
)

// Event announces a committed change. Subject is the id or key of the thing
// that changed; Value carries a topic specific number (progress, level,
// reward) when one applies.
type Event struct {
	Topic   Topic
	Subject string
	Value   int
}

// Describe renders the event for logs.
func (e Event) Describe() string {
	return fmt.Sprintf(`topic:%q subject:%q value:%d`, e.Topic, e.Subject, e.Value)
}

// Handler receives published events on the publisher's goroutine.
type Handler func(Event)

// Bus is a synchronous fan-out of events to subscribers. A nil *Bus is valid
// and drops everything, so stores can be used without wiring.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
	all    map[int]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Topic]map[int]Handler),
		all:  make(map[int]Handler),
	}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.all[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers ev to every matching subscriber. Handlers may publish and
// subscribe themselves; they run after the bus lock is released.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Topic])+len(b.all))
	for _, h := range b.subs[ev.Topic] {
		handlers = append(handlers, h)
	}
	for _, h := range b.all {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
