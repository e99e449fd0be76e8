// Package research holds the in-memory timers and checklists used while a
// protocol runs. Nothing here is persisted.
package research

import (
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/ids"
)

// Timer counts down whole seconds. Remaining stays within [0, Duration] and
// Completed holds exactly when Remaining is zero.
type Timer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Duration  int    `json:"duration"`
	Remaining int    `json:"remaining"`
	Running   bool   `json:"isRunning"`
	Completed bool   `json:"isCompleted"`
	WidgetID  string `json:"widgetId,omitempty"`
}

// Minutes is the duration rounded to the nearest minute.
func (t Timer) Minutes() int {
	return (t.Duration + 30) / 60
}

type ChecklistItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type Checklist struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Items    []ChecklistItem `json:"items"`
	WidgetID string          `json:"widgetId,omitempty"`
}

// Done reports whether the checklist has items and all are completed.
func (c Checklist) Done() bool {
	if len(c.Items) == 0 {
		return false
	}
	for _, item := range c.Items {
		if !item.Completed {
			return false
		}
	}
	return true
}

// Store owns timers and checklists. Operations on unknown ids do nothing.
type Store struct {
	mu         sync.Mutex
	timers     []Timer
	checklists []Checklist

	bus *events.Bus
	Now func() time.Time
}

func New(bus *events.Bus) *Store {
	return &Store{bus: bus, Now: time.Now}
}

// AddTimer creates a stopped timer and returns its id. A zero duration timer
// starts out completed.
func (s *Store) AddTimer(name string, duration int, widgetID string) string {
	if duration < 0 {
		duration = 0
	}
	t := Timer{
		ID:        ids.New("timer", s.Now()),
		Name:      name,
		Duration:  duration,
		Remaining: duration,
		Completed: duration == 0,
		WidgetID:  widgetID,
	}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t.ID
}

func (s *Store) StartTimer(id string) {
	s.updateTimer(id, func(t *Timer) {
		if !t.Completed {
			t.Running = true
		}
	})
}

func (s *Store) PauseTimer(id string) {
	s.updateTimer(id, func(t *Timer) { t.Running = false })
}

func (s *Store) ResetTimer(id string) {
	s.updateTimer(id, func(t *Timer) {
		t.Remaining = t.Duration
		t.Running = false
		t.Completed = t.Duration == 0
	})
}

func (s *Store) RemoveTimer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = filter(s.timers, func(t Timer) bool { return t.ID != id })
}

func (s *Store) updateTimer(id string, fn func(*Timer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.timers {
		if s.timers[i].ID == id {
			fn(&s.timers[i])
			return
		}
	}
}

// Tick advances every running timer by one second and returns the timers
// that completed on this tick. With nothing running it changes nothing.
func (s *Store) Tick() []Timer {
	var done []Timer
	s.mu.Lock()
	for i := range s.timers {
		t := &s.timers[i]
		if !t.Running || t.Completed {
			continue
		}
		t.Remaining--
		if t.Remaining <= 0 {
			t.Remaining = 0
			t.Completed = true
			t.Running = false
			done = append(done, *t)
		}
	}
	s.mu.Unlock()

	for _, t := range done {
		s.bus.Publish(events.Event{Topic: events.TimerCompleted, Subject: t.ID, Value: t.Duration})
	}
	return done
}

func (s *Store) Timer(id string) (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if t.ID == id {
			return t, true
		}
	}
	return Timer{}, false
}

func (s *Store) Timers() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Timer(nil), s.timers...)
}

// CompletedTimers counts timers currently in the completed state.
func (s *Store) CompletedTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if t.Completed {
			n++
		}
	}
	return n
}

// Running reports whether any timer is counting down.
func (s *Store) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if t.Running {
			return true
		}
	}
	return false
}

func (s *Store) AddChecklist(title, widgetID string, items ...string) string {
	now := s.Now()
	c := Checklist{ID: ids.New("checklist", now), Title: title, Items: []ChecklistItem{}, WidgetID: widgetID}
	for _, text := range items {
		c.Items = append(c.Items, ChecklistItem{ID: ids.New("item", now), Text: text})
	}
	s.mu.Lock()
	s.checklists = append(s.checklists, c)
	s.mu.Unlock()
	return c.ID
}

func (s *Store) RemoveChecklist(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checklists = filter(s.checklists, func(c Checklist) bool { return c.ID != id })
}

// AddChecklistItem appends an item and returns its id, or "" when the
// checklist does not exist.
func (s *Store) AddChecklistItem(checklistID, text string) string {
	item := ChecklistItem{ID: ids.New("item", s.Now()), Text: text}
	added := false
	s.updateChecklist(checklistID, func(c *Checklist) {
		c.Items = append(c.Items, item)
		added = true
	})
	if !added {
		return ""
	}
	return item.ID
}

// ToggleChecklistItem flips an item, stamping or clearing its timestamp. It
// reports whether this toggle completed the whole checklist.
func (s *Store) ToggleChecklistItem(checklistID, itemID string) (completed bool) {
	now := s.Now()
	s.updateChecklist(checklistID, func(c *Checklist) {
		before := c.Done()
		for i := range c.Items {
			item := &c.Items[i]
			if item.ID != itemID {
				continue
			}
			item.Completed = !item.Completed
			if item.Completed {
				stamp := now
				item.Timestamp = &stamp
			} else {
				item.Timestamp = nil
			}
		}
		completed = !before && c.Done()
	})
	if completed {
		s.bus.Publish(events.Event{Topic: events.ChecklistCompleted, Subject: checklistID})
	}
	return completed
}

func (s *Store) RemoveChecklistItem(checklistID, itemID string) {
	s.updateChecklist(checklistID, func(c *Checklist) {
		c.Items = filter(c.Items, func(item ChecklistItem) bool { return item.ID != itemID })
	})
}

func (s *Store) updateChecklist(id string, fn func(*Checklist)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.checklists {
		if s.checklists[i].ID == id {
			fn(&s.checklists[i])
			return
		}
	}
}

func (s *Store) Checklist(id string) (Checklist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.checklists {
		if c.ID == id {
			return copyChecklist(c), true
		}
	}
	return Checklist{}, false
}

func (s *Store) Checklists() []Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Checklist, 0, len(s.checklists))
	for _, c := range s.checklists {
		out = append(out, copyChecklist(c))
	}
	return out
}

// CompletedChecklists counts non-empty checklists with every item done.
func (s *Store) CompletedChecklists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.checklists {
		if c.Done() {
			n++
		}
	}
	return n
}

func copyChecklist(c Checklist) Checklist {
	c.Items = append([]ChecklistItem(nil), c.Items...)
	return c
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
