package protocol

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/ids"
	"tableflip.dev/benchquest/pkg/kv"
)

// StorageKey holds the protocol collection.
const StorageKey = "research-protocols"

// DefaultQuestReward is granted per protocol created.
const DefaultQuestReward = 10

// Protocol is a named lab procedure made of widgets. Widget ids are unique
// within a protocol.
type Protocol struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Widgets      []Widget  `json:"widgets"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
	QuestReward  int       `json:"questReward,omitempty"`
}

// Widget returns the widget with id.
func (p Protocol) Widget(id string) (Widget, bool) {
	for _, w := range p.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

func (p Protocol) clone() Protocol {
	widgets := make([]Widget, len(p.Widgets))
	copy(widgets, p.Widgets)
	p.Widgets = widgets
	return p
}

// Store owns the protocol collection, the current selection and the
// building flag. Every mutation of a protocol funnels through SaveProtocol.
type Store struct {
	mu        sync.Mutex
	protocols []Protocol
	currentID string
	building  bool
	// unreadable keeps stored protocols that failed to decode so saves
	// write them back untouched.
	unreadable []json.RawMessage

	kv  kv.Store
	bus *events.Bus
	log *slog.Logger
	Now func() time.Time
}

func New(store kv.Store, bus *events.Bus, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{kv: store, bus: bus, log: log, Now: time.Now}
}

// CreateProtocol appends a new protocol, selects it and enters building
// mode. Callers reject blank names.
func (s *Store) CreateProtocol(name, description string) Protocol {
	now := s.Now()
	p := Protocol{
		ID:           ids.New("protocol", now),
		Name:         name,
		Description:  description,
		Widgets:      []Widget{},
		Created:      now,
		LastModified: now,
		QuestReward:  DefaultQuestReward,
	}

	s.mu.Lock()
	s.protocols = append(s.protocols, p)
	s.currentID = p.ID
	s.building = true
	s.saveLocked()
	s.mu.Unlock()

	s.bus.Publish(events.Event{Topic: events.ProtocolChanged, Subject: p.ID})
	return p.clone()
}

// LoadProtocol selects the protocol with id. Unknown ids leave the selection
// unchanged.
func (s *Store) LoadProtocol(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return false
	}
	s.currentID = id
	return true
}

// SaveProtocol replaces the stored protocol with the same id, stamping
// LastModified. It reports whether a protocol was replaced.
func (s *Store) SaveProtocol(p Protocol) bool {
	s.mu.Lock()
	ok := s.saveProtocolLocked(p)
	s.mu.Unlock()
	if ok {
		s.bus.Publish(events.Event{Topic: events.ProtocolChanged, Subject: p.ID})
	}
	return ok
}

func (s *Store) saveProtocolLocked(p Protocol) bool {
	i := s.indexLocked(p.ID)
	if i < 0 {
		return false
	}
	p = p.clone()
	if p.Widgets == nil {
		p.Widgets = []Widget{}
	}
	p.LastModified = s.Now()
	s.protocols[i] = p
	s.saveLocked()
	return true
}

// DeleteProtocol removes the protocol and clears the selection if it was
// the current one.
func (s *Store) DeleteProtocol(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.protocols = append(s.protocols[:i], s.protocols[i+1:]...)
	}
	if s.currentID == id {
		s.currentID = ""
	}
	s.saveLocked()
	s.mu.Unlock()

	if i >= 0 {
		s.bus.Publish(events.Event{Topic: events.ProtocolDeleted, Subject: id})
	}
	return i >= 0
}

// AddWidget appends w to the current protocol with a fresh id and returns
// that id, or "" when nothing is selected. A nil config gets the defaults.
func (s *Store) AddWidget(w Widget) string {
	w.ID = ids.New("widget", s.Now())
	if w.Config == nil {
		w.Config = DefaultConfig(w.Type)
	}
	added := s.mutateCurrent(func(p *Protocol) bool {
		p.Widgets = append(p.Widgets, w)
		return true
	})
	if !added {
		return ""
	}
	return w.ID
}

// UpdateWidget merges u into the matching widget of the current protocol.
func (s *Store) UpdateWidget(id string, u WidgetUpdate) bool {
	return s.mutateCurrent(func(p *Protocol) bool {
		for i := range p.Widgets {
			if p.Widgets[i].ID == id {
				u.apply(&p.Widgets[i])
				return true
			}
		}
		return false
	})
}

// RemoveWidget drops the widget from the current protocol, keeping the
// order of the rest.
func (s *Store) RemoveWidget(id string) bool {
	return s.mutateCurrent(func(p *Protocol) bool {
		kept := make([]Widget, 0, len(p.Widgets))
		for _, w := range p.Widgets {
			if w.ID != id {
				kept = append(kept, w)
			}
		}
		removed := len(kept) != len(p.Widgets)
		p.Widgets = kept
		return removed
	})
}

// MoveWidget repositions a widget on the canvas.
func (s *Store) MoveWidget(id string, pos Position) bool {
	return s.UpdateWidget(id, WidgetUpdate{Position: &pos})
}

func (s *Store) mutateCurrent(fn func(*Protocol) bool) bool {
	s.mu.Lock()
	i := s.indexLocked(s.currentID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	p := s.protocols[i].clone()
	if !fn(&p) {
		s.mu.Unlock()
		return false
	}
	s.saveProtocolLocked(p)
	s.mu.Unlock()

	s.bus.Publish(events.Event{Topic: events.ProtocolChanged, Subject: p.ID})
	return true
}

func (s *Store) StartBuilding() {
	s.mu.Lock()
	s.building = true
	s.mu.Unlock()
}

func (s *Store) StopBuilding() {
	s.mu.Lock()
	s.building = false
	s.mu.Unlock()
}

func (s *Store) IsBuilding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.building
}

// Current returns the selected protocol.
func (s *Store) Current() (Protocol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(s.currentID)
	if i < 0 {
		return Protocol{}, false
	}
	return s.protocols[i].clone(), true
}

func (s *Store) Protocol(id string) (Protocol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Protocol{}, false
	}
	return s.protocols[i].clone(), true
}

// Protocols returns the collection in creation order.
func (s *Store) Protocols() []Protocol {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Protocol, 0, len(s.protocols))
	for _, p := range s.protocols {
		out = append(out, p.clone())
	}
	return out
}

// LoadFromStorage replaces the collection with the stored one. Protocols
// that fail to decode are hidden but kept in storage; a missing or
// unreadable key leaves an empty collection.
func (s *Store) LoadFromStorage() {
	if s.kv == nil {
		return
	}
	var raws []json.RawMessage
	if _, err := kv.GetJSON(s.kv, StorageKey, &raws); err != nil {
		s.log.Warn("protocol: load", "error", err)
		raws = nil
	}

	protocols := make([]Protocol, 0, len(raws))
	var unreadable []json.RawMessage
	for _, raw := range raws {
		var p Protocol
		if err := json.Unmarshal(raw, &p); err != nil {
			s.log.Warn("protocol: skip stored protocol", "error", err)
			unreadable = append(unreadable, raw)
			continue
		}
		if p.Widgets == nil {
			p.Widgets = []Widget{}
		}
		protocols = append(protocols, p)
	}

	s.mu.Lock()
	s.protocols = protocols
	s.unreadable = unreadable
	if s.indexLocked(s.currentID) < 0 {
		s.currentID = ""
	}
	s.mu.Unlock()
}

// SaveToStorage writes the whole collection.
func (s *Store) SaveToStorage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Store) saveLocked() {
	if s.kv == nil {
		return
	}
	stored := make([]any, 0, len(s.protocols)+len(s.unreadable))
	for _, p := range s.protocols {
		stored = append(stored, p)
	}
	for _, raw := range s.unreadable {
		stored = append(stored, raw)
	}
	if err := kv.SetJSON(s.kv, StorageKey, stored); err != nil {
		s.log.Warn("protocol: save", "error", err)
	}
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.protocols {
		if p.ID == id {
			return i
		}
	}
	return -1
}
