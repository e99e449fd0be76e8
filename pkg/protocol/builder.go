package protocol

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"tableflip.dev/benchquest/pkg/quest"
)

// State is the builder screen derived from the store.
type State string

const (
	StateEmpty   State = "empty"
	StateLibrary State = "library"
	StateEditor  State = "editor"
)

// ViewMode switches the editor between building and running.
type ViewMode string

const (
	ViewBuild ViewMode = "build"
	ViewRun   ViewMode = "run"
)

// QuestProgresser receives quest progress from the builder.
type QuestProgresser interface {
	UpdateQuestProgress(id string, progress int)
}

var (
	ErrNoProtocol = errors.New("protocol: no protocol selected")
	ErrNotFound   = errors.New("protocol: not found")
	ErrNoWidget   = errors.New("protocol: widget not found")
)

// Builder drives the editor screens on top of a Store.
type Builder struct {
	store  *Store
	quests QuestProgresser

	mu   sync.Mutex
	mode ViewMode
}

func NewBuilder(store *Store, quests QuestProgresser) *Builder {
	return &Builder{store: store, quests: quests, mode: ViewBuild}
}

func (b *Builder) State() State {
	if len(b.store.Protocols()) == 0 {
		return StateEmpty
	}
	if _, ok := b.store.Current(); !ok || !b.store.IsBuilding() {
		return StateLibrary
	}
	return StateEditor
}

func (b *Builder) Mode() ViewMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

func (b *Builder) SetMode(m ViewMode) {
	b.mu.Lock()
	b.mode = m
	b.mu.Unlock()
}

// Create makes a new protocol and opens it in the editor. A blank name is a
// no-op and returns false.
func (b *Builder) Create(name, description string) (Protocol, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Protocol{}, false
	}
	p := b.store.CreateProtocol(name, strings.TrimSpace(description))
	b.SetMode(ViewBuild)
	return p, true
}

// Open selects a protocol and enters the editor.
func (b *Builder) Open(id string) error {
	if !b.store.LoadProtocol(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b.store.StartBuilding()
	b.SetMode(ViewBuild)
	return nil
}

// Close returns to the library.
func (b *Builder) Close() {
	b.store.StopBuilding()
}

// AddWidget adds a widget of type t with its default title and config. A nil
// position places it at DefaultPosition.
func (b *Builder) AddWidget(t WidgetType, pos *Position) (string, error) {
	if _, err := ParseWidgetType(string(t)); err != nil {
		return "", err
	}
	w := Widget{
		Type:     t,
		Title:    DefaultTitle(t),
		Config:   DefaultConfig(t),
		Position: DefaultPosition,
	}
	if pos != nil {
		w.Position = *pos
	}
	id := b.store.AddWidget(w)
	if id == "" {
		return "", ErrNoProtocol
	}
	return id, nil
}

// ConfigureWidget validates cfg against the widget's type before storing it.
func (b *Builder) ConfigureWidget(id string, cfg Config) error {
	w, err := b.widget(id)
	if err != nil {
		return err
	}
	if cfg == nil || cfg.Type() != w.Type {
		return fmt.Errorf("protocol: widget %s takes a %s config", id, w.Type)
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	b.store.UpdateWidget(id, WidgetUpdate{Config: cfg})
	return nil
}

func (b *Builder) Rename(id, title string) error {
	if _, err := b.widget(id); err != nil {
		return err
	}
	b.store.UpdateWidget(id, WidgetUpdate{Title: &title})
	return nil
}

func (b *Builder) Move(id string, pos Position) error {
	if _, err := b.widget(id); err != nil {
		return err
	}
	b.store.MoveWidget(id, pos)
	return nil
}

func (b *Builder) Remove(id string) error {
	if _, err := b.widget(id); err != nil {
		return err
	}
	b.store.RemoveWidget(id)
	return nil
}

// Save persists the current protocol, credits the protocol quest and
// switches to run mode.
func (b *Builder) Save() (Protocol, error) {
	p, ok := b.store.Current()
	if !ok {
		return Protocol{}, ErrNoProtocol
	}
	b.store.SaveProtocol(p)
	if b.quests != nil {
		b.quests.UpdateQuestProgress(quest.ProtocolQuestID, 1)
	}
	b.store.StopBuilding()
	b.SetMode(ViewRun)
	saved, _ := b.store.Protocol(p.ID)
	return saved, nil
}

func (b *Builder) Delete(id string) error {
	if !b.store.DeleteProtocol(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (b *Builder) widget(id string) (Widget, error) {
	p, ok := b.store.Current()
	if !ok {
		return Widget{}, ErrNoProtocol
	}
	w, ok := p.Widget(id)
	if !ok {
		return Widget{}, fmt.Errorf("%w: %s", ErrNoWidget, id)
	}
	return w, nil
}
