package settings

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/kv"
)

// StorageKey holds the persisted preference pair.
const StorageKey = "research-settings"

type ThemeMode string

const (
	Light ThemeMode = "light"
	Dark  ThemeMode = "dark"
)

type CornerStyle string

const (
	Rounded CornerStyle = "rounded"
	Sharp   CornerStyle = "sharp"
)

// Settings is the user's display preference.
type Settings struct {
	ThemeMode   ThemeMode   `json:"themeMode"`
	CornerStyle CornerStyle `json:"cornerStyle"`
}

// Defaults is used for anything missing or unreadable in storage.
func Defaults() Settings {
	return Settings{ThemeMode: Light, CornerStyle: Rounded}
}

func ParseThemeMode(s string) (ThemeMode, error) {
	switch m := ThemeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Light, Dark:
		return m, nil
	default:
		return "", fmt.Errorf("settings: unknown theme %q (expected light or dark)", s)
	}
}

func ParseCornerStyle(s string) (CornerStyle, error) {
	switch c := CornerStyle(strings.ToLower(strings.TrimSpace(s))); c {
	case Rounded, Sharp:
		return c, nil
	default:
		return "", fmt.Errorf("settings: unknown corner style %q (expected rounded or sharp)", s)
	}
}

// Store owns the settings state.
type Store struct {
	mu    sync.Mutex
	state Settings

	kv  kv.Store
	bus *events.Bus
	log *slog.Logger
}

func New(store kv.Store, bus *events.Bus, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{state: Defaults(), kv: store, bus: bus, log: log}
}

func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) SetThemeMode(mode ThemeMode) {
	s.mu.Lock()
	s.state.ThemeMode = mode
	s.saveLocked()
	s.mu.Unlock()
	s.bus.Publish(events.Event{Topic: events.SettingsChanged, Subject: "themeMode"})
}

func (s *Store) SetCornerStyle(style CornerStyle) {
	s.mu.Lock()
	s.state.CornerStyle = style
	s.saveLocked()
	s.mu.Unlock()
	s.bus.Publish(events.Event{Topic: events.SettingsChanged, Subject: "cornerStyle"})
}

// Load replaces the state with what is stored, field by field, falling back
// to defaults.
func (s *Store) Load() {
	if s.kv == nil {
		return
	}
	var stored Settings
	found, err := kv.GetJSON(s.kv, StorageKey, &stored)
	if err != nil {
		s.log.Warn("settings: load", "error", err)
	}

	state := Defaults()
	if found && err == nil {
		if m, err := ParseThemeMode(string(stored.ThemeMode)); err == nil {
			state.ThemeMode = m
		}
		if c, err := ParseCornerStyle(string(stored.CornerStyle)); err == nil {
			state.CornerStyle = c
		}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
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
	if err := kv.SetJSON(s.kv, StorageKey, s.state); err != nil {
		s.log.Warn("settings: save", "error", err)
	}
}
