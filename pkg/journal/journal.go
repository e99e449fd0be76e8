package journal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/kv"
)

const (
	// StorageKey holds the date keyed entry map.
	StorageKey = "research-journal"
	// DateLayout is the entry key format, in local time.
	DateLayout = "2006-01-02"
)

// Entry is one day of append-only log lines.
type Entry struct {
	Date string   `json:"date"`
	Logs []string `json:"logs"`
}

// Store keeps journal entries keyed by date.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry

	kv  kv.Store
	bus *events.Bus
	log *slog.Logger
	Now func() time.Time
}

func New(store kv.Store, bus *events.Bus, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		entries: make(map[string]*Entry),
		kv:      store,
		bus:     bus,
		log:     log,
		Now:     time.Now,
	}
}

// DateKey formats t as an entry key.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// AddLog appends text to today's entry, creating it on first use.
func (s *Store) AddLog(text string) {
	date := DateKey(s.Now())

	s.mu.Lock()
	e, ok := s.entries[date]
	if !ok {
		e = &Entry{Date: date}
		s.entries[date] = e
	}
	e.Logs = append(e.Logs, text)
	count := len(e.Logs)
	s.saveLocked()
	s.mu.Unlock()

	s.bus.Publish(events.Event{Topic: events.JournalLogged, Subject: date, Value: count})
}

// ExportDay renders the entry for date, or "" when there is none.
func (s *Store) ExportDay(date string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[date]
	if !ok {
		return ""
	}
	return "## " + date + "\n" + strings.Join(e.Logs, "\n")
}

// ExportFileName is the file an export of date is written to.
func ExportFileName(date string) string {
	return fmt.Sprintf("journal-%s.txt", date)
}

// WriteExport writes ExportDay(date) to dir and returns the path.
func (s *Store) WriteExport(dir, date string) (string, error) {
	content := s.ExportDay(date)
	if content == "" {
		return "", fmt.Errorf("journal: no entry for %s", date)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("journal: ensure export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(date))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("journal: write export: %w", err)
	}
	return path, nil
}

// Entry returns a copy of the entry for date.
func (s *Store) Entry(date string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[date]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// Entries returns a copy of every entry keyed by date.
func (s *Store) Entries() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Entry, len(s.entries))
	for date, e := range s.entries {
		out[date] = copyEntry(e)
	}
	return out
}

// Dates lists entry dates newest first.
func (s *Store) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	dates := make([]string, 0, len(s.entries))
	for date := range s.entries {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

func (s *Store) Load() {
	if s.kv == nil {
		return
	}
	stored := make(map[string]*Entry)
	if _, err := kv.GetJSON(s.kv, StorageKey, &stored); err != nil {
		s.log.Warn("journal: load", "error", err)
		stored = make(map[string]*Entry)
	}
	for date, e := range stored {
		if e == nil {
			delete(stored, date)
			continue
		}
		e.Date = date
	}

	s.mu.Lock()
	s.entries = stored
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
	if err := kv.SetJSON(s.kv, StorageKey, s.entries); err != nil {
		s.log.Warn("journal: save", "error", err)
	}
}

func copyEntry(e *Entry) Entry {
	return Entry{Date: e.Date, Logs: append([]string(nil), e.Logs...)}
}
