// Package mcp provides the Model Context Protocol server integration for benchquest.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/heatmap"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/quest"
)

// Service maps tool calls onto the session's stores. Tool calls may arrive
// concurrently; edits hold mu from Open to Save because the builder works on
// a single current protocol.
type Service struct {
	Session *app.Session

	mu sync.Mutex
}

var (
	// ErrQuestNotFound is returned when a quest id is unknown.
	ErrQuestNotFound = errors.New("quest not found")
	errNoSession     = errors.New("session is not configured")
)

// NewService builds a service wrapper around sess.
func NewService(sess *app.Session) *Service {
	return &Service{Session: sess}
}

// ProtocolSummary describes a protocol without its widgets.
type ProtocolSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	WidgetCount  int    `json:"widgetCount"`
	LastModified string `json:"lastModified"`
}

// ClaimResult is returned by ClaimQuest.
type ClaimResult struct {
	Quest   quest.Quest `json:"quest"`
	Claimed bool        `json:"claimed"`
	Score   int         `json:"score"`
	Level   int         `json:"level"`
}

// CompanionStatus is the companion with the player's standing.
type CompanionStatus struct {
	Companion     quest.Companion `json:"companion"`
	Score         int             `json:"score"`
	Level         int             `json:"level"`
	LevelProgress int             `json:"levelProgress"`
}

func (s *Service) ready() error {
	if s == nil || s.Session == nil {
		return errNoSession
	}
	return nil
}

// ListProtocols returns summaries sorted by name.
func (s *Service) ListProtocols() ([]ProtocolSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all := s.Session.Protocols.Protocols()
	out := make([]ProtocolSummary, 0, len(all))
	for _, p := range all {
		out = append(out, ProtocolSummary{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			WidgetCount:  len(p.Widgets),
			LastModified: p.LastModified.Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Service) GetProtocol(id string) (protocol.Protocol, error) {
	if err := s.ready(); err != nil {
		return protocol.Protocol{}, err
	}
	p, ok := s.Session.Protocols.Protocol(id)
	if !ok {
		return protocol.Protocol{}, fmt.Errorf("%w: %s", protocol.ErrNotFound, id)
	}
	return p, nil
}

// CreateProtocol creates and saves an empty protocol.
func (s *Service) CreateProtocol(name, description string) (protocol.Protocol, error) {
	if err := s.ready(); err != nil {
		return protocol.Protocol{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Session.Builder.Create(name, description); !ok {
		return protocol.Protocol{}, errors.New("name is required")
	}
	return s.Session.Builder.Save()
}

func (s *Service) DeleteProtocol(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Session.Builder.Delete(id)
}

// AddWidget appends a widget of widgetType to the protocol. An empty title
// or config keeps the type's defaults.
func (s *Service) AddWidget(protocolID, widgetType, title string, config json.RawMessage) (protocol.Widget, error) {
	if err := s.ready(); err != nil {
		return protocol.Widget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := protocol.ParseWidgetType(widgetType)
	if err != nil {
		return protocol.Widget{}, err
	}
	var cfg protocol.Config
	if len(config) > 0 {
		if cfg, err = protocol.DecodeConfig(t, config); err != nil {
			return protocol.Widget{}, err
		}
		if err := protocol.ValidateConfig(cfg); err != nil {
			return protocol.Widget{}, err
		}
	}

	b := s.Session.Builder
	if err := b.Open(protocolID); err != nil {
		return protocol.Widget{}, err
	}
	defer b.Close()

	id, err := b.AddWidget(t, nil)
	if err != nil {
		return protocol.Widget{}, err
	}
	if cfg != nil {
		if err := b.ConfigureWidget(id, cfg); err != nil {
			return protocol.Widget{}, err
		}
	}
	if title = strings.TrimSpace(title); title != "" {
		if err := b.Rename(id, title); err != nil {
			return protocol.Widget{}, err
		}
	}
	p, err := b.Save()
	if err != nil {
		return protocol.Widget{}, err
	}
	w, _ := p.Widget(id)
	return w, nil
}

// RemoveWidget drops a widget and returns the updated protocol.
func (s *Service) RemoveWidget(protocolID, widgetID string) (protocol.Protocol, error) {
	if err := s.ready(); err != nil {
		return protocol.Protocol{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.Session.Builder
	if err := b.Open(protocolID); err != nil {
		return protocol.Protocol{}, err
	}
	defer b.Close()
	if err := b.Remove(widgetID); err != nil {
		return protocol.Protocol{}, err
	}
	return b.Save()
}

// ListQuests returns active quests, or all of them when all is set.
func (s *Service) ListQuests(all bool) ([]quest.Quest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if all {
		return s.Session.Quests.Quests(), nil
	}
	return s.Session.Quests.Active(), nil
}

// ClaimQuest completes the quest. Claiming twice awards once.
func (s *Service) ClaimQuest(id string) (ClaimResult, error) {
	if err := s.ready(); err != nil {
		return ClaimResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.Session.Quests
	if _, ok := q.Quest(id); !ok {
		return ClaimResult{}, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
	}
	claimed := q.CompleteQuest(id)
	after, _ := q.Quest(id)
	return ClaimResult{Quest: after, Claimed: claimed, Score: q.Score(), Level: q.Level()}, nil
}

func (s *Service) CompanionStatus() (CompanionStatus, error) {
	if err := s.ready(); err != nil {
		return CompanionStatus{}, err
	}
	q := s.Session.Quests
	return CompanionStatus{
		Companion:     q.Companion(),
		Score:         q.Score(),
		Level:         q.Level(),
		LevelProgress: q.LevelProgress(),
	}, nil
}

// InteractCompanion pets the companion.
func (s *Service) InteractCompanion() (CompanionStatus, error) {
	if err := s.ready(); err != nil {
		return CompanionStatus{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Session.Quests.InteractWithCompanion()
	return s.CompanionStatus()
}

// AddJournalLog appends text to today's entry and returns it.
func (s *Service) AddJournalLog(text string) (journal.Entry, error) {
	if err := s.ready(); err != nil {
		return journal.Entry{}, err
	}
	if strings.TrimSpace(text) == "" {
		return journal.Entry{}, errors.New("text is required")
	}
	s.Session.Journal.AddLog(text)
	e, _ := s.Session.Journal.Entry(journal.DateKey(s.Session.Journal.Now()))
	return e, nil
}

// ExportJournalDay renders date, defaulting to today.
func (s *Service) ExportJournalDay(date string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if date == "" {
		date = journal.DateKey(s.Session.Journal.Now())
	}
	if _, err := time.Parse(journal.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q, expected %s", date, journal.DateLayout)
	}
	text := s.Session.Journal.ExportDay(date)
	if text == "" {
		return "", fmt.Errorf("no journal entry for %s", date)
	}
	return text, nil
}

// ActivityHeatmap returns one month, or every month when month is zero.
func (s *Service) ActivityHeatmap(year, month int) ([]heatmap.Calendar, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := s.Session.Journal.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		return s.Session.HeatmapYear(year), nil
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	return []heatmap.Calendar{s.Session.Heatmap(year, time.Month(month))}, nil
}
