package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/benchquest/pkg/events"
	"tableflip.dev/benchquest/pkg/journal"
	"tableflip.dev/benchquest/pkg/kv"
	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/quest"
	"tableflip.dev/benchquest/pkg/research"
	"tableflip.dev/benchquest/pkg/settings"
)

// TickInterval is how often running timers count down.
const TickInterval = time.Second

// Options configures Open.
type Options struct {
	// Store is used as is when set; otherwise one is opened from Config.
	Store  kv.Store
	Config kv.Config
	Logger *slog.Logger
	// Now overrides the clock of every store.
	Now func() time.Time
	// Bus is created when nil.
	Bus *events.Bus
}

// Session holds every store of one running instance and the wiring between
// them. UIs, the CLI and the MCP server share it.
type Session struct {
	KV        kv.Store
	Bus       *events.Bus
	Settings  *settings.Store
	Journal   *journal.Store
	Research  *research.Store
	Quests    *quest.Store
	Protocols *protocol.Store
	Builder   *protocol.Builder

	log    *slog.Logger
	ticker *research.Ticker
	unsubs []func()
	owned  bool

	hookMu    sync.Mutex
	hookID    int
	tickHooks map[int]func([]research.Timer)
}

var ErrClosed = errors.New("app: session closed")

// Open builds the stores, loads them from kv and rolls the daily quest.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	store, owned := opts.Store, false
	if store == nil {
		var err error
		store, err = kv.Open(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("app: open store: %w", err)
		}
		owned = true
	}

	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Session{
		KV:        store,
		Bus:       bus,
		Settings:  settings.New(store, bus, log),
		Journal:   journal.New(store, bus, log),
		Research:  research.New(bus),
		Quests:    quest.New(store, bus, log),
		Protocols: protocol.New(store, bus, log),
		log:       log,
		owned:     owned,
		tickHooks: make(map[int]func([]research.Timer)),
	}
	s.Builder = protocol.NewBuilder(s.Protocols, s.Quests)
	if opts.Now != nil {
		s.Journal.Now = opts.Now
		s.Research.Now = opts.Now
		s.Quests.Now = opts.Now
		s.Protocols.Now = opts.Now
	}
	s.ticker = research.NewTicker(TickInterval, func() { s.Tick() })

	s.Reload("")
	if s.Quests.GenerateDailyQuests() {
		log.Info("app: new daily quest")
	}
	s.wire()
	return s, nil
}

func (s *Session) wire() {
	s.unsubs = append(s.unsubs,
		s.Bus.Subscribe(events.TimerCompleted, s.onTimerCompleted),
		s.Bus.Subscribe(events.ChecklistCompleted, s.onChecklistCompleted),
		s.Bus.Subscribe(events.ProtocolRun, func(events.Event) { s.progressDaily() }),
	)
	if s.log.Enabled(context.Background(), slog.LevelDebug) {
		s.unsubs = append(s.unsubs, s.Bus.SubscribeAll(func(ev events.Event) {
			s.log.Debug("app: event", "event", ev.Describe())
		}))
	}
}

func (s *Session) onTimerCompleted(ev events.Event) {
	t, ok := s.Research.Timer(ev.Subject)
	if !ok {
		return
	}
	s.Journal.AddLog(fmt.Sprintf("Timer completed: \"%s\" (%d minutes)", t.Name, t.Minutes()))
	s.Quests.UpdateQuestProgress(quest.TimerQuestID, s.Research.CompletedTimers())
	s.progressDaily()
}

func (s *Session) onChecklistCompleted(ev events.Event) {
	c, ok := s.Research.Checklist(ev.Subject)
	if !ok {
		return
	}
	s.Journal.AddLog("Checklist completed: " + c.Title)
	s.Quests.UpdateQuestProgress(quest.ChecklistQuestID, s.Research.CompletedChecklists())
	s.progressDaily()
}

func (s *Session) progressDaily() {
	if daily, ok := s.Quests.DailyQuest(); ok {
		s.Quests.IncrementQuestProgress(daily.ID, 1)
	}
}

// Tick advances running timers by one second. Completion side effects run
// through the bus before it returns, then tick hooks see the result.
func (s *Session) Tick() []research.Timer {
	done := s.Research.Tick()

	s.hookMu.Lock()
	hooks := make([]func([]research.Timer), 0, len(s.tickHooks))
	for _, h := range s.tickHooks {
		hooks = append(hooks, h)
	}
	s.hookMu.Unlock()

	for _, h := range hooks {
		h(done)
	}
	return done
}

// OnTick registers fn to run after every Tick and returns a func removing it.
func (s *Session) OnTick(fn func(completed []research.Timer)) (remove func()) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	id := s.hookID
	s.hookID++
	s.tickHooks[id] = fn
	return func() {
		s.hookMu.Lock()
		defer s.hookMu.Unlock()
		delete(s.tickHooks, id)
	}
}

// StartTicking runs Tick every second until StopTicking or ctx ends.
func (s *Session) StartTicking(ctx context.Context) {
	s.ticker.Start(ctx)
}

func (s *Session) StopTicking() {
	s.ticker.Stop()
}

func (s *Session) Ticking() bool {
	return s.ticker.Running()
}

// Run starts a run of the protocol with id; saving it writes the journal.
func (s *Session) Run(id string) (*protocol.RunSession, error) {
	return s.Protocols.NewRun(id, s.Journal)
}

// Reload re-reads the stores that own key from kv. An empty key reloads
// every store. Timers and checklists live in memory and are untouched.
func (s *Session) Reload(key string) {
	switch key {
	case settings.StorageKey:
		s.Settings.Load()
	case journal.StorageKey:
		s.Journal.Load()
	case protocol.StorageKey:
		s.Protocols.LoadFromStorage()
	case quest.QuestsKey, quest.CompanionKey, quest.ScoreKey, quest.LastGenerationKey:
		s.Quests.Load()
	case "":
		s.Settings.Load()
		s.Journal.Load()
		s.Quests.Load()
		s.Protocols.LoadFromStorage()
	}
}

// Watch reloads stores as another process writes to kv and forwards each
// change. Backends without change notification return an error.
func (s *Session) Watch(ctx context.Context) (<-chan kv.Event, error) {
	w, ok := s.KV.(kv.Watcher)
	if !ok {
		return nil, errors.New("app: store does not support watching")
	}
	in, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan kv.Event)
	go func() {
		defer close(out)
		for ev := range in {
			s.Reload(ev.Key)
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops the ticker, drops the wiring and closes a store Open created.
func (s *Session) Close() error {
	if s == nil {
		return ErrClosed
	}
	s.ticker.Stop()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	if s.owned {
		return s.KV.Close()
	}
	return nil
}
