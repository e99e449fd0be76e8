package protocol

import (
	"fmt"
	"strings"

	"tableflip.dev/benchquest/pkg/events"
)

// Logger receives the journal line of a finished run.
type Logger interface {
	AddLog(text string)
}

// RunSession walks a protocol's widgets in order.
type RunSession struct {
	store    *Store
	journal  Logger
	bus      *events.Bus
	protocol Protocol
	step     int
	done     map[string]bool
	saved    bool
}

// NewRun starts a run of the protocol with id.
func (s *Store) NewRun(id string, journal Logger) (*RunSession, error) {
	p, ok := s.Protocol(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &RunSession{
		store:    s,
		journal:  journal,
		bus:      s.bus,
		protocol: p,
		done:     make(map[string]bool),
	}, nil
}

func (r *RunSession) Protocol() Protocol { return r.protocol }

// Step is the zero based index of the current widget. It equals the widget
// count once the run is finished.
func (r *RunSession) Step() int { return r.step }

// Current returns the widget at the current step.
func (r *RunSession) Current() (Widget, bool) {
	if r.Finished() {
		return Widget{}, false
	}
	return r.protocol.Widgets[r.step], true
}

// Next advances one step and reports whether a widget remains.
func (r *RunSession) Next() bool {
	if r.step < len(r.protocol.Widgets) {
		r.step++
	}
	return !r.Finished()
}

// MarkDone checks off the current step and advances.
func (r *RunSession) MarkDone() bool {
	w, ok := r.Current()
	if !ok {
		return false
	}
	r.done[w.ID] = true
	return r.Next()
}

// Done reports whether the widget was checked off in this run.
func (r *RunSession) Done(id string) bool { return r.done[id] }

func (r *RunSession) Finished() bool {
	return r.step >= len(r.protocol.Widgets)
}

// Summary is the journal text recorded for the run.
func (r *RunSession) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Protocol Run: %s\nSteps:", r.protocol.Name)
	for i, w := range r.protocol.Widgets {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, w.Label())
	}
	return b.String()
}

// Save logs the run to the journal and re-saves the protocol. Saving twice
// is a no-op.
func (r *RunSession) Save() bool {
	if r.saved {
		return false
	}
	r.saved = true
	if r.journal != nil {
		r.journal.AddLog(r.Summary())
	}
	if latest, ok := r.store.Protocol(r.protocol.ID); ok {
		r.store.SaveProtocol(latest)
	}
	r.bus.Publish(events.Event{Topic: events.ProtocolRun, Subject: r.protocol.ID, Value: len(r.done)})
	return true
}
