// Package track runs a standalone research timer.
package track

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/research"
	teaui "tableflip.dev/benchquest/pkg/tui/app"
)

// Track starts a timer and shows it until the user quits. Detached runs
// count down without the UI and return once the timer completes.
type Track struct {
	Name     string
	Duration time.Duration
	Detach   bool
	Output   string
	Out      io.Writer
	Session  *app.Session
}

func (n *Track) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not track, no session")
	}
	name := n.Name
	if name == "" {
		name = "Timer"
	}
	r := n.Session.Research
	id := r.AddTimer(name, int(n.Duration/time.Second), "")
	r.StartTimer(id)

	if !n.Detach {
		return teaui.RunTimer(ctx, n.Session, id)
	}

	done := make(chan struct{})
	remove := n.Session.OnTick(func(completed []research.Timer) {
		for _, t := range completed {
			if t.ID == id {
				close(done)
				return
			}
		}
	})
	defer remove()
	n.Session.StartTicking(ctx)
	defer n.Session.StopTicking()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	t, _ := r.Timer(id)
	if n.Output == "json" {
		return printers.JSON(n.Out, t)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Title(t.Name + " complete")
	return nil
}
