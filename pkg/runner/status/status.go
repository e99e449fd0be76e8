// Package status prints the player dashboard.
package status

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/logging"
	"tableflip.dev/benchquest/pkg/printers"
)

// Status prints once, or again after every change another process writes
// when Watch is set.
type Status struct {
	Watch   bool
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Status) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not get status, no session")
	}
	if err := n.print(); err != nil {
		return err
	}
	if !n.Watch {
		return nil
	}

	changes, err := n.Session.Watch(ctx)
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			log.Debug("status: store changed", "key", ev.Key)
			if err := n.print(); err != nil {
				return err
			}
		}
	}
}

func (n *Status) print() error {
	st := n.Session.Status(n.Session.Journal.Now())
	if n.Output == "json" {
		return printers.JSON(n.Out, st)
	}
	pp := printers.PrettyPrint{Out: n.Out, Theme: n.Session.Settings.Get().ThemeMode}
	pp.Status(st)
	return nil
}
