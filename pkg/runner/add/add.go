// Package add appends a widget to a saved protocol.
package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/protocol"
)

type Add struct {
	Protocol string
	Type     protocol.WidgetType
	Title    string
	// Config replaces the type's default when set.
	Config   protocol.Config
	Position *protocol.Position

	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session

	// WidgetID is set once Do succeeds.
	WidgetID string
}

func (n *Add) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not add, no session")
	}
	b := n.Session.Builder
	if err := b.Open(n.Protocol); err != nil {
		return err
	}
	defer b.Close()

	id, err := b.AddWidget(n.Type, n.Position)
	if err != nil {
		return err
	}
	if n.Config != nil {
		if err := b.ConfigureWidget(id, n.Config); err != nil {
			_ = b.Remove(id)
			return err
		}
	}
	if n.Title != "" {
		if err := b.Rename(id, n.Title); err != nil {
			return err
		}
	}
	p, err := b.Save()
	if err != nil {
		return err
	}
	n.WidgetID = id

	if n.Output == "json" {
		w, _ := p.Widget(id)
		return printers.JSON(n.Out, w)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Protocol(p)
	return nil
}
