// Package strike removes a widget from a protocol, or the protocol itself.
package strike

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
)

type Strike struct {
	Protocol string
	// Widget, when set, is removed instead of the whole protocol.
	Widget  string
	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Strike) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not strike, no session")
	}
	b := n.Session.Builder
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}

	if n.Widget == "" {
		if err := b.Delete(n.Protocol); err != nil {
			return err
		}
		all := n.Session.Protocols.Protocols()
		if n.Output == "json" {
			return printers.JSON(n.Out, all)
		}
		pp.Protocols(all)
		return nil
	}

	if err := b.Open(n.Protocol); err != nil {
		return err
	}
	defer b.Close()
	if err := b.Remove(n.Widget); err != nil {
		return err
	}
	p, err := b.Save()
	if err != nil {
		return err
	}
	if n.Output == "json" {
		return printers.JSON(n.Out, p)
	}
	pp.Protocol(p)
	return nil
}
