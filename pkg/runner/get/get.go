// Package get lists protocols or shows one.
package get

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/protocol"
)

type Get struct {
	ID      string
	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Get) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not get, no session")
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}

	if n.ID == "" {
		all := n.Session.Protocols.Protocols()
		if n.Output == "json" {
			return printers.JSON(n.Out, all)
		}
		pp.Protocols(all)
		return nil
	}

	p, ok := n.Session.Protocols.Protocol(n.ID)
	if !ok {
		return fmt.Errorf("%w: %s", protocol.ErrNotFound, n.ID)
	}
	if n.Output == "json" {
		return printers.JSON(n.Out, p)
	}
	pp.Protocol(p)
	return nil
}
