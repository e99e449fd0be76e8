// Package ui runs a protocol in the terminal.
package ui

import (
	"context"
	"errors"

	"tableflip.dev/benchquest/pkg/app"
	teaui "tableflip.dev/benchquest/pkg/tui/app"
)

type UI struct {
	Protocol string
	Session  *app.Session
}

func (d *UI) Do(ctx context.Context) error {
	if d.Session == nil {
		return errors.New("can not run, no session")
	}
	return teaui.RunProtocol(ctx, d.Session, d.Protocol)
}
