// Package settings shows and changes display preferences.
package settings

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/settings"
)

// Settings applies Theme and Corners when set, then prints the result.
type Settings struct {
	Theme   string
	Corners string
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Settings) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not change settings, no session")
	}
	store := n.Session.Settings
	if n.Theme != "" {
		mode, err := settings.ParseThemeMode(n.Theme)
		if err != nil {
			return err
		}
		store.SetThemeMode(mode)
	}
	if n.Corners != "" {
		style, err := settings.ParseCornerStyle(n.Corners)
		if err != nil {
			return err
		}
		store.SetCornerStyle(style)
	}

	s := store.Get()
	if n.Output == "json" {
		return printers.JSON(n.Out, s)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Settings(s)
	return nil
}
