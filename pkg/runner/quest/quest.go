// Package quest lists quests and looks after the lab companion.
package quest

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/quest"
)

var errNoSession = errors.New("can not read quests, no session")

// List prints active quests, or every quest with All.
type List struct {
	All     bool
	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *List) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	list := n.Session.Quests.Active()
	if n.All {
		list = n.Session.Quests.Quests()
	}
	if n.Output == "json" {
		return printers.JSON(n.Out, list)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Quests(list)
	return nil
}

// Companion shows the companion after an optional pet or mood change.
type Companion struct {
	Pet     bool
	Mood    quest.Mood
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Companion) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	if n.Pet {
		n.Session.Quests.InteractWithCompanion()
	}
	if n.Mood != "" {
		n.Session.Quests.UpdateCompanionMood(n.Mood)
	}
	c := n.Session.Quests.Companion()
	if n.Output == "json" {
		return printers.JSON(n.Out, c)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Companion(c)
	return nil
}
