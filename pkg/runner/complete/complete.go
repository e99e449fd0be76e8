// Package complete provides the runner logic for claiming quests.
package complete

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
)

var ErrQuestNotFound = errors.New("quest not found")

// Complete claims a quest, or sets its progress when Progress is set.
type Complete struct {
	ID       string
	Progress *int
	Output   string
	Out      io.Writer
	Session  *app.Session

	// Claimed reports whether this call awarded the reward.
	Claimed bool
}

// Do executes the completion for the configured quest ID.
func (n *Complete) Do(ctx context.Context) error {
	if n.Session == nil {
		return errors.New("can not complete, no session")
	}
	quests := n.Session.Quests
	before, ok := quests.Quest(n.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrQuestNotFound, n.ID)
	}

	if n.Progress != nil {
		quests.UpdateQuestProgress(n.ID, *n.Progress)
	} else {
		quests.CompleteQuest(n.ID)
	}
	after, _ := quests.Quest(n.ID)
	n.Claimed = !before.Completed && after.Completed

	if n.Output == "json" {
		return printers.JSON(n.Out, struct {
			Quest   any  `json:"quest"`
			Claimed bool `json:"claimed"`
			Score   int  `json:"score"`
			Level   int  `json:"level"`
		}{after, n.Claimed, quests.Score(), quests.Level()})
	}

	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.Claimed {
		pp.Title(fmt.Sprintf("+%d points, level %d", after.Reward, quests.Level()))
		pp.NewLine()
	}
	pp.Quests(quests.Quests())
	return nil
}
