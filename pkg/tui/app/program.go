// Package teaui hosts the Bubble Tea programs for running timers and
// protocols.
package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	appsvc "tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/research"
	"tableflip.dev/benchquest/pkg/tui/theme"
	"tableflip.dev/benchquest/pkg/tui/views"
)

// RunProtocol walks the protocol with id in the terminal. Finishing every
// step saves the run to the journal.
func RunProtocol(ctx context.Context, sess *appsvc.Session, id string) error {
	run, err := sess.Run(id)
	if err != nil {
		return err
	}
	m := views.NewRun(run, sess.Research, theme.For(sess.Settings.Get()))
	return program(ctx, sess, m)
}

// RunTimer shows the research timer id until the user quits.
func RunTimer(ctx context.Context, sess *appsvc.Session, id string) error {
	m := views.NewTimer(sess.Research, id, theme.For(sess.Settings.Get()))
	return program(ctx, sess, m)
}

// program runs m with the session ticker feeding it TickMsgs.
func program(ctx context.Context, sess *appsvc.Session, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx))

	remove := sess.OnTick(func(done []research.Timer) {
		p.Send(views.TickMsg{Completed: done})
	})
	defer remove()

	if !sess.Ticking() {
		sess.StartTicking(ctx)
		defer sess.StopTicking()
	}

	_, err := p.Run()
	return err
}
