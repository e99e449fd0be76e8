package commands

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/commands/options"
	"tableflip.dev/benchquest/pkg/quest"
	"tableflip.dev/benchquest/pkg/runner/complete"
	qr "tableflip.dev/benchquest/pkg/runner/quest"
)

func addQuest(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "quest",
		Aliases: []string{"quests", "q"},
		Short:   "track quests, score and level",
	}

	addQuestList(cmd)
	addQuestClaim(cmd)
	addQuestProgress(cmd)

	topLevel.AddCommand(cmd)
}

func addQuestList(parent *cobra.Command) {
	io := &options.IDOptions{}
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list open quests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := qr.List{
				All:     all,
				ShowID:  io.ShowID,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed quests.")
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addQuestClaim(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "claim <quest id>",
		Aliases: []string{"complete", "done"},
		Short:   "complete a quest and collect the reward",
		Example: `
benchquest quest claim quest-timer-1
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a quest id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := complete.Complete{
				ID:      args[0],
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addQuestProgress(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "progress <quest id> <value>",
		Short: "set a quest's progress; reaching the target completes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}

			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := complete.Complete{
				ID:       args[0],
				Progress: &progress,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addCompanion(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "companion",
		Aliases: []string{"pet"},
		Short:   "check on the lab companion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompanion(cmd, false, "")
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "show mood, energy and interactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompanion(cmd, false, "")
		},
	}

	pet := &cobra.Command{
		Use:   "pet",
		Short: "pet the companion, restoring some energy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompanion(cmd, true, "")
		},
	}

	mood := &cobra.Command{
		Use:       "mood <mood>",
		Short:     "set the companion's mood",
		ValidArgs: moodNames(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := quest.ParseMood(args[0])
			if err != nil {
				return err
			}
			return runCompanion(cmd, false, m)
		},
	}

	cmd.AddCommand(show, pet, mood)
	topLevel.AddCommand(cmd)
}

func moodNames() []string {
	moods := quest.Moods()
	out := make([]string, len(moods))
	for i, m := range moods {
		out[i] = string(m)
	}
	return out
}

func runCompanion(cmd *cobra.Command, pet bool, mood quest.Mood) error {
	ctx, sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	s := qr.Companion{
		Pet:     pet,
		Mood:    mood,
		Output:  output(),
		Session: sess,
	}
	err = s.Do(ctx)
	return oo.HandleError(err)
}
