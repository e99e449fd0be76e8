package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/runner/settings"
	"tableflip.dev/benchquest/pkg/runner/status"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "show or change theme and corner style",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettings(cmd, "", "")
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "show the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettings(cmd, "", "")
		},
	}

	theme := &cobra.Command{
		Use:       "theme <light|dark>",
		Short:     "set the color theme",
		ValidArgs: []string{"light", "dark"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(cmd, args[0], "")
		},
	}

	corners := &cobra.Command{
		Use:       "corners <rounded|sharp>",
		Short:     "set the panel corner style",
		ValidArgs: []string{"rounded", "sharp"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(cmd, "", args[0])
		},
	}

	cmd.AddCommand(show, theme, corners)
	topLevel.AddCommand(cmd)
}

func runSettings(cmd *cobra.Command, theme, corners string) error {
	ctx, sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	s := settings.Settings{
		Theme:   theme,
		Corners: corners,
		Output:  output(),
		Session: sess,
	}
	err = s.Do(ctx)
	return oo.HandleError(err)
}

func addStatus(topLevel *cobra.Command) {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "score, level, companion and today's activity",
		Example: `
benchquest status
benchquest status --watch
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := status.Status{
				Watch:   watch,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again whenever another benchquest process changes the data.")

	topLevel.AddCommand(cmd)
}
