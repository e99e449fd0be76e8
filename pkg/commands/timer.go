package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/runner/track"
	"tableflip.dev/benchquest/pkg/timeutil"
)

func addTimer(topLevel *cobra.Command) {
	var (
		name     string
		duration string
		detach   bool
	)

	cmd := &cobra.Command{
		Use:     "timer [duration]",
		Aliases: []string{"track"},
		Short:   "count down a lab timer",
		Example: `
benchquest timer 5m --name "Spin down"
benchquest timer 1h30m --detach
benchquest timer 12:30
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				duration = args[0]
			}
			d, label, err := timeutil.ParseDuration(duration)
			if err != nil {
				return err
			}
			if name == "" {
				name = label + " timer"
			}

			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := track.Track{
				Name:     name,
				Duration: d,
				Detach:   detach,
				Output:   output(),
				Out:      cmd.OutOrStdout(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Timer name.")
	cmd.Flags().StringVarP(&duration, "duration", "d", "", `Length, example: 90, 5m, 1h30m or 12:30. Defaults to `+timeutil.DefaultTimer+`.`)
	cmd.Flags().BoolVar(&detach, "detach", false, "Count down without the UI and print when done.")

	topLevel.AddCommand(cmd)
}
