package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where data is stored.",
		Example: `
benchquest info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, cfg, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := info.Info{
				Config:  cfg,
				Session: sess,
				Out:     cmd.OutOrStdout(),
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
