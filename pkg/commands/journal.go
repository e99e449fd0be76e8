package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/commands/options"
	"tableflip.dev/benchquest/pkg/runner/log"
)

func addJournal(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "journal",
		Aliases: []string{"j"},
		Short:   "keep the research journal",
	}

	addJournalLog(cmd)
	addJournalShow(cmd)
	addJournalExport(cmd)
	addJournalHeatmap(cmd)

	topLevel.AddCommand(cmd)
}

func addJournalLog(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "log <message>",
		Short: "append a line to today's journal",
		Example: `
benchquest journal log transformed DH5a with pUC19
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a message")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := log.Log{
				Message: strings.Join(args, " "),
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addJournalShow(parent *cobra.Command) {
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "show a journal day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			day, err := on.GetOn(sess.Journal.Now())
			if err != nil {
				return err
			}
			s := log.Show{
				On:      day,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, on)

	parent.AddCommand(cmd)
}

func addJournalExport(parent *cobra.Command) {
	on := &options.OnOptions{}
	var (
		dir    string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write a journal day to journal-YYYY-MM-DD.txt",
		Example: `
benchquest journal export --on 2026-3-9 --dir ~/notebook
benchquest journal export --stdout
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, cfg, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			day, err := on.GetOn(sess.Journal.Now())
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.ExportDir
			}
			if stdout {
				dir = ""
			}
			s := log.Export{
				On:      day,
				Dir:     dir,
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, on)
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write into. Defaults to the configured export dir.")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the day without writing a file.")

	parent.AddCommand(cmd)
}

func addJournalHeatmap(parent *cobra.Command) {
	ho := &options.HeatmapOptions{}

	cmd := &cobra.Command{
		Use:     "heatmap",
		Aliases: []string{"calendar", "cal"},
		Short:   "show research activity by day",
		Example: `
benchquest journal heatmap
benchquest journal heatmap --month 2 --year 2026
benchquest journal heatmap --full-year
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			year, month, err := ho.Resolve(sess.Journal.Now())
			if err != nil {
				return err
			}
			s := log.Heatmap{
				Year:     year,
				Month:    month,
				FullYear: ho.FullYear,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddHeatmapArgs(cmd, ho)

	parent.AddCommand(cmd)
}
