package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/commands/options"
	"tableflip.dev/benchquest/pkg/runner/build"
	"tableflip.dev/benchquest/pkg/runner/get"
	"tableflip.dev/benchquest/pkg/runner/strike"
	"tableflip.dev/benchquest/pkg/runner/ui"
)

func addProtocol(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "protocol",
		Aliases: []string{"protocols", "p"},
		Short:   "build, list and run research protocols",
	}

	addProtocolCreate(cmd)
	addProtocolList(cmd)
	addProtocolShow(cmd)
	addProtocolDelete(cmd)
	addProtocolExport(cmd)
	addProtocolImport(cmd)
	addProtocolRun(cmd)
	addWidget(cmd)

	topLevel.AddCommand(cmd)
}

func requireProtocolID(_ *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("requires a protocol id")
	}
	return nil
}

func addProtocolCreate(parent *cobra.Command) {
	io := &options.IDOptions{}
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "create an empty protocol",
		Example: `
benchquest protocol create "Plasmid miniprep" --description "Qiagen spin kit"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := build.Create{
				Name:        args[0],
				Description: description,
				ShowID:      io.ShowID,
				Output:      output(),
				Session:     sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Protocol description.")
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProtocolList(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list saved protocols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := get.Get{
				ShowID:  io.ShowID,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProtocolShow(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:               "show <protocol id>",
		Aliases:           []string{"get"},
		Short:             "show a protocol and its widgets",
		Args:              requireProtocolID,
		ValidArgsFunction: protocolCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := get.Get{
				ID:      args[0],
				ShowID:  io.ShowID,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProtocolDelete(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "delete <protocol id>",
		Aliases:           []string{"rm", "strike"},
		Short:             "delete a protocol",
		Args:              requireProtocolID,
		ValidArgsFunction: protocolCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := strike.Strike{
				Protocol: args[0],
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addProtocolExport(parent *cobra.Command) {
	var path string

	cmd := &cobra.Command{
		Use:   "export <protocol id>",
		Short: "write a protocol as a YAML template",
		Example: `
benchquest protocol export protocol-1712345678901 -f miniprep.yaml
`,
		Args:              requireProtocolID,
		ValidArgsFunction: protocolCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := build.Export{
				Protocol: args[0],
				Path:     path,
				Out:      cmd.OutOrStdout(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "File to write. Defaults to stdout.")

	parent.AddCommand(cmd)
}

func addProtocolImport(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "create a protocol from a YAML template",
		Example: `
benchquest protocol import miniprep.yaml
cat miniprep.yaml | benchquest protocol import -
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := build.Import{
				Path:    args[0],
				In:      os.Stdin,
				ShowID:  io.ShowID,
				Output:  output(),
				Session: sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProtocolRun(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "run <protocol id>",
		Short:             "walk through a protocol step by step",
		Long:              "Run a protocol in the terminal. Timers count down, checklists tick off and the run is logged to today's journal when it finishes.",
		Args:              requireProtocolID,
		ValidArgsFunction: protocolCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := ui.UI{
				Protocol: args[0],
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}
