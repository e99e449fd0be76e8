package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/commands/options"
	"tableflip.dev/benchquest/pkg/protocol"
	"tableflip.dev/benchquest/pkg/runner/add"
	"tableflip.dev/benchquest/pkg/runner/build"
	"tableflip.dev/benchquest/pkg/runner/key"
	"tableflip.dev/benchquest/pkg/runner/strike"
	"tableflip.dev/benchquest/pkg/snake"
)

func addWidget(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "widget",
		Aliases: []string{"widgets", "w"},
		Short:   "add, edit and remove protocol steps",
	}

	addWidgetAdd(cmd)
	addWidgetConfigure(cmd)
	addWidgetRename(cmd)
	addWidgetMove(cmd)
	addWidgetRemove(cmd)
	addWidgetTypes(cmd)

	parent.AddCommand(cmd)
}

func requireWidgetID(_ *cobra.Command, args []string) error {
	if len(args) < 2 {
		return errors.New("requires a protocol id and a widget id")
	}
	return nil
}

// decodeConfig reads --config for a widget of type t. Empty input keeps the
// current config.
func decodeConfig(t protocol.WidgetType, raw string) (protocol.Config, error) {
	if raw == "" {
		return nil, nil
	}
	cfg, err := protocol.DecodeConfig(t, []byte(raw))
	if err != nil {
		return nil, fmt.Errorf("--config: %w", err)
	}
	if err := protocol.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupWidget(sess *app.Session, protocolID, widgetID string) (protocol.Widget, error) {
	p, ok := sess.Protocols.Protocol(protocolID)
	if !ok {
		return protocol.Widget{}, fmt.Errorf("%w: %s", protocol.ErrNotFound, protocolID)
	}
	w, ok := p.Widget(widgetID)
	if !ok {
		return protocol.Widget{}, fmt.Errorf("%w: widget %s", protocol.ErrNotFound, widgetID)
	}
	return w, nil
}

func addWidgetAdd(parent *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WidgetOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "add <protocol id>",
		Short: "append a widget to a protocol",
		Example: `
benchquest protocol widget add protocol-1712345678901 -t timer --title Spin --config '{"duration":60}'
benchquest protocol widget add protocol-1712345678901 -t checklist --config '{"items":["P1","P2","N3"]}'
benchquest protocol widget add protocol-1712345678901 -i
`,
		Args:              requireProtocolID,
		ValidArgsFunction: protocolCompletions,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !i.Interactive {
				return nil
			}
			p := snake.Prompter{}
			t, err := p.WidgetType()
			if err != nil {
				return err
			}
			wo.Type = t
			cfg, err := p.Config(t)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(cfg)
			if err != nil {
				return err
			}
			wo.Config = string(raw)
			return p.Flag(cmd.Flags().Lookup("title"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := decodeConfig(wo.Type, wo.Config)
			if err != nil {
				return err
			}

			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := add.Add{
				Protocol: args[0],
				Type:     wo.Type,
				Title:    wo.Title,
				Config:   cfg,
				ShowID:   io.ShowID,
				Output:   output(),
				Session:  sess,
			}
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				s.Position = &protocol.Position{X: wo.X, Y: wo.Y}
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddWidgetTypeArg(cmd, wo)
	options.AddWidgetArgs(cmd, wo)
	options.AddPositionArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)
	options.InteractiveArgs(cmd, i)

	parent.AddCommand(cmd)
}

func addWidgetConfigure(parent *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WidgetOptions{}

	cmd := &cobra.Command{
		Use:   "configure <protocol id> <widget id>",
		Short: "replace a widget's config",
		Example: `
benchquest protocol widget configure protocol-1712345678901 widget-1712345678999 --config '{"duration":900,"autoStart":true}'
`,
		Args: requireWidgetID,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wo.Config == "" {
				return errors.New("--config is required")
			}
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			w, err := lookupWidget(sess, args[0], args[1])
			if err != nil {
				return oo.HandleError(err)
			}
			cfg, err := decodeConfig(w.Type, wo.Config)
			if err != nil {
				return err
			}

			s := build.Edit{
				Protocol: args[0],
				Widget:   args[1],
				Config:   cfg,
				ShowID:   io.ShowID,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddWidgetArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addWidgetRename(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "rename <protocol id> <widget id> <title>",
		Short: "change a widget's title",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			title := args[2]
			s := build.Edit{
				Protocol: args[0],
				Widget:   args[1],
				Title:    &title,
				ShowID:   io.ShowID,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addWidgetMove(parent *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WidgetOptions{}

	cmd := &cobra.Command{
		Use:   "move <protocol id> <widget id> --x 120 --y 40",
		Short: "move a widget on the canvas",
		Args:  requireWidgetID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := build.Edit{
				Protocol: args[0],
				Widget:   args[1],
				Position: &protocol.Position{X: wo.X, Y: wo.Y},
				ShowID:   io.ShowID,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddPositionArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addWidgetRemove(parent *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "remove <protocol id> <widget id>",
		Aliases: []string{"rm"},
		Short:   "remove a widget from a protocol",
		Args:    requireWidgetID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := strike.Strike{
				Protocol: args[0],
				Widget:   args[1],
				ShowID:   io.ShowID,
				Output:   output(),
				Session:  sess,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addWidgetTypes(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "types",
		Aliases: []string{"key", "palette"},
		Short:   "list widget types and their defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := key.Key{
				Output: output(),
				Out:    cmd.OutOrStdout(),
			}
			err := s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}
