package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/benchquest/pkg/protocol"
)

// WidgetOptions
type WidgetOptions struct {
	Type   protocol.WidgetType
	Title  string
	Config string
	X, Y   float64
}

func AddWidgetTypeArg(cmd *cobra.Command, o *WidgetOptions) {
	o.Type = protocol.Timer
	cmd.Flags().VarP(&o.Type, "type", "t",
		"Widget type, see `benchquest protocol widget types`.")
}

func AddWidgetArgs(cmd *cobra.Command, o *WidgetOptions) {
	cmd.Flags().StringVar(&o.Title, "title", "",
		"Widget title. Defaults to the type's title.")
	cmd.Flags().StringVar(&o.Config, "config", "",
		`Widget config as JSON, example: --config='{"duration":600}'.`)
}

func AddPositionArgs(cmd *cobra.Command, o *WidgetOptions) {
	cmd.Flags().Float64Var(&o.X, "x", 0, "Canvas x position.")
	cmd.Flags().Float64Var(&o.Y, "y", 0, "Canvas y position.")
}
