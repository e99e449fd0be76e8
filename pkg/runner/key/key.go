// Package key prints the widget palette.
package key

import (
	"context"
	"io"

	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/protocol"
)

// Key lists every widget type with its default title and config.
type Key struct {
	Output string
	Out    io.Writer
}

func (k *Key) Do(ctx context.Context) error {
	if k.Output == "json" {
		type entry struct {
			Type    protocol.WidgetType `json:"type"`
			Title   string              `json:"title"`
			Default protocol.Config     `json:"config"`
		}
		types := protocol.WidgetTypes()
		out := make([]entry, len(types))
		for i, t := range types {
			out[i] = entry{Type: t, Title: protocol.DefaultTitle(t), Default: protocol.DefaultConfig(t)}
		}
		return printers.JSON(k.Out, out)
	}
	pp := printers.PrettyPrint{Out: k.Out}
	pp.NewLine()
	pp.WidgetTypes()
	return nil
}
