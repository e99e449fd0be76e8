// Package info reports where data lives and what is stored.
package info

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/kv"
)

type Info struct {
	Config  *kv.FileConfig
	Session *app.Session
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("BENCHQUEST_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "BENCHQUEST_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "BENCHQUEST_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = kv.LoadConfig()
		if err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	file := n.Config.File
	if file == "" {
		file = "none"
	}
	tbl.AddRow("Config file:", file)
	tbl.AddRow("Data path:", n.Config.BasePath())
	tbl.AddRow("Backend:", n.Config.Backend())
	tbl.AddRow("Log:", n.Config.LogLevel+" "+n.Config.LogFormat)
	tbl.AddRow("Export dir:", n.Config.ExportDir)
	_, _ = fmt.Fprintln(out, tbl)

	if n.Session == nil {
		return fmt.Errorf("failed to open the store")
	}

	_, _ = fmt.Fprintln(out, "Keys:")
	keys := n.Session.KV.Keys(ctx)
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "  %s\n", k)
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "nothing stored yet")
	}
	return nil
}
