// Package build creates, edits, exports and imports protocols.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/printers"
	"tableflip.dev/benchquest/pkg/protocol"
)

var errNoSession = errors.New("can not build, no session")

// Create saves a new empty protocol.
type Create struct {
	Name        string
	Description string

	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session

	Created protocol.Protocol
}

func (n *Create) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	b := n.Session.Builder
	if _, ok := b.Create(n.Name, n.Description); !ok {
		return errors.New("protocol name is required")
	}
	p, err := b.Save()
	if err != nil {
		return err
	}
	n.Created = p

	if n.Output == "json" {
		return printers.JSON(n.Out, p)
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.Protocol(p)
	return nil
}

// Edit changes one widget. Nil fields are left alone.
type Edit struct {
	Protocol string
	Widget   string
	Title    *string
	Config   protocol.Config
	Position *protocol.Position

	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	b := n.Session.Builder
	if err := b.Open(n.Protocol); err != nil {
		return err
	}
	defer b.Close()

	if n.Config != nil {
		if err := b.ConfigureWidget(n.Widget, n.Config); err != nil {
			return err
		}
	}
	if n.Title != nil {
		if err := b.Rename(n.Widget, *n.Title); err != nil {
			return err
		}
	}
	if n.Position != nil {
		if err := b.Move(n.Widget, *n.Position); err != nil {
			return err
		}
	}
	p, err := b.Save()
	if err != nil {
		return err
	}
	if n.Output == "json" {
		w, _ := p.Widget(n.Widget)
		return printers.JSON(n.Out, w)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Protocol(p)
	return nil
}

// Export writes a protocol as a YAML template to Path, or Out when Path is
// empty.
type Export struct {
	Protocol string
	Path     string
	Out      io.Writer
	Session  *app.Session
}

func (n *Export) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	data, err := n.Session.Protocols.ExportYAML(n.Protocol)
	if err != nil {
		return err
	}
	if n.Path == "" {
		out := n.Out
		if out == nil {
			out = os.Stdout
		}
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(n.Path, data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", n.Path, err)
	}
	return nil
}

// Import reads a YAML template from Path, or In when Path is "-".
type Import struct {
	Path string
	In   io.Reader

	ShowID  bool
	Output  string
	Out     io.Writer
	Session *app.Session

	Imported protocol.Protocol
}

func (n *Import) Do(ctx context.Context) error {
	if n.Session == nil {
		return errNoSession
	}
	var (
		data []byte
		err  error
	)
	if n.Path == "-" || n.Path == "" {
		in := n.In
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(n.Path)
	}
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if _, err := n.Session.Protocols.ImportYAML(data); err != nil {
		return err
	}
	// the import is current; saving it through the builder credits the quest
	p, err := n.Session.Builder.Save()
	if err != nil {
		return err
	}
	n.Imported = p

	if n.Output == "json" {
		return printers.JSON(n.Out, p)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Protocol(p)
	return nil
}
