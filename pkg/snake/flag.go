// Package snake holds the promptui dialogs behind --interactive.
package snake

import (
	"fmt"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/pflag"
)

// Prompter asks on In and draws on Out. Zero values use the terminal.
type Prompter struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

var promptTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} : ",
	Valid:   "{{ . | green }} : ",
	Invalid: "{{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

func asFlags(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("--%s, -%s", f.Name, f.Shorthand)
	}
	return fmt.Sprintf("--%s", f.Name)
}

// Ask prompts for one value, pre-filled with def. validate may be nil.
func (p Prompter) Ask(label, def string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Templates: promptTemplates,
		Validate:  validate,
		Stdin:     p.In,
		Stdout:    p.Out,
	}
	result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if result == "" {
		result = def
	}
	return result, nil
}

// Flag prompts for an unset flag and applies the answer through its Value.
func (p Prompter) Flag(f *pflag.Flag) error {
	if f.Changed {
		return nil
	}
	label := fmt.Sprintf("%s (%s)", f.Usage, asFlags(f))
	validate := func(input string) error {
		if input == "" {
			return nil
		}
		if f.Value.Type() == "bool" {
			_, err := ParseBool(input)
			return err
		}
		return nil
	}
	result, err := p.Ask(label, f.Value.String(), validate)
	if err != nil {
		return err
	}
	if result == "" {
		return nil
	}
	if f.Value.Type() == "bool" {
		b, _ := ParseBool(result)
		result = strconv.FormatBool(b)
	}
	if err := f.Value.Set(result); err != nil {
		return err
	}
	f.Changed = true
	return nil
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "no", "NO", "No":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}
