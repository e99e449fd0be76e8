package snake

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/benchquest/pkg/protocol"
)

// Field is one top level config value offered to the user.
type Field struct {
	Name    string
	Kind    reflect.Kind
	Default string
}

// WidgetType lets the user pick from the widget palette.
func (p Prompter) WidgetType() (protocol.WidgetType, error) {
	types := protocol.WidgetTypes()
	items := make([]struct{ Name, Title, Summary string }, len(types))
	for i, t := range types {
		items[i].Name = string(t)
		items[i].Title = protocol.DefaultTitle(t)
		items[i].Summary = protocol.DefaultConfig(t).Summary()
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Title | bold }} {{ .Name | green }}",
		Inactive: "   {{ .Title }} {{ .Name | cyan }}",
		Selected: "{{ .Title | bold }}",
		Details: `
--------- Defaults ----------
{{ .Summary }}
`,
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(items[index].Name + items[index].Title)
		return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Widget",
		Items:     items,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     p.In,
		Stdout:    p.Out,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return types[i], nil
}

// Config asks for every field of t's config, starting from the defaults.
func (p Prompter) Config(t protocol.WidgetType) (protocol.Config, error) {
	fields := Fields(protocol.DefaultConfig(t))
	answers := make(map[string]string, len(fields))
	for _, f := range fields {
		validate := func(input string) error {
			_, err := parseField(f, input)
			return err
		}
		answer, err := p.Ask(fieldLabel(f), f.Default, validate)
		if err != nil {
			return nil, err
		}
		answers[f.Name] = answer
	}
	return BuildConfig(t, fields, answers)
}

func fieldLabel(f Field) string {
	switch f.Kind {
	case reflect.Slice:
		return f.Name + " (comma separated)"
	case reflect.Struct:
		return f.Name + " (json)"
	default:
		return f.Name
	}
}

// Fields lists cfg's json fields in declaration order with their current
// values rendered for editing.
func Fields(cfg protocol.Config) []Field {
	if cfg == nil {
		return nil
	}
	v := reflect.ValueOf(cfg)
	rt := v.Type()
	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out = append(out, Field{
			Name:    name,
			Kind:    sf.Type.Kind(),
			Default: render(v.Field(i)),
		})
	}
	return out
}

func render(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Struct:
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return ""
		}
		return string(b)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(v.Interface())
	}
}

func parseField(f Field, input string) (any, error) {
	input = strings.TrimSpace(input)
	switch f.Kind {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return strconv.Atoi(input)
	case reflect.Float64, reflect.Float32:
		return strconv.ParseFloat(input, 64)
	case reflect.Bool:
		return ParseBool(input)
	case reflect.Slice:
		items := []string{}
		for _, part := range strings.Split(input, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	case reflect.Struct:
		if !json.Valid([]byte(input)) {
			return nil, fmt.Errorf("%s: invalid json", f.Name)
		}
		return json.RawMessage(input), nil
	default:
		return input, nil
	}
}

// BuildConfig turns the answers into a validated config of type t. Fields
// without an answer keep their defaults.
func BuildConfig(t protocol.WidgetType, fields []Field, answers map[string]string) (protocol.Config, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		answer, ok := answers[f.Name]
		if !ok {
			continue
		}
		v, err := parseField(f, answer)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		values[f.Name] = v
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	cfg, err := protocol.DecodeConfig(t, raw)
	if err != nil {
		return nil, err
	}
	if err := protocol.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
