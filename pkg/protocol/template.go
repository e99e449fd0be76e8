package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"tableflip.dev/benchquest/pkg/ids"
)

// template is the shareable form of a protocol. Ids and timestamps are not
// part of it.
type template struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Widgets     []templateWidget `yaml:"widgets"`
}

type templateWidget struct {
	Type     WidgetType `yaml:"type"`
	Title    string     `yaml:"title,omitempty"`
	Position *Position  `yaml:"position,omitempty"`
	Config   yaml.Node  `yaml:"config,omitempty"`
}

// ExportYAML renders the protocol with id as a template.
func (s *Store) ExportYAML(id string) ([]byte, error) {
	p, ok := s.Protocol(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t := template{Name: p.Name, Description: p.Description}
	for _, w := range p.Widgets {
		tw := templateWidget{Type: w.Type, Title: w.Title}
		pos := w.Position
		tw.Position = &pos
		cfg := w.Config
		if cfg == nil {
			cfg = DefaultConfig(w.Type)
		}
		if err := tw.Config.Encode(cfg); err != nil {
			return nil, fmt.Errorf("protocol: encode %s config: %w", w.Type, err)
		}
		t.Widgets = append(t.Widgets, tw)
	}
	return yaml.Marshal(t)
}

// ImportYAML creates a protocol from a template with fresh ids. The new
// protocol becomes current, like any created protocol.
func (s *Store) ImportYAML(data []byte) (Protocol, error) {
	var t template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Protocol{}, fmt.Errorf("protocol: parse template: %w", err)
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return Protocol{}, errors.New("protocol: template needs a name")
	}

	widgets := make([]Widget, 0, len(t.Widgets))
	for i, tw := range t.Widgets {
		wt, err := ParseWidgetType(string(tw.Type))
		if err != nil {
			return Protocol{}, fmt.Errorf("protocol: widget %d: %w", i+1, err)
		}
		cfg, err := decodeYAMLConfig(wt, &tw.Config)
		if err != nil {
			return Protocol{}, fmt.Errorf("protocol: widget %d: %w", i+1, err)
		}
		if err := ValidateConfig(cfg); err != nil {
			return Protocol{}, fmt.Errorf("protocol: widget %d: %w", i+1, err)
		}
		w := Widget{
			ID:       ids.New("widget", s.Now()),
			Type:     wt,
			Title:    tw.Title,
			Config:   cfg,
			Position: DefaultPosition,
		}
		if w.Title == "" {
			w.Title = DefaultTitle(wt)
		}
		if tw.Position != nil {
			w.Position = *tw.Position
		}
		widgets = append(widgets, w)
	}

	p := s.CreateProtocol(t.Name, strings.TrimSpace(t.Description))
	p.Widgets = widgets
	s.SaveProtocol(p)
	saved, _ := s.Protocol(p.ID)
	return saved, nil
}

// decodeYAMLConfig reuses the JSON decoder so both formats share defaults.
func decodeYAMLConfig(t WidgetType, node *yaml.Node) (Config, error) {
	if node.Kind == 0 {
		return DefaultConfig(t), nil
	}
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t, err)
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return DecodeConfig(t, raw)
}
