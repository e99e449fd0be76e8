package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WidgetType selects a widget's behaviour and its Config variant.
type WidgetType string

const (
	Timer       WidgetType = "timer"
	Checklist   WidgetType = "checklist"
	Note        WidgetType = "note"
	Temperature WidgetType = "temperature"
	PH          WidgetType = "ph"
	Pattern     WidgetType = "pattern"
	Measurement WidgetType = "measurement"
	PCR         WidgetType = "pcr"
	Storage     WidgetType = "storage"
	Dilution    WidgetType = "dilution"
)

var widgetTypes = []WidgetType{Timer, Checklist, Note, Temperature, PH, Pattern, Measurement, PCR, Storage, Dilution}

// WidgetTypes lists every known widget type in palette order.
func WidgetTypes() []WidgetType {
	return append([]WidgetType(nil), widgetTypes...)
}

func ParseWidgetType(s string) (WidgetType, error) {
	t := WidgetType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range widgetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("protocol: unknown widget type %q", s)
}

// String implements pflag.Value.
func (t *WidgetType) String() string {
	return string(*t)
}

// Set implements pflag.Value.
func (t *WidgetType) Set(s string) error {
	parsed, err := ParseWidgetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type implements pflag.Value.
func (t *WidgetType) Type() string {
	return "widgetType"
}

// Position is a widget's location on the builder canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DefaultPosition is where new widgets land.
var DefaultPosition = Position{X: 50, Y: 50}

// Widget is one step of a protocol. Config always matches Type.
type Widget struct {
	ID        string
	Type      WidgetType
	Title     string
	Config    Config
	Position  Position
	Completed bool
}

// Label is the title, or the type when the title is blank.
func (w Widget) Label() string {
	if strings.TrimSpace(w.Title) != "" {
		return w.Title
	}
	return string(w.Type)
}

type widgetJSON struct {
	ID        string          `json:"id"`
	Type      WidgetType      `json:"type"`
	Title     string          `json:"title"`
	Config    json.RawMessage `json:"config"`
	Position  Position        `json:"position"`
	Completed bool            `json:"completed,omitempty"`
}

func (w Widget) MarshalJSON() ([]byte, error) {
	cfg := w.Config
	if cfg == nil {
		cfg = DefaultConfig(w.Type)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(widgetJSON{
		ID:        w.ID,
		Type:      w.Type,
		Title:     w.Title,
		Config:    raw,
		Position:  w.Position,
		Completed: w.Completed,
	})
}

func (w *Widget) UnmarshalJSON(data []byte) error {
	var raw widgetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := DecodeConfig(raw.Type, raw.Config)
	if err != nil {
		return err
	}
	*w = Widget{
		ID:        raw.ID,
		Type:      raw.Type,
		Title:     raw.Title,
		Config:    cfg,
		Position:  raw.Position,
		Completed: raw.Completed,
	}
	return nil
}

// WidgetUpdate is a partial change; nil fields are left alone.
type WidgetUpdate struct {
	Title     *string
	Config    Config
	Position  *Position
	Completed *bool
}

// apply merges u into w. A Config of a different type is ignored.
func (u WidgetUpdate) apply(w *Widget) {
	if u.Title != nil {
		w.Title = *u.Title
	}
	if u.Config != nil && u.Config.Type() == w.Type {
		w.Config = u.Config
	}
	if u.Position != nil {
		w.Position = *u.Position
	}
	if u.Completed != nil {
		w.Completed = *u.Completed
	}
}

// DefaultTitle is the title given to freshly added widgets.
func DefaultTitle(t WidgetType) string {
	switch t {
	case Timer:
		return "Timer"
	case Checklist:
		return "Checklist"
	case Note:
		return "Notes"
	case Temperature:
		return "Temperature Check"
	case PH:
		return "pH Measurement"
	case Pattern:
		return "Pattern"
	case Measurement:
		return "Measurement"
	case PCR:
		return "PCR Cycle"
	case Storage:
		return "Storage"
	case Dilution:
		return "Dilution"
	default:
		return "Widget"
	}
}
