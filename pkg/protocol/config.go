package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the typed settings of one widget type.
type Config interface {
	Type() WidgetType
	// Summary is a one line description for listings.
	Summary() string
}

type TimerConfig struct {
	Duration  int  `json:"duration" yaml:"duration" validate:"gte=1"`
	AutoStart bool `json:"autoStart" yaml:"autoStart"`
}

type ChecklistConfig struct {
	Items []string `json:"items" yaml:"items" validate:"dive,required"`
}

type NoteConfig struct {
	Content string `json:"content" yaml:"content"`
}

type TemperatureConfig struct {
	Unit   string  `json:"unit" yaml:"unit" validate:"oneof=celsius fahrenheit kelvin"`
	Target float64 `json:"target" yaml:"target"`
}

type PHRange struct {
	Min float64 `json:"min" yaml:"min" validate:"gte=0,lte=14,ltefield=Max"`
	Max float64 `json:"max" yaml:"max" validate:"gte=0,lte=14"`
}

type PHConfig struct {
	Target float64 `json:"target" yaml:"target" validate:"gte=0,lte=14"`
	Range  PHRange `json:"range" yaml:"range"`
}

type PatternConfig struct {
	Steps       []string `json:"steps" yaml:"steps" validate:"dive,required"`
	RepeatCount int      `json:"repeatCount" yaml:"repeatCount" validate:"gte=1"`
}

type MeasurementConfig struct {
	Unit             string  `json:"unit" yaml:"unit" validate:"required"`
	Target           float64 `json:"target" yaml:"target" validate:"gte=0"`
	Tolerance        float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0"`
	EnableConversion bool    `json:"enableConversion" yaml:"enableConversion"`
}

type PCRConfig struct {
	Cycles       int     `json:"cycles" yaml:"cycles" validate:"gte=1,lte=100"`
	Denaturation float64 `json:"denaturation" yaml:"denaturation" validate:"gte=0,lte=110"`
	Annealing    float64 `json:"annealing" yaml:"annealing" validate:"gte=0,lte=110"`
	Extension    float64 `json:"extension" yaml:"extension" validate:"gte=0,lte=110"`
}

type StorageConfig struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	Location    string  `json:"location" yaml:"location" validate:"required"`
	Duration    string  `json:"duration" yaml:"duration"`
}

// Dilution methods.
const (
	DilutionByFactor        = "factor"
	DilutionByConcentration = "targetConcentration"
)

type DilutionConfig struct {
	Method              string  `json:"method" yaml:"method" validate:"oneof=factor targetConcentration"`
	Factor              float64 `json:"factor,omitempty" yaml:"factor,omitempty" validate:"gte=0"`
	TargetConcentration float64 `json:"targetConcentration,omitempty" yaml:"targetConcentration,omitempty" validate:"gte=0"`
	InputValue          float64 `json:"inputValue" yaml:"inputValue" validate:"gte=0"`
	InputUnit           string  `json:"inputUnit" yaml:"inputUnit" validate:"required"`
	OutputUnit          string  `json:"outputUnit" yaml:"outputUnit" validate:"required"`
	ConcentrationUnit   string  `json:"concentrationUnit" yaml:"concentrationUnit" validate:"omitempty,oneof=g/L mg/mL ug/uL ng/nL"`
}

func (TimerConfig) Type() WidgetType       { return Timer }
func (ChecklistConfig) Type() WidgetType   { return Checklist }
func (NoteConfig) Type() WidgetType        { return Note }
func (TemperatureConfig) Type() WidgetType { return Temperature }
func (PHConfig) Type() WidgetType          { return PH }
func (PatternConfig) Type() WidgetType     { return Pattern }
func (MeasurementConfig) Type() WidgetType { return Measurement }
func (PCRConfig) Type() WidgetType         { return PCR }
func (StorageConfig) Type() WidgetType     { return Storage }
func (DilutionConfig) Type() WidgetType    { return Dilution }

func (c TimerConfig) Summary() string {
	s := fmt.Sprintf("%dm%02ds", c.Duration/60, c.Duration%60)
	if c.AutoStart {
		s += " (auto start)"
	}
	return s
}

func (c ChecklistConfig) Summary() string {
	return fmt.Sprintf("%d items", len(c.Items))
}

func (c NoteConfig) Summary() string {
	return c.Content
}

func (c TemperatureConfig) Summary() string {
	return fmt.Sprintf("target %g %s", c.Target, c.Unit)
}

func (c PHConfig) Summary() string {
	return fmt.Sprintf("target pH %.1f (%.1f-%.1f)", c.Target, c.Range.Min, c.Range.Max)
}

func (c PatternConfig) Summary() string {
	return fmt.Sprintf("Steps: %d | Repeat: %dx", len(c.Steps), c.RepeatCount)
}

func (c MeasurementConfig) Summary() string {
	return fmt.Sprintf("target %g %s ±%g", c.Target, c.Unit, c.Tolerance)
}

func (c PCRConfig) Summary() string {
	return fmt.Sprintf("%d cycles, %g/%g/%g °C", c.Cycles, c.Denaturation, c.Annealing, c.Extension)
}

func (c StorageConfig) Summary() string {
	return fmt.Sprintf("%g °C at %s for %s", c.Temperature, c.Location, c.Duration)
}

func (c DilutionConfig) Summary() string {
	unit := c.ConcentrationUnit
	if unit == "" {
		unit = "mg/mL"
	}
	if c.Method == DilutionByConcentration {
		return fmt.Sprintf("%g %s to %g %s", c.InputValue, unit, c.TargetConcentration, unit)
	}
	return fmt.Sprintf("%g %s diluted 1:%g into %s", c.InputValue, c.InputUnit, c.Factor, c.OutputUnit)
}

// DefaultConfig returns the starting config for a new widget of type t.
func DefaultConfig(t WidgetType) Config {
	switch t {
	case Timer:
		return TimerConfig{Duration: 300}
	case Checklist:
		return ChecklistConfig{Items: []string{}}
	case Note:
		return NoteConfig{Content: "Add your notes here..."}
	case Temperature:
		return TemperatureConfig{Unit: "celsius", Target: 25}
	case PH:
		return PHConfig{Target: 7.0, Range: PHRange{Min: 6.5, Max: 7.5}}
	case Pattern:
		return PatternConfig{Steps: []string{}, RepeatCount: 1}
	case Measurement:
		return MeasurementConfig{Unit: "ml", Target: 1, Tolerance: 0.1}
	case PCR:
		return PCRConfig{Cycles: 30, Denaturation: 95, Annealing: 55, Extension: 72}
	case Storage:
		return StorageConfig{Temperature: -20, Location: "Storage Location", Duration: "24 hours"}
	case Dilution:
		return DilutionConfig{
			Method:            DilutionByFactor,
			Factor:            10,
			InputValue:        1,
			InputUnit:         "mL",
			OutputUnit:        "mL",
			ConcentrationUnit: "mg/mL",
		}
	default:
		return nil
	}
}

// DecodeConfig decodes raw over the defaults for t, so absent fields keep
// their default values.
func DecodeConfig(t WidgetType, raw []byte) (Config, error) {
	switch t {
	case Timer:
		return decodeInto(DefaultConfig(t).(TimerConfig), raw)
	case Checklist:
		return decodeInto(DefaultConfig(t).(ChecklistConfig), raw)
	case Note:
		return decodeInto(DefaultConfig(t).(NoteConfig), raw)
	case Temperature:
		return decodeInto(DefaultConfig(t).(TemperatureConfig), raw)
	case PH:
		return decodeInto(DefaultConfig(t).(PHConfig), raw)
	case Pattern:
		return decodeInto(DefaultConfig(t).(PatternConfig), raw)
	case Measurement:
		return decodeInto(DefaultConfig(t).(MeasurementConfig), raw)
	case PCR:
		return decodeInto(DefaultConfig(t).(PCRConfig), raw)
	case Storage:
		return decodeInto(DefaultConfig(t).(StorageConfig), raw)
	case Dilution:
		return decodeInto(DefaultConfig(t).(DilutionConfig), raw)
	default:
		return nil, fmt.Errorf("protocol: unknown widget type %q", t)
	}
}

func decodeInto[C Config](cfg C, raw []byte) (Config, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("protocol: decode %s config: %w", cfg.Type(), err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks the struct rules of cfg plus the dilution method
// requirements.
func ValidateConfig(cfg Config) error {
	if cfg == nil {
		return errors.New("protocol: config required")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("protocol: invalid %s config: %s", cfg.Type(), strings.Join(msgs, ", "))
		}
		return fmt.Errorf("protocol: invalid %s config: %w", cfg.Type(), err)
	}
	if d, ok := cfg.(DilutionConfig); ok {
		switch {
		case d.Method == DilutionByFactor && d.Factor <= 0:
			return errors.New("protocol: invalid dilution config: factor must be positive")
		case d.Method == DilutionByConcentration && d.TargetConcentration <= 0:
			return errors.New("protocol: invalid dilution config: targetConcentration must be positive")
		}
	}
	return nil
}

var volumeInLiters = map[string]float64{
	"l":  1,
	"ml": 1e-3,
	"ul": 1e-6,
	"nl": 1e-9,
}

// VolumeUnits are the units ConvertVolume understands.
var VolumeUnits = []string{"L", "mL", "uL", "nL"}

// ConcentrationUnits are the mass per volume units a dilution may use.
var ConcentrationUnits = []string{"g/L", "mg/mL", "ug/uL", "ng/nL"}

// ConvertVolume converts value between L, mL, uL and nL, ignoring case.
func ConvertVolume(value float64, from, to string) (float64, error) {
	f, ok := volumeInLiters[strings.ToLower(from)]
	if !ok {
		return 0, fmt.Errorf("protocol: unknown volume unit %q", from)
	}
	t, ok := volumeInLiters[strings.ToLower(to)]
	if !ok {
		return 0, fmt.Errorf("protocol: unknown volume unit %q", to)
	}
	return value * f / t, nil
}

// InTolerance reports whether measured is within tolerance of the target.
func (c MeasurementConfig) InTolerance(measured float64) bool {
	return math.Abs(measured-c.Target) <= c.Tolerance+1e-9
}

// EffectiveFactor is the dilution factor the config describes. For the
// concentration method the input value is the stock concentration.
func (c DilutionConfig) EffectiveFactor() float64 {
	if c.Method == DilutionByConcentration {
		if c.TargetConcentration <= 0 {
			return 0
		}
		return c.InputValue / c.TargetConcentration
	}
	return c.Factor
}

// Output is the diluted result: a volume in OutputUnit for the factor method
// or a concentration in ConcentrationUnit for the concentration method.
func (c DilutionConfig) Output() (float64, error) {
	factor := c.EffectiveFactor()
	if factor <= 0 {
		return 0, errors.New("protocol: dilution factor must be positive")
	}
	out := c.InputValue / factor
	if c.Method == DilutionByConcentration {
		return out, nil
	}
	if strings.EqualFold(c.InputUnit, c.OutputUnit) {
		return out, nil
	}
	return ConvertVolume(out, c.InputUnit, c.OutputUnit)
}
