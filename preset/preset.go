// Package preset loads and saves engine parameter sets. Two formats are
// supported: a flat key=value text format for quick editing and diffing, and
// YAML for presets with metadata. The format is chosen by file extension.
package preset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-giant/giant"
)

// Preset is one named parameter set for a single instrument family.
// Params keys are the engine's dotted parameter names; keys the engine does
// not know are skipped at apply time, so presets stay forward-readable.
type Preset struct {
	Name       string             `yaml:"name"`
	Instrument string             `yaml:"instrument"`
	Params     map[string]float32 `yaml:"params"`

	// Skipped counts malformed lines the text parser dropped.
	Skipped int `yaml:"-"`
}

// Load reads a preset file, picking the format by extension: .yaml/.yml are
// parsed as YAML, anything else as flat text.
func Load(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	default:
		return ParseText(b)
	}
}

// Save writes a preset file, picking the format by extension like Load.
func Save(path string, p *Preset) error {
	var b []byte
	var err error
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		b, err = MarshalYAML(p)
	default:
		b = MarshalText(p)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ParseYAML decodes a YAML preset.
func ParseYAML(b []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if p.Params == nil {
		p.Params = make(map[string]float32)
	}
	return &p, nil
}

// MarshalYAML encodes a preset as YAML.
func MarshalYAML(p *Preset) ([]byte, error) {
	return yaml.Marshal(p)
}

// Instrument resolves the preset's instrument name, defaulting to percussion
// when the field is empty.
func (p *Preset) InstrumentType() (giant.InstrumentType, error) {
	if p.Instrument == "" {
		return giant.InstrumentPercussion, nil
	}
	return giant.ParseInstrument(p.Instrument)
}

// Apply pushes every parameter of the preset onto the engine. Parameter
// names the engine does not know are skipped; the skip count is returned so
// callers can log it.
func Apply(e *giant.Engine, p *Preset) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("nil preset")
	}
	return e.Apply(p.Params), nil
}

// FromEngine snapshots the engine's current parameters into a preset.
func FromEngine(e *giant.Engine, name string) *Preset {
	return &Preset{
		Name:       name,
		Instrument: e.Instrument().String(),
		Params:     e.Snapshot(),
	}
}
