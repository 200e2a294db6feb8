package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-giant/giant"
)

// knobDef maps one normalized optimizer dimension onto an engine parameter.
// The optimizer works in [0,1]; Denormalize maps into the parameter's range.
type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

func (d knobDef) Denormalize(v float64) float64 {
	v = clamp(v, 0, 1)
	out := d.Min + v*(d.Max-d.Min)
	if d.IsInt {
		out = math.Round(out)
	}
	return out
}

func (d knobDef) Normalize(v float64) float64 {
	if d.Max <= d.Min {
		return 0
	}
	return clamp((v-d.Min)/(d.Max-d.Min), 0, 1)
}

// knobsForInstrument returns the tuned dimensions for one family: the shared
// scale and gesture macros plus the family's own controls. Structural knobs
// like the stereo field stay out of the objective.
func knobsForInstrument(inst giant.InstrumentType) []knobDef {
	defs := []knobDef{
		{Name: "scale.meters", Min: 0.5, Max: 40.0},
		{Name: "scale.mass_bias", Min: 0, Max: 1},
		{Name: "scale.air_loss", Min: 0, Max: 1},
		{Name: "scale.transient_slowing", Min: 0, Max: 1},
		{Name: "gesture.force", Min: 0, Max: 1},
		{Name: "gesture.contact_area", Min: 0, Max: 1},
		{Name: "output.gain", Min: 0.1, Max: 3.0},
	}
	switch inst {
	case giant.InstrumentHorn:
		defs = append(defs,
			knobDef{Name: "horn.bore_shape", Min: 0, Max: 3, IsInt: true},
			knobDef{Name: "horn.bell_size", Min: 0, Max: 1},
			knobDef{Name: "horn.lip_tension", Min: 0, Max: 1},
			knobDef{Name: "horn.mouthpiece", Min: 0, Max: 1},
			knobDef{Name: "horn.chaos", Min: 0, Max: 1},
		)
	case giant.InstrumentPercussion:
		defs = append(defs,
			knobDef{Name: "perc.type", Min: 0, Max: 4, IsInt: true},
			knobDef{Name: "perc.num_modes", Min: 4, Max: 64, IsInt: true},
			knobDef{Name: "perc.structure", Min: 0, Max: 1},
			knobDef{Name: "perc.brightness", Min: 0, Max: 1},
			knobDef{Name: "perc.mallet_hardness", Min: 0, Max: 1},
		)
	case giant.InstrumentDrum:
		defs = append(defs,
			knobDef{Name: "drum.shell_depth", Min: 0, Max: 1},
			knobDef{Name: "drum.cavity_tune", Min: 0, Max: 1},
			knobDef{Name: "drum.membrane_tension", Min: 0, Max: 1},
			knobDef{Name: "drum.room_size", Min: 0, Max: 1},
		)
	case giant.InstrumentVocal:
		defs = append(defs,
			knobDef{Name: "vocal.vowel", Min: 0, Max: 4},
			knobDef{Name: "vocal.vibrato_rate", Min: 0, Max: 8},
			knobDef{Name: "vocal.vibrato_depth", Min: 0, Max: 1},
			knobDef{Name: "vocal.sub_level", Min: 0, Max: 1},
			knobDef{Name: "vocal.chest_level", Min: 0, Max: 1},
		)
	}
	return defs
}

// applyKnobs pushes a normalized position onto the engine.
func applyKnobs(e *giant.Engine, defs []knobDef, pos []float64) error {
	if len(pos) != len(defs) {
		return fmt.Errorf("position has %d dims, want %d", len(pos), len(defs))
	}
	for i, d := range defs {
		if !e.HasParameter(d.Name) {
			return fmt.Errorf("knob %q is not an engine parameter", d.Name)
		}
		e.SetParameter(d.Name, float32(d.Denormalize(pos[i])))
	}
	return nil
}

// initialPosition normalizes the engine's current parameter values, so an
// applied preset seeds the search.
func initialPosition(e *giant.Engine, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		if !e.HasParameter(d.Name) {
			pos[i] = 0.5
			continue
		}
		pos[i] = d.Normalize(float64(e.GetParameter(d.Name)))
	}
	return pos
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
