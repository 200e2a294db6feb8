package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-giant/giant"
)

func TestKnobDenormalizeNormalizeInverse(t *testing.T) {
	d := knobDef{Name: "scale.meters", Min: 0.5, Max: 40}
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		real := d.Denormalize(v)
		if real < d.Min || real > d.Max {
			t.Fatalf("Denormalize(%g) = %g escaped range", v, real)
		}
		back := d.Normalize(real)
		if math.Abs(back-v) > 1e-12 {
			t.Fatalf("round trip %g -> %g -> %g", v, real, back)
		}
	}

	// Out-of-range positions clamp.
	if got := d.Denormalize(-3); got != d.Min {
		t.Fatalf("Denormalize(-3) = %g, want %g", got, d.Min)
	}
	if got := d.Denormalize(7); got != d.Max {
		t.Fatalf("Denormalize(7) = %g, want %g", got, d.Max)
	}
}

func TestIntKnobRoundsToSteps(t *testing.T) {
	d := knobDef{Name: "perc.type", Min: 0, Max: 4, IsInt: true}
	for v := 0.0; v <= 1.0; v += 0.05 {
		got := d.Denormalize(v)
		if got != math.Round(got) {
			t.Fatalf("integer knob produced %g at position %g", got, v)
		}
	}
	if d.Denormalize(0.99) != 4 {
		t.Fatal("top of range does not reach the last step")
	}
}

func TestKnobsForInstrumentNamesResolve(t *testing.T) {
	for _, inst := range []giant.InstrumentType{
		giant.InstrumentHorn,
		giant.InstrumentPercussion,
		giant.InstrumentDrum,
		giant.InstrumentVocal,
	} {
		e := giant.NewEngine(inst)
		defs := knobsForInstrument(inst)
		if len(defs) < 8 {
			t.Fatalf("%v: only %d knobs", inst, len(defs))
		}
		for _, d := range defs {
			if !e.HasParameter(d.Name) {
				t.Fatalf("%v: knob %q has no engine parameter", inst, d.Name)
			}
			if d.Max <= d.Min {
				t.Fatalf("%v: knob %q has empty range", inst, d.Name)
			}
		}
	}
}

func TestApplyKnobsAndInitialPositionRoundTrip(t *testing.T) {
	e := giant.NewEngine(giant.InstrumentDrum)
	defs := knobsForInstrument(giant.InstrumentDrum)

	pos := make([]float64, len(defs))
	for i := range pos {
		pos[i] = float64(i%5) / 4.0
	}
	if err := applyKnobs(e, defs, pos); err != nil {
		t.Fatalf("apply: %v", err)
	}

	back := initialPosition(e, defs)
	for i, d := range defs {
		want := d.Normalize(d.Denormalize(pos[i]))
		if math.Abs(back[i]-want) > 1e-6 {
			t.Fatalf("knob %q: position %g read back as %g", d.Name, want, back[i])
		}
	}

	if err := applyKnobs(e, defs, pos[:1]); err == nil {
		t.Fatal("dimension mismatch accepted")
	}
}
