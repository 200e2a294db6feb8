package giant

import (
	"math"
	"testing"
)

func TestGlottalWaveMorphEndpoints(t *testing.T) {
	// morph 0: sawtooth.
	if v := glottalWave(0, 0); math.Abs(float64(v+1)) > 1e-4 {
		t.Fatalf("saw at phase 0 = %g, want -1", v)
	}
	if v := glottalWave(0.5, 0); math.Abs(float64(v)) > 1e-4 {
		t.Fatalf("saw at phase 0.5 = %g, want 0", v)
	}

	// morph 0.5: rectangular pulse.
	if v := glottalWave(0.2, 0.5); v < 0.99 {
		t.Fatalf("pulse open phase = %g, want 1", v)
	}
	if v := glottalWave(0.7, 0.5); v > -0.99 {
		t.Fatalf("pulse closed phase = %g, want -1", v)
	}

	// morph 1: glottal shape peaks at the end of the opening phase and is
	// flat at -1 during closure.
	if v := glottalWave(0.25, 1); v < 0.95 {
		t.Fatalf("glottal open peak = %g, want ~1", v)
	}
	if v := glottalWave(0.8, 1); v > -0.99 {
		t.Fatalf("glottal closed phase = %g, want -1", v)
	}

	// The whole morph square stays bounded.
	for m := float32(0); m <= 1.0; m += 0.1 {
		for ph := float32(0); ph < 1.0; ph += 0.01 {
			if v := glottalWave(ph, m); v > 1.05 || v < -1.05 {
				t.Fatalf("glottalWave(%g, %g) = %g out of range", ph, m, v)
			}
		}
	}
}

func TestBreathEnvelopeOvershootsThenSettles(t *testing.T) {
	const sampleRate = 48000
	var env breathEnvelope
	env.trigger(0.6, defaultTestScale(), sampleRate)

	var peak float32
	settled := false
	for i := 0; i < 10*sampleRate; i++ {
		v := env.next()
		peak = maxf(peak, v)
		if env.state == 3 {
			settled = true
			if math.Abs(float64(v-0.6)) > 0.05 {
				t.Fatalf("sustain level %g, want 0.6", v)
			}
			break
		}
	}
	if !settled {
		t.Fatal("envelope never reached sustain")
	}
	if peak < 0.6*1.1 {
		t.Fatalf("peak %g shows no overshoot above sustain 0.6", peak)
	}

	env.release()
	for i := 0; i < 30*sampleRate && env.active(); i++ {
		env.next()
	}
	if env.active() {
		t.Fatal("envelope still active long after release")
	}
}

func TestVocalFormantShapesSpectrum(t *testing.T) {
	const sampleRate = 48000
	p := NewDefaultParams()
	p.VocalVowel = 0 // "a"
	p.VocalVibratoDepth = 0
	p.VocalSubLevel = 0
	p.VocalChestLevel = 0

	c := newVocalChain(p)
	g := defaultTestGesture()
	g.Roughness = 0
	samples := renderChainMono(t, c, sampleRate, 45, 110, sampleRate, g, defaultTestScale())

	f0 := float64(midiNoteToFreq(45))
	// Harmonic closest to the first formant against one in the trough
	// between the upper formants.
	onHarm := math.Round(float64(c.formFreq[0])/f0) * f0
	offHarm := math.Round(1870.0/f0) * f0

	on := goertzelPower(samples[sampleRate/4:], sampleRate, onHarm)
	off := goertzelPower(samples[sampleRate/4:], sampleRate, offHarm)
	if on <= 4*off {
		t.Fatalf("formant peak not dominant: on=%g off=%g", on, off)
	}
}

func TestVocalSubharmonicLevel(t *testing.T) {
	const sampleRate = 48000
	subPower := func(level float32) float64 {
		p := NewDefaultParams()
		p.VocalVibratoDepth = 0
		p.VocalSubLevel = level
		c := newVocalChain(p)
		samples := renderChainMono(t, c, sampleRate, 57, 110, sampleRate,
			defaultTestGesture(), defaultTestScale())
		half := float64(midiNoteToFreq(57)) * 0.5
		return goertzelPower(samples[sampleRate/4:], sampleRate, half)
	}

	if subPower(1.0) <= subPower(0.0)*2 {
		t.Fatal("sub level does not add energy an octave below the fundamental")
	}
}

func TestVocalLifecycle(t *testing.T) {
	const sampleRate = 48000
	p := NewDefaultParams()
	c := newVocalChain(p)
	c.Prepare(sampleRate)
	c.Trigger(50, 100, defaultTestGesture(), defaultTestScale())

	for i := 0; i < sampleRate; i++ {
		c.ProcessSample()
	}
	if !c.Sustaining() {
		t.Fatal("voice not sustaining while breath is held")
	}

	c.Release()
	if c.Sustaining() {
		t.Fatal("voice still marked sustaining after release")
	}
	for i := 0; i < 60*sampleRate && c.Energy() >= energyEpsilon; i++ {
		c.ProcessSample()
		if (i+1)%128 == 0 {
			c.EndBlock()
		}
	}
	if c.Energy() >= energyEpsilon {
		t.Fatalf("voice never died away, energy %g", c.Energy())
	}
}
