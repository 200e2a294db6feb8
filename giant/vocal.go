package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-giant/dsp"
)

const numFormants = 4

// Formant center frequencies and bandwidths for the five cardinal vowels.
// The human table is the classic bass singer set; the giant table is the
// same tract scaled to a much longer vocal column. The active table is a
// linear blend of the two as a function of instrument scale.
var vowelFreqHuman = [5][numFormants]float32{
	{600, 1040, 2250, 2450},  // a
	{400, 1620, 2400, 2800},  // e
	{250, 1750, 2600, 3050},  // i
	{400, 750, 2400, 2600},   // o
	{350, 600, 2400, 2675},   // u
}

var vowelBWHuman = [5][numFormants]float32{
	{60, 70, 110, 120},
	{40, 80, 100, 120},
	{60, 90, 100, 120},
	{40, 80, 100, 120},
	{40, 80, 100, 120},
}

var vowelFreqGiant = [5][numFormants]float32{
	{190, 330, 720, 800},
	{130, 520, 770, 900},
	{85, 560, 830, 980},
	{130, 240, 770, 830},
	{110, 195, 770, 860},
}

var vowelBWGiant = [5][numFormants]float32{
	{30, 36, 55, 62},
	{22, 40, 52, 62},
	{30, 45, 52, 62},
	{22, 40, 52, 62},
	{22, 40, 52, 62},
}

// breathEnvelope drives the glottal source: exponential attack to an
// overshoot, decay back to the sustain level, exponential release. All
// rates stretch with instrument scale.
type breathEnvelope struct {
	state     int // 0 idle, 1 attack, 2 decay, 3 sustain, 4 release
	level     float32
	target    float32
	sustain   float32
	attCoeff  float32
	decCoeff  float32
	relCoeff  float32
	overshoot float32
}

func (b *breathEnvelope) trigger(amount float32, s ScaleParams, sr int) {
	b.sustain = amount
	b.overshoot = amount * 1.25
	slow := 0.5 + 1.5*s.TransientSlowing
	attT := 0.015 * s.ScaleMeters * slow
	b.attCoeff = decayPerSample(maxf(attT, 0.001), sr)
	b.decCoeff = decayPerSample(maxf(attT*4, 0.01), sr)
	b.relCoeff = decayPerSample(maxf(attT*8, 0.02), sr)
	b.target = b.overshoot
	b.state = 1
}

func (b *breathEnvelope) release() {
	if b.state != 0 {
		b.state = 4
		b.target = 0
	}
}

func (b *breathEnvelope) next() float32 {
	switch b.state {
	case 0:
		return 0
	case 1:
		b.level += (b.target - b.level) * (1.0 - b.attCoeff) * 4.0
		if b.level >= b.overshoot*0.98 {
			b.state = 2
			b.target = b.sustain
		}
	case 2:
		b.level += (b.target - b.level) * (1.0 - b.decCoeff)
		if b.level <= b.sustain*1.02 {
			b.state = 3
		}
	case 3:
		b.level = b.sustain
	case 4:
		b.level *= b.relCoeff
		if b.level < 1e-4 {
			b.level = 0
			b.state = 0
		}
	}
	return b.level
}

func (b *breathEnvelope) active() bool { return b.state != 0 }

func (b *breathEnvelope) reset() {
	b.state = 0
	b.level = 0
}

// glottalWave evaluates the source waveform at phase [0,1) for a morph
// position in [0,1]: 0 is sawtooth, 0.5 a rectangular pulse, 1 the
// piecewise glottal shape (fast sinusoidal opening, linear closing, flat
// closed phase).
func glottalWave(phase, morph float32) float32 {
	saw := 2.0*phase - 1.0
	var pulse float32 = -1.0
	if phase < 0.4 {
		pulse = 1.0
	}
	var glottal float32
	const openEnd = 0.25
	const closeEnd = 0.65
	switch {
	case phase < openEnd:
		glottal = dsp.FastSin(0.5 * math32.Pi * phase / openEnd)
	case phase < closeEnd:
		glottal = 1.0 - 2.0*(phase-openEnd)/(closeEnd-openEnd)
	default:
		glottal = -1.0
	}
	if morph < 0.5 {
		t := morph * 2.0
		return saw + t*(pulse-saw)
	}
	t := (morph - 0.5) * 2.0
	return pulse + t*(glottal-pulse)
}

type vocalChain struct {
	params     *Params
	sampleRate int

	env   breathEnvelope
	phase float32
	freq  float32
	morph float32

	vibPhase float32
	rnd      noise

	formants   [numFormants]dsp.Resonator
	formFreq   [numFormants]float32
	formBW     [numFormants]float32
	driftPh    [numFormants]float32
	driftRate  [numFormants]float32
	driftCount int

	subPhase2 float32 // octave down
	subPhase3 float32 // fifth down
	chest     dsp.Resonator
	body      *dsp.Biquad

	scale    ScaleParams
	gesture  GestureParams
	radiator stereoRadiator

	energyAvg float32
	prepared  bool
}

func newVocalChain(p *Params) *vocalChain {
	c := &vocalChain{params: p}
	c.rnd = noise{state: 0x9e3779b9}
	return c
}

func (c *vocalChain) Prepare(sampleRate int) {
	c.sampleRate = sampleRate
	c.radiator.prepare(sampleRate)
	c.body = dsp.NewLowpass(4000, float32(sampleRate), 0.707)
	c.prepared = true
}

func (c *vocalChain) Trigger(note, velocity int, g GestureParams, s ScaleParams) {
	if !c.prepared {
		return
	}
	c.gesture = g.Clamped()
	c.scale = s.Clamped()

	c.freq = midiNoteToFreq(note)
	// The morph position tracks force: gentle breath gives a soft saw-like
	// source, hard pressure pushes toward the full glottal shape.
	c.morph = clamp01(0.2 + 0.8*c.gesture.Force)

	vel := clamp01(float32(velocity) / 127.0)
	c.env.trigger(0.3+0.7*vel*c.gesture.Force, c.scale, c.sampleRate)

	for i := range c.formants {
		c.formants[i] = dsp.NewResonator(c.sampleRate, 500, 80, 1.0)
	}
	c.updateFormants()
	for i := range c.driftRate {
		c.driftRate[i] = (0.08 + 0.11*float32(i)) / float32(c.sampleRate)
	}

	chestF := 360.0 / math32.Sqrt(maxf(c.scale.ScaleMeters, 0.5))
	c.chest = dsp.NewResonator(c.sampleRate, chestF, 30, 1.0)
	bodyCut := 6500.0 / (0.8 + 0.4*c.scale.ScaleMeters)
	c.body = dsp.NewLowpass(maxf(bodyCut, 300), float32(c.sampleRate), 0.707)

	c.radiator.set(c.params.StereoWidth, c.params.StereoRotation)
	c.energyAvg = 0
}

func (c *vocalChain) Release() {
	c.env.release()
}

// updateFormants blends the human and giant vowel tables by scale and by
// the fractional vowel position, then retunes the resonators.
func (c *vocalChain) updateFormants() {
	vw := clampFloat32(c.params.VocalVowel, 0, 4)
	v0 := int(vw)
	if v0 > 3 {
		v0 = 3
	}
	frac := vw - float32(v0)
	giant := clamp01((c.scale.ScaleMeters - 1.0) / 19.0)

	for i := 0; i < numFormants; i++ {
		fh := vowelFreqHuman[v0][i] + frac*(vowelFreqHuman[v0+1][i]-vowelFreqHuman[v0][i])
		fg := vowelFreqGiant[v0][i] + frac*(vowelFreqGiant[v0+1][i]-vowelFreqGiant[v0][i])
		bh := vowelBWHuman[v0][i] + frac*(vowelBWHuman[v0+1][i]-vowelBWHuman[v0][i])
		bg := vowelBWGiant[v0][i] + frac*(vowelBWGiant[v0+1][i]-vowelBWGiant[v0][i])
		c.formFreq[i] = fh + giant*(fg-fh)
		c.formBW[i] = bh + giant*(bg-bh)
		c.formants[i].Retune(c.sampleRate, c.formFreq[i], c.formBW[i])
	}
}

func (c *vocalChain) ProcessSample() (float32, float32) {
	pressure := c.env.next()
	if pressure <= 0 && c.energyAvg < 1e-9 {
		return 0, 0
	}

	// Vibrato plus pressure-scaled pitch jitter.
	c.vibPhase += c.params.VocalVibratoRate / float32(c.sampleRate)
	if c.vibPhase >= 1 {
		c.vibPhase -= 1
	}
	vib := dsp.FastSin(2*math32.Pi*c.vibPhase) * c.params.VocalVibratoDepth * 0.03
	jitter := c.rnd.next() * 0.004 * pressure
	f := c.freq * (1.0 + vib + jitter)

	inc := f / float32(c.sampleRate)
	c.phase += inc
	if c.phase >= 1 {
		c.phase -= 1
	}
	src := glottalWave(c.phase, c.morph) * pressure

	// Aspiration noise rides on instantaneous pressure; roughness adds a
	// coarser turbulence component.
	asp := c.rnd.next() * pressure * (0.04 + 0.12*c.gesture.Roughness)
	src += asp

	// Formant stack in parallel, gains falling off with formant index.
	// Drift retuning runs at control rate; per-sample coefficient updates
	// would dominate the cost of the stack itself.
	c.driftCount++
	retune := c.driftCount >= 64
	if retune {
		c.driftCount = 0
	}
	var voiced float32
	for i := 0; i < numFormants; i++ {
		c.driftPh[i] += c.driftRate[i] * 64
		if c.driftPh[i] >= 1 {
			c.driftPh[i] -= 1
		}
		if retune {
			drift := 1.0 + 0.015*dsp.FastSin(2*math32.Pi*c.driftPh[i])
			c.formants[i].Retune(c.sampleRate, c.formFreq[i]*drift, c.formBW[i])
		}
		voiced += c.formants[i].Process(src) / float32(i+1)
	}

	// Subharmonics sit an octave and a fifth below the fundamental.
	c.subPhase2 += inc * 0.5
	if c.subPhase2 >= 1 {
		c.subPhase2 -= 1
	}
	c.subPhase3 += inc / 1.5
	if c.subPhase3 >= 1 {
		c.subPhase3 -= 1
	}
	sub := (dsp.FastSin(2*math32.Pi*c.subPhase2) +
		0.6*dsp.FastSin(2*math32.Pi*c.subPhase3)) * pressure
	out := voiced + c.params.VocalSubLevel*0.4*sub

	chest := c.chest.Process(out)
	out += c.params.VocalChestLevel * 0.5 * chest
	out = c.body.Process(out)
	out = dsp.SoftClip(out)

	c.energyAvg = 0.999*c.energyAvg + 0.001*out*out
	return c.radiator.process(out, 0)
}

func (c *vocalChain) Energy() float32 {
	return c.energyAvg + c.env.level*c.env.level
}

func (c *vocalChain) Sustaining() bool {
	return c.env.active() && c.env.state != 4
}

func (c *vocalChain) UpdateControl(p *Params) {
	c.radiator.set(p.StereoWidth, p.StereoRotation)
	if c.prepared && c.freq > 0 {
		c.updateFormants()
	}
}

func (c *vocalChain) EndBlock() {
	if !isFinite(c.energyAvg) {
		c.energyAvg = 0
	}
}

func (c *vocalChain) Reset() {
	c.env.reset()
	c.phase = 0
	c.vibPhase = 0
	c.subPhase2, c.subPhase3 = 0, 0
	for i := range c.formants {
		c.formants[i].Reset()
		c.driftPh[i] = 0
	}
	c.chest.Reset()
	c.body.Reset()
	c.radiator.reset()
	c.energyAvg = 0
}
