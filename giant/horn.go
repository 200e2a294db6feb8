package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-giant/dsp"
)

// Bore length limits in meters; the delay buffers are sized for the maximum
// at Prepare time so retuning never allocates.
const (
	minBoreMeters = 0.5
	maxBoreMeters = 40.0
)

// lipReed is the horn excitation: a damped mass-spring lip driven by blowing
// pressure through a nonlinear transfer, with asymmetric oscillation
// hysteresis. Oscillation starts only above the pressure threshold and stops
// only below half of it, so the reed cannot chatter at the boundary.
type lipReed struct {
	sampleRate int

	pos float32
	vel float32

	omega     float32 // lip resonance, rad/s
	damping   float32
	threshold float32
	chaosAt   float32
	chaosAmt  float32

	oscillating bool
	rng         noise
}

func (l *lipReed) setup(sampleRate int, freq, tension, roughness, chaosAmount float32) {
	l.sampleRate = sampleRate
	// Lip resonance sits slightly above the bore fundamental; tension pulls
	// it up and raises the blowing threshold.
	l.omega = 2.0 * math32.Pi * freq * (1.02 + 0.25*tension)
	// Damping tracks the resonance so lip Q stays roughly constant across
	// the playing range, looser lips being heavier damped.
	l.damping = l.omega * (0.06 + 0.30*(1.0-tension))

	fNorm := clampFloat32(freq/2000.0, 0, 1)
	l.threshold = 0.08 + 0.30*fNorm + 0.22*tension
	l.chaosAt = l.threshold + 0.35*(1.0-chaosAmount)
	l.chaosAmt = 0.12 * chaosAmount * (0.5 + roughness)
	l.pos = 0
	l.vel = 0
	l.oscillating = false
	l.rng = newNoise(uint32(1 + int(freq)))
}

// step advances the lip one sample under the given mouth pressure and
// returning bore pressure, and returns the excitation sample.
func (l *lipReed) step(pressure, boreFeedback float32) float32 {
	if !l.oscillating {
		if pressure > l.threshold {
			l.oscillating = true
		}
	} else if pressure < 0.5*l.threshold {
		l.oscillating = false
	}

	if !l.oscillating {
		// Lip settles; no energy enters the bore.
		l.pos *= 0.995
		l.vel *= 0.995
		return 0
	}

	// Nonlinear transfer: the open lip lets pressure through, modulated by
	// displacement; chaos noise enters only under hard blowing.
	opening := clampFloat32(1.0+l.pos, 0, 2)
	drive := pressure*opening + 0.85*boreFeedback*opening
	if pressure > l.chaosAt {
		drive += l.chaosAmt * l.rng.next() * (pressure - l.chaosAt)
	}

	dt := 1.0 / float32(l.sampleRate)
	acc := l.omega*l.omega*(0.3*drive-l.pos) - l.damping*l.vel
	l.vel += acc * dt
	l.pos += l.vel * dt
	if !isFinite(l.pos) || !isFinite(l.vel) {
		l.pos, l.vel = 0, 0
	}
	l.pos = clampFloat32(l.pos, -1.5, 1.5)

	// Amplitude ramps in smoothly from zero at the threshold.
	excess := pressure - l.threshold
	ramp := dsp.FastTanh(3.0 * excess)
	return dsp.SoftClip(l.pos * opening * ramp)
}

func (l *lipReed) reset() {
	l.pos, l.vel = 0, 0
	l.oscillating = false
}

// boreShapeFilter colors the excitation before it enters the delay line, one
// distinct one/two-pole flavor per bore geometry.
type boreShapeFilter struct {
	shape   BoreShape
	lpCoeff float32
	lpState float32
	hpState float32
	hpPrev  float32
}

func (f *boreShapeFilter) setup(sampleRate int, shape BoreShape, scale ScaleParams) {
	f.shape = shape
	var cutoff float32
	switch shape {
	case BoreCylindrical:
		cutoff = 2600
	case BoreConical:
		cutoff = 4200
	case BoreFlared:
		cutoff = 6500
	default: // hybrid
		cutoff = 3600
	}
	cutoff /= 0.8 + 0.25*scale.ScaleMeters/4.0
	f.lpCoeff = math32.Exp(-2.0 * math32.Pi * cutoff / float32(maxInt(sampleRate, 8000)))
	f.lpState = 0
	f.hpState = 0
	f.hpPrev = 0
}

func (f *boreShapeFilter) process(x float32) float32 {
	lp := (1.0-f.lpCoeff)*x + f.lpCoeff*f.lpState
	lp = dsp.FlushDenormals(lp)
	f.lpState = lp

	switch f.shape {
	case BoreCylindrical:
		return lp
	case BoreConical:
		// Mild tilt: mostly low with a touch of the original brightness.
		return 0.8*lp + 0.2*x
	case BoreFlared:
		// One-pole highpass lift on top of the lowpass body.
		hp := 0.995*(f.hpState+x-f.hpPrev)
		f.hpPrev = x
		f.hpState = dsp.FlushDenormals(hp)
		return 0.6*lp + 0.4*hp
	default:
		hp := 0.995*(f.hpState+x-f.hpPrev)
		f.hpPrev = x
		f.hpState = dsp.FlushDenormals(hp)
		return 0.7*lp + 0.15*hp + 0.15*x
	}
}

func (f *boreShapeFilter) reset() {
	f.lpState, f.hpState, f.hpPrev = 0, 0, 0
}

// bellStage is the three-stage cascaded radiation network plus the
// frequency-dependent open-end reflection. Higher frequencies reflect less
// and radiate more; all cutoffs scale inversely with effective bell size.
type bellStage struct {
	lp1 *dsp.Biquad
	lp2 *dsp.Biquad
	hp  *dsp.Biquad

	reflCoeff   float32 // broadband reflection magnitude
	reflLPCoeff float32 // one-pole keeping reflection low-frequency
	reflState   float32
	radGain     float32
}

func (b *bellStage) setup(sampleRate int, bellSize float32, scale ScaleParams) {
	// Effective bell size combines the bell knob with instrument scale.
	eff := clampFloat32(bellSize, 0, 1)*0.7 + clampFloat32(scale.ScaleMeters/40.0, 0, 1)*0.3

	// Cutoffs fall as the bell grows. Calibration constants, not physics.
	c1 := 5200.0 / (0.6 + 2.4*eff)
	c2 := 7800.0 / (0.6 + 2.4*eff)
	hpC := 90.0 + 220.0*eff

	sr := float32(sampleRate)
	b.lp1 = dsp.NewLowpass(c1, sr, 0.707)
	b.lp2 = dsp.NewLowpass(c2, sr, 0.707)
	b.hp = dsp.NewHighpass(hpC, sr, 0.707)

	b.reflCoeff = 0.97 - 0.20*eff
	reflCut := 1400.0 / (0.5 + 2.0*eff)
	b.reflLPCoeff = math32.Exp(-2.0 * math32.Pi * reflCut / sr)
	b.radGain = 0.25 + 0.75*eff
}

// reflect returns the wave sent back down the bore from the open end.
func (b *bellStage) reflect(x float32) float32 {
	lp := (1.0-b.reflLPCoeff)*x + b.reflLPCoeff*b.reflState
	lp = dsp.FlushDenormals(lp)
	b.reflState = lp
	// Open-end reflection inverts.
	return -b.reflCoeff * lp
}

// radiate returns the sound leaving the bell: whatever was not reflected,
// shaped by the cascade and the radiation-impedance gain.
func (b *bellStage) radiate(x, reflected float32) float32 {
	out := x + reflected // reflected is negative-going: high content passes
	out = b.lp1.Process(out)
	out = b.lp2.Process(out)
	out = b.hp.Process(out)
	return out * b.radGain
}

func (b *bellStage) reset() {
	if b.lp1 == nil {
		return
	}
	b.lp1.Reset()
	b.lp2.Reset()
	b.hp.Reset()
	b.reflState = 0
}

// hornChain is the full horn voice: breath pressure through the lip reed,
// colored by the mouthpiece cavity and bore shape, into a bidirectional
// waveguide terminated by the bell network. Fundamental follows
// f = c / (2 * boreLength).
type hornChain struct {
	params     *Params
	sampleRate int

	note     int
	gesture  GestureParams
	scale    ScaleParams
	pressure float32 // target blowing pressure from gesture

	reed       lipReed
	mouthpiece dsp.Resonator
	shape      boreShapeFilter
	bell       bellStage
	fwd        *dsp.DelayLine
	bwd        *dsp.DelayLine
	delaySmp   float32

	env      scaleEnvelope
	radiator stereoRadiator

	energyAvg float32
	prepared  bool
}

func newHornChain(p *Params) *hornChain {
	return &hornChain{params: p}
}

func (h *hornChain) Prepare(sampleRate int) {
	h.sampleRate = sampleRate
	capacity := int(maxBoreMeters/speedOfSound*float32(sampleRate)) + 8
	h.fwd = dsp.NewDelayLine(capacity)
	h.bwd = dsp.NewDelayLine(capacity)
	h.radiator.prepare(sampleRate)
	h.prepared = true
}

func (h *hornChain) Trigger(note, velocity int, g GestureParams, s ScaleParams) {
	if !h.prepared {
		return
	}
	h.note = note
	h.gesture = g.Clamped()
	h.scale = s.Clamped()

	f0 := midiNoteToFreq(note)
	length := clampFloat32(speedOfSound/(2.0*f0), minBoreMeters, maxBoreMeters)
	// One-way travel time; the loop sees both lines for the full round trip.
	h.delaySmp = length / speedOfSound * float32(h.sampleRate)
	maxDelay := float32(h.fwd.Size() - 4)
	if h.delaySmp > maxDelay {
		h.delaySmp = maxDelay
	}

	h.reed.setup(h.sampleRate, f0, h.params.HornLipTension, h.gesture.Roughness, h.params.HornChaosAmount)
	h.shape.setup(h.sampleRate, h.params.boreShape(), h.scale)
	h.bell.setup(h.sampleRate, h.params.HornBellSize, h.scale)

	// Mouthpiece cavity: a short resonance above the playing range whose
	// center drops as the cup grows.
	mpFreq := 2400.0 / (0.5 + 1.5*h.params.HornMouthpiece)
	h.mouthpiece = dsp.NewResonator(h.sampleRate, mpFreq, 450, 0.8)

	h.pressure = 0.25 + 0.75*h.gesture.Force
	h.env.trigger(h.sampleRate, h.scale)
	h.radiator.set(h.params.StereoWidth, h.params.StereoRotation)
	h.energyAvg = 0
}

func (h *hornChain) Release() {
	h.env.release()
}

func (h *hornChain) ProcessSample() (float32, float32) {
	env := h.env.next()
	p := h.pressure * env

	// Wave returning from the bore to the mouthpiece.
	back := h.bwd.ReadFractional(h.delaySmp)

	exc := h.reed.step(p, back)
	exc += 0.4 * h.mouthpiece.Process(exc)

	// Mouthpiece end reflects most of the returning wave back in, inverted
	// like the open-open flute end so the fundamental lands at c/(2L).
	boreIn := h.shape.process(exc - 0.97*back)
	h.fwd.Write(dsp.Guard(boreIn))

	fwdOut := h.fwd.ReadFractional(h.delaySmp)
	refl := h.bell.reflect(fwdOut)
	h.bwd.Write(dsp.Guard(refl))

	out := dsp.Guard(h.bell.radiate(fwdOut, refl))

	h.energyAvg = 0.999*h.energyAvg + 0.001*out*out
	return h.radiator.process(out, 0)
}

func (h *hornChain) Energy() float32 {
	return h.energyAvg
}

func (h *hornChain) Sustaining() bool {
	return h.env.active()
}

func (h *hornChain) UpdateControl(p *Params) {
	h.radiator.set(p.StereoWidth, p.StereoRotation)
	// Live breath pressure follows the gesture force controller.
	h.pressure = 0.25 + 0.75*clamp01(p.Gesture.Force)
}

func (h *hornChain) EndBlock() {
	if !isFinite(h.energyAvg) {
		h.energyAvg = 0
	}
}

func (h *hornChain) Reset() {
	if !h.prepared {
		return
	}
	h.fwd.Reset()
	h.bwd.Reset()
	h.reed.reset()
	h.shape.reset()
	h.bell.reset()
	h.mouthpiece.Reset()
	h.radiator.reset()
	h.env.reset()
	h.energyAvg = 0
}
