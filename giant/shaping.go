package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-giant/dsp"
)

// stereoRadiator pans frequency content by register: low content stays near
// mono, high content spreads left/right by width, optionally rotated with a
// constant-power pan law.
type stereoRadiator struct {
	lpCoeff  float32
	lpState  float32
	width    float32
	rotation float32

	cosRot float32
	sinRot float32
}

func (s *stereoRadiator) prepare(sampleRate int) {
	// Split point around 600 Hz: below stays centered.
	cutoff := float32(600.0)
	s.lpCoeff = math32.Exp(-2.0 * math32.Pi * cutoff / float32(maxInt(sampleRate, 8000)))
	s.lpState = 0
	s.setRotation(s.rotation)
}

func (s *stereoRadiator) set(width, rotation float32) {
	s.width = clamp01(width)
	s.setRotation(clampFloat32(rotation, -1, 1))
}

func (s *stereoRadiator) setRotation(rot float32) {
	s.rotation = rot
	angle := rot * math32.Pi / 4
	s.cosRot = math32.Cos(angle)
	s.sinRot = math32.Sin(angle)
}

// process splits x into low/high bands and spreads the high band as side
// signal. An explicit side input (odd/even mode separation) is added on top.
func (s *stereoRadiator) process(x, extraSide float32) (left, right float32) {
	low := (1.0-s.lpCoeff)*x + s.lpCoeff*s.lpState
	low = dsp.FlushDenormals(low)
	s.lpState = low
	high := x - low

	mid := low + high
	side := high*s.width*0.5 + extraSide

	left = mid - side
	right = mid + side

	// Constant-power rotation of the stereo field.
	if s.rotation != 0 {
		l := left*s.cosRot - right*s.sinRot
		r := left*s.sinRot + right*s.cosRot
		left, right = l, r
	}
	return left, right
}

// rotate applies only the constant-power field rotation, for chains that
// derive their side signal elsewhere (odd/even modal separation).
func (s *stereoRadiator) rotate(left, right float32) (float32, float32) {
	if s.rotation == 0 {
		return left, right
	}
	l := left*s.cosRot - right*s.sinRot
	r := left*s.sinRot + right*s.cosRot
	return l, r
}

func (s *stereoRadiator) reset() {
	s.lpState = 0
}

// roomCoupler mixes one short early reflection and four parallel feedback
// delay taps with the dry signal. Tap lengths are prime-ish and decorrelate
// quickly; feedback and gain fall off per tap.
type roomCoupler struct {
	early     *dsp.DelayLine
	taps      [4]*dsp.DelayLine
	tapDelay  [4]int
	tapFB     [4]float32
	tapGain   [4]float32
	earlyTime int
	amount    float32
}

// Base tap lengths in samples at 48 kHz, scaled by sample rate and room size.
var roomTapBase = [4]int{1031, 1327, 1523, 1871}

func (r *roomCoupler) prepare(sampleRate int) {
	scale := float32(sampleRate) / 48000.0
	r.earlyTime = maxInt(int(479*scale), 1)
	r.early = dsp.NewDelayLine(r.earlyTime + 2)
	for i := range r.taps {
		d := maxInt(int(float32(roomTapBase[i])*scale), 2)
		r.tapDelay[i] = d
		r.taps[i] = dsp.NewDelayLine(d + 2)
		r.tapFB[i] = 0.62 - 0.08*float32(i)
		r.tapGain[i] = 0.30 - 0.05*float32(i)
	}
}

func (r *roomCoupler) setAmount(roomSize float32) {
	r.amount = clamp01(roomSize)
}

func (r *roomCoupler) process(x float32) float32 {
	if r.amount <= 0 {
		return x
	}
	er := r.early.Read(r.earlyTime)
	r.early.Write(x)

	var wet float32
	for i := range r.taps {
		t := r.taps[i].Read(r.tapDelay[i])
		r.taps[i].Write(dsp.FlushDenormals(x + t*r.tapFB[i]))
		wet += t * r.tapGain[i]
	}
	wet += er * 0.5
	return x + r.amount*dsp.Guard(wet)
}

func (r *roomCoupler) reset() {
	if r.early != nil {
		r.early.Reset()
	}
	for i := range r.taps {
		if r.taps[i] != nil {
			r.taps[i].Reset()
		}
	}
}

// drumSaturator is the drum family's nonlinear loss stage: cubic soft clip
// with level- and velocity-dependent dynamic damping and a mass-dependent
// loss factor.
type drumSaturator struct {
	envelope  float32
	envCoeff  float32
	velocity  float32
	massLoss  float32
	dampDepth float32
}

func (d *drumSaturator) prepare(sampleRate int) {
	// ~8 ms envelope follower.
	d.envCoeff = math32.Exp(-1.0 / (0.008 * float32(maxInt(sampleRate, 8000))))
}

func (d *drumSaturator) trigger(velocity float32, scale ScaleParams) {
	d.velocity = clamp01(velocity)
	d.massLoss = 1.0 - 0.12*scale.MassBias
	d.dampDepth = 0.25 + 0.35*d.velocity
}

func (d *drumSaturator) process(x float32) float32 {
	a := x
	if a < 0 {
		a = -a
	}
	d.envelope = d.envCoeff*d.envelope + (1.0-d.envCoeff)*a
	d.envelope = dsp.FlushDenormals(d.envelope)

	// Louder signal is damped harder; heavy shells lose a bit everywhere.
	damp := 1.0 - d.dampDepth*minf(d.envelope, 1.0)
	return dsp.SoftClip(x*damp) * d.massLoss
}

func (d *drumSaturator) reset() {
	d.envelope = 0
}

// scaleEnvelope is the explicit attack/release envelope used by horns and
// voice. Attack and release times grow with instrument scale and the
// transient-slowing macro.
type scaleEnvelope struct {
	value        float32
	attackCoeff  float32
	releaseCoeff float32
	releasing    bool
}

// releaseFloor is the envelope level below which a released voice counts as
// finished.
const releaseFloor = 1e-4

func (e *scaleEnvelope) trigger(sampleRate int, scale ScaleParams) {
	// A 1 m instrument speaks in ~8 ms; a 40 m instrument takes ~1 s.
	sizeT := 0.008 * scale.ScaleMeters * (0.5 + 1.5*scale.TransientSlowing)
	relT := sizeT * 3.0
	e.attackCoeff = decayPerSample(maxf(sizeT, 0.002), sampleRate)
	e.releaseCoeff = decayPerSample(maxf(relT, 0.01), sampleRate)
	e.releasing = false
	if e.value < 0 || !isFinite(e.value) {
		e.value = 0
	}
}

func (e *scaleEnvelope) release() {
	e.releasing = true
}

func (e *scaleEnvelope) next() float32 {
	if e.releasing {
		e.value *= e.releaseCoeff
	} else {
		e.value = 1.0 + (e.value-1.0)*e.attackCoeff
	}
	e.value = dsp.FlushDenormals(e.value)
	return e.value
}

func (e *scaleEnvelope) active() bool {
	return !e.releasing || e.value > releaseFloor
}

func (e *scaleEnvelope) reset() {
	e.value = 0
	e.releasing = false
}
