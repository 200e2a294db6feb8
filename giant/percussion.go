package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-giant/dsp"
)

// strikeExciter produces the percussion transient: an exponentially decaying
// click plus mallet-colored filtered noise, cross-faded by brightness. It
// burns out within a few milliseconds and injects its output into the modal
// bank while it lasts.
type strikeExciter struct {
	clickAmp   float32
	clickDecay float32
	noiseAmp   float32
	noiseDecay float32

	lpCoeff    float32
	lpState    float32
	brightness float32

	rng noise
}

func (s *strikeExciter) trigger(sampleRate int, velocity, brightness, malletHard, roughness float32) {
	v := clamp01(velocity)
	s.clickAmp = 0.6 + 1.4*v
	s.clickDecay = decayPerSample(0.0015+0.0035*(1.0-malletHard), sampleRate)
	s.noiseAmp = (0.2 + 0.8*v) * (0.3 + 0.7*roughness)
	s.noiseDecay = decayPerSample(0.004+0.010*(1.0-malletHard), sampleRate)

	// Mallet color: hard mallets leave the noise bright, soft felt rolls it off.
	cutoff := 800.0 + 7000.0*malletHard
	s.lpCoeff = math32.Exp(-2.0 * math32.Pi * cutoff / float32(maxInt(sampleRate, 8000)))
	s.lpState = 0
	s.brightness = clamp01(brightness)
	s.rng = newNoise(uint32(7919 + int(velocity*1000)))
}

func (s *strikeExciter) active() bool {
	return s.clickAmp > 1e-5 || s.noiseAmp > 1e-5
}

func (s *strikeExciter) step() float32 {
	if !s.active() {
		return 0
	}
	click := s.clickAmp
	s.clickAmp *= s.clickDecay

	n := s.rng.next() * s.noiseAmp
	s.noiseAmp *= s.noiseDecay
	lp := (1.0-s.lpCoeff)*n + s.lpCoeff*s.lpState
	lp = dsp.FlushDenormals(lp)
	s.lpState = lp

	return s.brightness*click + (1.0-s.brightness)*lp
}

func (s *strikeExciter) reset() {
	s.clickAmp, s.noiseAmp, s.lpState = 0, 0, 0
}

// percussionChain is a struck modal resonator: gong, bell, plate, chime or
// bowl partial tables driving the SIMD-batched bank, with odd/even stereo
// separation.
type percussionChain struct {
	params     *Params
	sampleRate int

	bank    *ModalBank
	exciter strikeExciter

	freqs   [maxModes]float32
	decays  [maxModes]float32
	amps    [maxModes]float32
	injectW [maxModes]float32

	radiator stereoRadiator
	released bool
	prepared bool
}

func newPercussionChain(p *Params) *percussionChain {
	return &percussionChain{params: p, bank: NewModalBank()}
}

func (c *percussionChain) Prepare(sampleRate int) {
	c.sampleRate = sampleRate
	c.radiator.prepare(sampleRate)
	c.prepared = true
}

func (c *percussionChain) Trigger(note, velocity int, g GestureParams, s ScaleParams) {
	if !c.prepared {
		return
	}
	g = g.Clamped()
	s = s.Clamped()

	n := c.params.percNumModes()
	base := midiNoteToFreq(note)
	buildPercussionModes(c.sampleRate, base, c.params.percussionType(), n,
		c.params.PercStructure, s, c.freqs[:n], c.decays[:n], c.amps[:n])
	c.bank.Configure(c.sampleRate, c.freqs[:n], c.decays[:n], c.amps[:n])

	sep := float32(0)
	if c.params.StereoOddEven >= 0.5 {
		sep = 0.5 * c.params.StereoWidth
	}
	c.bank.SetStereoSeparation(sep)

	// Contact area biases the injection spectrum: a small contact area
	// favors upper partials, a broad one the fundamental.
	bias := 1.2 - 2.0*g.ContactArea // positive = brighter
	for i := 0; i < n; i++ {
		order := float32(i + 1)
		c.injectW[i] = math32.Pow(order, bias*0.5) / order
		if !isFinite(c.injectW[i]) {
			c.injectW[i] = 0
		}
	}

	vel := float32(velocity) / 127.0
	c.exciter.trigger(c.sampleRate, vel*(0.4+0.6*g.Force),
		c.params.PercBrightness, c.params.PercMalletHard, g.Roughness)
	c.radiator.set(c.params.StereoWidth, c.params.StereoRotation)
	c.released = false
}

// Release does not silence a struck resonator; it only accelerates the
// natural decay slightly, like resting a palm near the surface.
func (c *percussionChain) Release() {
	if c.released {
		return
	}
	c.released = true
	c.bank.ScaleDecay(0.9995, c.sampleRate)
}

func (c *percussionChain) ProcessSample() (float32, float32) {
	if c.exciter.active() {
		exc := c.exciter.step() * 0.3
		n := c.bank.NumModes()
		for i := 0; i < n; i++ {
			c.bank.Inject(i, exc*c.injectW[i])
		}
	}

	mid, side := c.bank.StepStereo()
	left := dsp.Guard(mid - side)
	right := dsp.Guard(mid + side)
	return c.radiator.rotate(left, right)
}

func (c *percussionChain) Energy() float32 {
	return c.bank.Energy()
}

func (c *percussionChain) Sustaining() bool {
	return c.exciter.active()
}

func (c *percussionChain) UpdateControl(p *Params) {
	c.radiator.set(p.StereoWidth, p.StereoRotation)
	sep := float32(0)
	if p.StereoOddEven >= 0.5 {
		sep = 0.5 * p.StereoWidth
	}
	c.bank.SetStereoSeparation(sep)
}

func (c *percussionChain) EndBlock() {
	c.bank.Sanitize()
}

func (c *percussionChain) Reset() {
	c.bank.Reset()
	c.exciter.reset()
	c.radiator.reset()
	c.released = false
}
