package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-giant/dsp"
)

const numMembraneModes = 6

// drumChain models a struck membrane bidirectionally coupled to its shell and
// air cavity. The membrane is a bank of state-variable modes at circular-
// membrane eigenvalue ratios; the shell and cavity form a mass-spring-damper
// pair with Helmholtz-style behavior. Membrane energy drives the shell, shell
// displacement drives cavity pressure, and cavity pressure feeds back into
// the membrane — the loop that produces the characteristic pitch glide during
// decay. The two directions must stay coupled; splitting them into one-way
// filters loses the glide.
type drumChain struct {
	params     *Params
	sampleRate int

	modes    [numMembraneModes]*dsp.SVF
	modeFreq [numMembraneModes]float32
	modeQ    [numMembraneModes]float32
	modeGain [numMembraneModes]float32

	// shell displacement/velocity and cavity pressure/flow
	shellPos float32
	shellVel float32
	cavP     float32
	cavV     float32

	shellOmega float32
	shellDamp  float32
	cavOmega   float32
	cavDamp    float32

	membraneToShell float32
	shellToCav      float32
	cavToMembrane   float32
	cavToShell      float32

	sat      drumSaturator
	room     roomCoupler
	radiator stereoRadiator

	energyAvg float32
	released  bool
	prepared  bool
}

func newDrumChain(p *Params) *drumChain {
	c := &drumChain{params: p}
	for i := range c.modes {
		c.modes[i] = dsp.NewSVF(48000, 100, 10)
	}
	return c
}

func (c *drumChain) Prepare(sampleRate int) {
	c.sampleRate = sampleRate
	c.sat.prepare(sampleRate)
	c.room.prepare(sampleRate)
	c.radiator.prepare(sampleRate)
	c.prepared = true
}

func (c *drumChain) Trigger(note, velocity int, g GestureParams, s ScaleParams) {
	if !c.prepared {
		return
	}
	g = g.Clamped()
	s = s.Clamped()

	f0 := midiNoteToFreq(note) * (0.7 + 0.6*c.params.DrumMembraneTense)
	nyquist := 0.45 * float32(c.sampleRate)

	vel := clamp01(float32(velocity) / 127.0)
	strike := vel * (0.4 + 0.6*g.Force)

	for i := 0; i < numMembraneModes; i++ {
		f := f0 * membraneRatios[i]
		if f > nyquist {
			f = nyquist
		}
		q := membraneQ[i] * (0.6 + 0.8*s.ScaleMeters/10.0)
		c.modeFreq[i] = f
		c.modeQ[i] = q
		c.modeGain[i] = 1.0 / float32(i+1)
		c.modes[i].Set(c.sampleRate, f, q)
		c.modes[i].Reset()
		// Strike energy lands directly in the mode filters, inversely
		// weighted by mode index; contact area shifts the balance.
		w := c.modeGain[i] * (1.0 + (0.5-g.ContactArea)*0.6*float32(i))
		c.modes[i].Inject(strike * maxf(w, 0))
	}

	// Shell and cavity tuning. Empirical: the cavity sits well below the
	// membrane fundamental, the shell in between.
	dt := 1.0 / float32(c.sampleRate)
	shellF := f0 * (0.45 + 0.35*c.params.DrumShellDepth)
	cavF := f0 * (0.18 + 0.30*c.params.DrumCavityTune)
	c.shellOmega = 2.0 * math32.Pi * shellF
	c.cavOmega = 2.0 * math32.Pi * cavF
	c.shellDamp = 14.0 + 30.0*s.AirLoss
	c.cavDamp = 8.0 + 20.0*s.AirLoss

	c.membraneToShell = 0.9 * c.shellOmega * dt
	c.shellToCav = 0.8 * c.cavOmega * dt
	c.cavToMembrane = 0.04 * (0.5 + c.params.DrumCavityTune)
	c.cavToShell = 0.3 * c.cavOmega * dt

	c.shellPos, c.shellVel = 0, 0
	c.cavP, c.cavV = 0, 0

	c.sat.trigger(strike, s)
	c.room.setAmount(c.params.DrumRoomSize)
	c.radiator.set(c.params.StereoWidth, c.params.StereoRotation)
	c.released = false
	c.energyAvg = 0
}

// Release only accelerates decay: the membrane modes get their Q pulled
// down, the ring shortens, silence is never forced.
func (c *drumChain) Release() {
	if c.released {
		return
	}
	c.released = true
	for i := 0; i < numMembraneModes; i++ {
		c.modeQ[i] *= 0.55
		c.modes[i].Set(c.sampleRate, c.modeFreq[i], c.modeQ[i])
	}
}

func (c *drumChain) ProcessSample() (float32, float32) {
	dt := 1.0 / float32(c.sampleRate)

	// Cavity pressure feeds back into every membrane mode.
	fb := c.cavToMembrane * c.cavP

	var membrane float32
	for i := 0; i < numMembraneModes; i++ {
		c.modes[i].Process(fb * c.modeGain[i])
		membrane += c.modes[i].Band() * c.modeGain[i]
	}
	membrane = dsp.Guard(membrane)

	// Shell: driven by membrane energy plus cavity feedback. Explicit Euler
	// at the audio rate is stable here because both oscillators sit far
	// below Nyquist and are well damped.
	shellAcc := -c.shellOmega*c.shellOmega*c.shellPos*dt -
		c.shellDamp*c.shellVel +
		c.membraneToShell*membrane + c.cavToShell*c.cavP
	c.shellVel += shellAcc * dt
	c.shellPos += c.shellVel

	// Cavity: driven by shell displacement.
	cavAcc := -c.cavOmega*c.cavOmega*c.cavP*dt -
		c.cavDamp*c.cavV +
		c.shellToCav*c.shellPos
	c.cavV += cavAcc * dt
	c.cavP += c.cavV

	if !isFinite(c.shellPos) || !isFinite(c.cavP) {
		c.shellPos, c.shellVel, c.cavP, c.cavV = 0, 0, 0, 0
	}
	c.shellPos = clampFloat32(c.shellPos, -10, 10)
	c.cavP = clampFloat32(c.cavP, -10, 10)

	out := membrane + 0.5*c.shellPos + 0.25*c.cavP
	out = c.sat.process(out)
	out = c.room.process(out)
	out = dsp.Guard(out)

	c.energyAvg = 0.999*c.energyAvg + 0.001*out*out
	return c.radiator.process(out, 0)
}

func (c *drumChain) Energy() float32 {
	var e float32
	for i := 0; i < numMembraneModes; i++ {
		b := c.modes[i].Band()
		e += b * b
	}
	return e + c.shellPos*c.shellPos + c.cavP*c.cavP + c.energyAvg
}

func (c *drumChain) Sustaining() bool {
	return false
}

func (c *drumChain) UpdateControl(p *Params) {
	c.room.setAmount(p.DrumRoomSize)
	c.radiator.set(p.StereoWidth, p.StereoRotation)
}

func (c *drumChain) EndBlock() {
	if !isFinite(c.energyAvg) {
		c.energyAvg = 0
	}
}

func (c *drumChain) Reset() {
	for i := range c.modes {
		c.modes[i].Reset()
	}
	c.shellPos, c.shellVel, c.cavP, c.cavV = 0, 0, 0, 0
	c.sat.reset()
	c.room.reset()
	c.radiator.reset()
	c.energyAvg = 0
	c.released = false
}
