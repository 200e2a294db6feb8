package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// SVF is a trapezoidal-integrator (topology-preserving transform) state
// variable filter after Simper. One instance yields lowpass, bandpass and
// highpass outputs from the same two integrator states, which makes it a good
// membrane-mode building block: the bandpass output rings while the lowpass
// output tracks displacement.
type SVF struct {
	g  float32 // tan(pi * fc/fs), prewarped cutoff
	k  float32 // 1/Q
	a1 float32
	a2 float32
	a3 float32

	ic1eq float32
	ic2eq float32

	low  float32
	band float32
	high float32
}

// NewSVF creates a state variable filter at the given center frequency and Q.
func NewSVF(sampleRate int, freqHz, q float32) *SVF {
	s := &SVF{}
	s.Set(sampleRate, freqHz, q)
	return s
}

// Set recomputes coefficients. Frequency is clamped into (0, 0.499*fs) and Q
// into [1e-4, 1e4] so no parameter combination can divide by zero or produce
// NaN coefficients.
func (s *SVF) Set(sampleRate int, freqHz, q float32) {
	fs := float64(sampleRate)
	if fs <= 0 {
		fs = 48000
	}
	ratio := float64(freqHz) / fs
	if math.IsNaN(ratio) || ratio < 1e-6 {
		ratio = 1e-6
	}
	if ratio > 0.499 {
		ratio = 0.499
	}
	qq := float64(q)
	if math.IsNaN(qq) || qq < 1e-4 {
		qq = 1e-4
	}
	if qq > 1e4 {
		qq = 1e4
	}

	g := math.Tan(math.Pi * ratio)
	k := 1.0 / qq
	denom := 1.0 + g*(g+k)
	if denom == 0 || math.IsNaN(denom) {
		denom = 1e-9
	}
	a1 := 1.0 / denom
	s.g = float32(g)
	s.k = float32(k)
	s.a1 = float32(a1)
	s.a2 = float32(g * a1)
	s.a3 = float32(g * g * a1)
}

// Process advances the filter by one sample. Outputs are read afterwards via
// Low/Band/High.
func (s *SVF) Process(x float32) {
	v3 := x - s.ic2eq
	v1 := s.a1*s.ic1eq + s.a2*v3
	v2 := s.ic2eq + s.a2*s.ic1eq + s.a3*v3
	s.ic1eq = float32(dspcore.FlushDenormals(float64(2*v1 - s.ic1eq)))
	s.ic2eq = float32(dspcore.FlushDenormals(float64(2*v2 - s.ic2eq)))

	if !IsFinite(s.ic1eq) || !IsFinite(s.ic2eq) {
		s.ic1eq, s.ic2eq = 0, 0
		v1, v2 = 0, 0
	}

	s.low = v2
	s.band = v1
	s.high = x - s.k*v1 - v2
}

// Low returns the lowpass output of the last processed sample.
func (s *SVF) Low() float32 { return s.low }

// Band returns the bandpass output of the last processed sample.
func (s *SVF) Band() float32 { return s.band }

// High returns the highpass output of the last processed sample.
func (s *SVF) High() float32 { return s.high }

// Inject adds energy directly into the integrator state, starting a ring
// without routing an impulse through Process.
func (s *SVF) Inject(energy float32) {
	s.ic1eq += energy
}

// Reset clears integrator state.
func (s *SVF) Reset() {
	s.ic1eq, s.ic2eq = 0, 0
	s.low, s.band, s.high = 0, 0, 0
}
