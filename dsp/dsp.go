package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I implementation
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	// Update state
	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewLowpass creates a lowpass biquad filter (RBJ cookbook).
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * safeRatio(cutoff, sampleRate)
	alpha := math.Sin(w0) / (2.0 * safeQ(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// NewHighpass creates a highpass biquad filter (RBJ cookbook).
func NewHighpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * safeRatio(cutoff, sampleRate)
	alpha := math.Sin(w0) / (2.0 * safeQ(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 + cosw0) / 2.0
	b1 := -(1.0 + cosw0)
	b2 := (1.0 + cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// safeRatio clamps cutoff/sampleRate into (0, 0.499] and guards bad inputs.
func safeRatio(cutoff, sampleRate float32) float64 {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	r := float64(cutoff) / float64(sampleRate)
	if math.IsNaN(r) || r < 1e-6 {
		r = 1e-6
	}
	if r > 0.499 {
		r = 0.499
	}
	return r
}

func safeQ(q float32) float64 {
	if q < 1e-4 || math.IsNaN(float64(q)) {
		return 1e-4
	}
	return float64(q)
}

// Resonator is a two-pole resonant bandpass used for modal partials and
// formant-style peaks.
type Resonator struct {
	a1   float32
	a2   float32
	b0   float32
	y1   float32
	y2   float32
	gain float32
}

// NewResonator creates a resonator at centerHz with the given bandwidth.
// Every intermediate is guarded: bad center frequencies and bandwidths are
// clamped rather than propagated.
func NewResonator(sampleRate int, centerHz, bandwidthHz, gain float32) Resonator {
	fs := float64(sampleRate)
	f0 := float64(centerHz)
	bw := float64(bandwidthHz)
	if fs <= 0 {
		fs = 48000
	}
	if math.IsNaN(f0) || f0 < 5 {
		f0 = 5
	}
	if f0 > fs*0.49 {
		f0 = fs * 0.49
	}
	if math.IsNaN(bw) || bw < 10 {
		bw = 10
	}
	r := math.Exp(-math.Pi * bw / fs)
	w0 := 2.0 * math.Pi * f0 / fs
	a1 := float32(2.0 * r * math.Cos(w0))
	a2 := float32(-(r * r))
	b0 := float32(1.0 - r)
	return Resonator{a1: a1, a2: a2, b0: b0, gain: gain}
}

// Process advances the resonator by one sample.
func (r *Resonator) Process(x float32) float32 {
	y := r.b0*x + r.a1*r.y1 + r.a2*r.y2
	y = float32(dspcore.FlushDenormals(float64(y)))
	if !IsFinite(y) {
		y = 0
		r.y1, r.y2 = 0, 0
	}
	r.y2 = r.y1
	r.y1 = y
	return y * r.gain
}

// Retune recomputes the coefficients for a new center and bandwidth while
// preserving the filter state, so slow modulation does not click.
func (r *Resonator) Retune(sampleRate int, centerHz, bandwidthHz float32) {
	next := NewResonator(sampleRate, centerHz, bandwidthHz, r.gain)
	r.a1, r.a2, r.b0 = next.a1, next.a2, next.b0
}

// Reset clears the resonator state.
func (r *Resonator) Reset() {
	r.y1, r.y2 = 0, 0
}

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	if size < 2 {
		size = 2
	}
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Size returns the delay line capacity in samples.
func (d *DelayLine) Size() int {
	return d.size
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read reads a sample from the delay line at the given delay (in samples)
func (d *DelayLine) Read(delay int) float32 {
	if delay < 0 {
		delay = 0
	}
	if delay >= d.size {
		delay = d.size - 1
	}
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// ReadFractional reads with fractional delay using linear interpolation
func (d *DelayLine) ReadFractional(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)

	sample1 := d.Read(intDelay)
	sample2 := d.Read(intDelay + 1)

	return sample1 + frac*(sample2-sample1)
}

// Tap adds a sample into the buffer at an offset ahead of the write position.
func (d *DelayLine) Tap(offset int, sample float32) {
	pos := (d.writePos + offset%d.size + d.size) % d.size
	d.buffer[pos] += sample
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// Guard replaces NaN/Inf with silence. Stage boundaries call this so a
// single unstable filter cannot poison the rest of the chain.
func Guard(x float32) float32 {
	if !IsFinite(x) {
		return 0
	}
	return x
}

// FlushDenormals converts denormal numbers to zero to avoid performance issues
func FlushDenormals(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}
