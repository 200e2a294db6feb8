package giant

import (
	"github.com/chewxy/math32"
)

// maxModes bounds the modal bank size; buffers are allocated once for the
// maximum and sliced down, so reconfiguring the mode count never allocates.
const maxModes = 64

// maxModeDecay keeps every mode strictly below unity so the bank can never
// diverge, no matter what the size/decay formula produces.
const maxModeDecay = 0.999999

// ModalBank is a batch of independent two-pole resonators laid out
// structure-of-arrays so the per-sample summation, the engine's hottest loop,
// can run through SIMD element-wise kernels. Each mode carries its own filter
// memory and nothing else, so there is no loop-carried dependency across
// modes and the batched and scalar paths are numerically interchangeable.
type ModalBank struct {
	n int

	// coefficients: y[i] = a1[i]*y1[i] + a2[i]*y2[i], output = dot(y, amp)
	a1      []float32
	a2      []float32
	amp     []float32
	ampSide []float32 // odd/even mid-side weights for stereo radiation

	// per-mode filter memory
	y1 []float32
	y2 []float32

	// scratch for the batched kernel
	tmpA []float32
	tmpB []float32

	// per-mode metadata kept for injection weighting
	freqs  []float32
	decays []float32

	sideSep float32
}

// NewModalBank allocates a bank with capacity for maxModes modes.
func NewModalBank() *ModalBank {
	return &ModalBank{
		a1:      make([]float32, maxModes),
		a2:      make([]float32, maxModes),
		amp:     make([]float32, maxModes),
		ampSide: make([]float32, maxModes),
		y1:      make([]float32, maxModes),
		y2:      make([]float32, maxModes),
		tmpA:    make([]float32, maxModes),
		tmpB:    make([]float32, maxModes),
		freqs:   make([]float32, maxModes),
		decays:  make([]float32, maxModes),
	}
}

// Configure sets up n modes from parallel frequency/decay/amplitude slices.
// Frequencies at or above 95% of Nyquist are silenced, decay coefficients are
// clamped strictly below 1.0, and non-finite inputs are replaced with inert
// values. Existing filter memory is cleared.
func (b *ModalBank) Configure(sampleRate int, freqs, decays, amps []float32) {
	n := len(freqs)
	if n > maxModes {
		n = maxModes
	}
	if len(decays) < n {
		n = len(decays)
	}
	if len(amps) < n {
		n = len(amps)
	}
	b.n = n

	nyquist := 0.5 * float32(sampleRate)
	for i := 0; i < n; i++ {
		f := freqs[i]
		r := decays[i]
		a := amps[i]
		if !isFinite(f) || !isFinite(r) || !isFinite(a) {
			f, r, a = 0, 0, 0
		}
		r = clampFloat32(r, 0, maxModeDecay)
		if f <= 0 || f >= nyquist*0.95 {
			a = 0
		}

		w := 2.0 * math32.Pi * f / float32(sampleRate)
		b.a1[i] = 2.0 * r * math32.Cos(w)
		b.a2[i] = -(r * r)
		b.amp[i] = a
		b.freqs[i] = f
		b.decays[i] = r
		b.y1[i] = 0
		b.y2[i] = 0
	}
	b.refreshSideWeights()
}

// SetStereoSeparation sets the odd/even mid-side weight. Odd-order modes lean
// one way, even-order modes the other; sep 0 collapses to mono.
func (b *ModalBank) SetStereoSeparation(sep float32) {
	b.sideSep = clampFloat32(sep, 0, 1)
	b.refreshSideWeights()
}

func (b *ModalBank) refreshSideWeights() {
	for i := 0; i < b.n; i++ {
		sign := float32(1)
		if (i+1)%2 == 0 {
			sign = -1
		}
		b.ampSide[i] = b.amp[i] * b.sideSep * sign
	}
}

// NumModes returns the configured mode count.
func (b *ModalBank) NumModes() int {
	return b.n
}

// ModeFreq returns the configured frequency of mode i.
func (b *ModalBank) ModeFreq(i int) float32 {
	if i < 0 || i >= b.n {
		return 0
	}
	return b.freqs[i]
}

// Inject adds strike energy directly into mode i's filter memory.
func (b *ModalBank) Inject(i int, energy float32) {
	if i < 0 || i >= b.n || !isFinite(energy) {
		return
	}
	b.y1[i] += energy
}

// stepScalar is the exact reference kernel: one resonator update per mode,
// summed into the output. The batched kernel must match this within 1e-5.
func (b *ModalBank) stepScalar() float32 {
	var out float32
	for i := 0; i < b.n; i++ {
		y := b.a1[i]*b.y1[i] + b.a2[i]*b.y2[i]
		b.y2[i] = b.y1[i]
		b.y1[i] = y
		out += y * b.amp[i]
	}
	return out
}

// stepStereoScalar is the scalar reference for the mid/side kernel.
func (b *ModalBank) stepStereoScalar() (mid, side float32) {
	for i := 0; i < b.n; i++ {
		y := b.a1[i]*b.y1[i] + b.a2[i]*b.y2[i]
		b.y2[i] = b.y1[i]
		b.y1[i] = y
		mid += y * b.amp[i]
		side += y * b.ampSide[i]
	}
	return mid, side
}

// Energy returns the summed squared filter memory, used for voice
// deactivation and lowest-energy stealing.
func (b *ModalBank) Energy() float32 {
	var e float32
	for i := 0; i < b.n; i++ {
		e += b.y1[i]*b.y1[i] + b.y2[i]*b.y2[i]
	}
	return e
}

// Sanitize flushes denormal mode memory and zeroes any mode that has gone
// non-finite. Called once per block, outside the hot loop.
func (b *ModalBank) Sanitize() {
	const eps = 1e-30
	for i := 0; i < b.n; i++ {
		if !isFinite(b.y1[i]) || !isFinite(b.y2[i]) {
			b.y1[i], b.y2[i] = 0, 0
			continue
		}
		if b.y1[i] > -eps && b.y1[i] < eps {
			b.y1[i] = 0
		}
		if b.y2[i] > -eps && b.y2[i] < eps {
			b.y2[i] = 0
		}
	}
}

// ScaleDecay multiplies every mode's decay coefficient by k, re-deriving the
// filter coefficients in place without touching filter memory. Note-off decay
// acceleration uses this.
func (b *ModalBank) ScaleDecay(k float32, sampleRate int) {
	if !isFinite(k) || k < 0 {
		return
	}
	for i := 0; i < b.n; i++ {
		r := clampFloat32(b.decays[i]*k, 0, maxModeDecay)
		b.decays[i] = r
		w := 2.0 * math32.Pi * b.freqs[i] / float32(sampleRate)
		b.a1[i] = 2.0 * r * math32.Cos(w)
		b.a2[i] = -(r * r)
	}
}

// Reset clears all filter memory.
func (b *ModalBank) Reset() {
	for i := range b.y1 {
		b.y1[i] = 0
		b.y2[i] = 0
	}
}
