package giant

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// speedOfSound is the propagation speed used for all bore/room length
// derivations, in meters per second.
const speedOfSound = 343.0

// midiNoteToFreq converts MIDI note number to frequency in Hz.
func midiNoteToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func centsToRatio(cents float32) float32 {
	return pow2Approx(cents / 1200.0)
}

// decayPerSample maps a time constant in seconds to a per-sample multiplier.
func decayPerSample(seconds float32, sampleRate int) float32 {
	if seconds <= 1e-5 {
		return 0
	}
	return approx.FastExp(-1.0 / (seconds * float32(sampleRate)))
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampFloat32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// noise is a small deterministic xorshift generator. Render paths must not
// touch math/rand's locked global state.
type noise struct {
	state uint32
}

func newNoise(seed uint32) noise {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return noise{state: seed}
}

// next returns a uniform value in (-1, 1).
func (n *noise) next() float32 {
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	return float32(int32(n.state)) / (float32(math.MaxInt32) + 1)
}
