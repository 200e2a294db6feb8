package giant

import (
	"math"
	"testing"
)

// renderChainMono triggers a chain and renders n mono samples.
func renderChainMono(tb testing.TB, c Chain, sampleRate, note, velocity, n int, g GestureParams, s ScaleParams) []float32 {
	tb.Helper()
	c.Prepare(sampleRate)
	c.Trigger(note, velocity, g, s)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		l, r := c.ProcessSample()
		if !isFinite(l) || !isFinite(r) {
			tb.Fatalf("non-finite output at sample %d: l=%g r=%g", i, l, r)
		}
		out[i] = 0.5 * (l + r)
		if (i+1)%128 == 0 {
			c.EndBlock()
		}
	}
	return out
}

// goertzelPower measures the spectral power at one frequency.
func goertzelPower(samples []float32, sampleRate int, freq float64) float64 {
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	coeff := 2.0 * math.Cos(w)
	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = float64(x) + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

// dominantFrequency scans [loHz, hiHz] and returns the frequency with the
// most spectral power.
func dominantFrequency(samples []float32, sampleRate int, loHz, hiHz, stepHz float64) float64 {
	best := loHz
	bestPow := -1.0
	for f := loHz; f <= hiHz; f += stepHz {
		p := goertzelPower(samples, sampleRate, f)
		if p > bestPow {
			bestPow = p
			best = f
		}
	}
	return best
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func defaultTestGesture() GestureParams {
	return GestureParams{Force: 0.7, Speed: 0.5, ContactArea: 0.3, Roughness: 0.2}
}

func defaultTestScale() ScaleParams {
	return ScaleParams{ScaleMeters: 2.0, MassBias: 0.5, AirLoss: 0.3, TransientSlowing: 0.5}
}
