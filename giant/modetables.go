package giant

import (
	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-approx"
)

// Partial-ratio tables per percussion type. Ratios beyond the table are
// extrapolated by continuing the last inter-partial spacing. The values are
// calibration constants matched by ear against reference recordings, not
// derived quantities.
var (
	gongRatios  = []float32{1.0, 1.52, 2.36, 2.71, 3.42, 3.98, 4.65, 5.12, 5.80, 6.37}
	bellRatios  = []float32{0.5, 1.0, 1.19, 1.50, 2.00, 2.51, 2.66, 3.01, 3.39, 4.17}
	plateRatios = []float32{1.0, 1.77, 2.11, 2.93, 3.41, 4.04, 4.68, 5.40, 6.17, 6.95}
	chimeRatios = []float32{1.0, 2.76, 5.40, 8.93, 13.34, 18.64}
	bowlRatios  = []float32{1.0, 2.77, 5.18, 8.16, 11.66, 15.64}
)

func percussionRatios(t PercussionType) []float32 {
	switch t {
	case PercGong:
		return gongRatios
	case PercBell:
		return bellRatios
	case PercPlate:
		return plateRatios
	case PercChime:
		return chimeRatios
	case PercBowl:
		return bowlRatios
	}
	return bellRatios
}

// partialRatio returns the ratio of partial i (0-based) for a table,
// extrapolating past the end with the last spacing.
func partialRatio(table []float32, i int) float32 {
	if i < len(table) {
		return table[i]
	}
	last := table[len(table)-1]
	var spacing float32 = 1.0
	if len(table) >= 2 {
		spacing = last - table[len(table)-2]
	}
	return last + spacing*float32(i-len(table)+1)
}

// structureStretch pushes partials away from the tabulated ratios as the
// structure control rises, the same sqrt-stretch shape used for stiff-string
// inharmonicity.
func structureStretch(ratio float32, order int, structure float32) float32 {
	if structure <= 0 {
		return ratio
	}
	o := float32(order)
	return ratio * math32.Sqrt(1.0+0.12*structure*o*o)
}

// modalDecayCoeff maps partial frequency and order to a per-sample decay
// coefficient. Larger instruments and lower partials decay dramatically more
// slowly; the constants are empirical and the result is clamped strictly
// below 1.0.
func modalDecayCoeff(sampleRate int, freq float32, order int, scale ScaleParams) float32 {
	if sampleRate <= 0 {
		return 0
	}
	size := clampFloat32(scale.ScaleMeters, 0.5, 40.0)

	// Base ring time grows with size, shrinks with partial order.
	t60 := 1.8 * size / (1.0 + 0.25*float32(order))
	// Air damping hits high frequencies hardest.
	t60 /= 1.0 + 3.0*scale.AirLoss*freq/8000.0
	// Heavier structures store more energy.
	t60 *= 1.0 + 0.8*scale.MassBias
	if t60 < 0.01 {
		t60 = 0.01
	}

	// T60 to per-sample radius: r^(t60*sr) = 10^-3.
	const ln1000 = 6.907755278982137
	r := approx.FastExp(float32(-ln1000) / (t60 * float32(sampleRate)))
	return clampFloat32(r, 0, maxModeDecay)
}

// buildPercussionModes fills freqs/decays/amps (all length n) for a struck
// resonator of the given type and base frequency.
func buildPercussionModes(sampleRate int, baseFreq float32, ptype PercussionType, n int, structure float32, scale ScaleParams, freqs, decays, amps []float32) {
	table := percussionRatios(ptype)
	for i := 0; i < n; i++ {
		ratio := structureStretch(partialRatio(table, i), i+1, structure)
		f := baseFreq * ratio
		freqs[i] = f
		decays[i] = modalDecayCoeff(sampleRate, f, i+1, scale)
		amps[i] = 1.0 / math32.Pow(float32(i+1), 1.1)
	}
}

// Circular-membrane mode frequency ratios (first axisymmetric and
// non-axisymmetric Bessel zeros relative to the fundamental (0,1) mode).
var membraneRatios = []float32{1.0, 1.594, 2.136, 2.296, 2.653, 2.918}

// membraneQ holds per-mode Q values: the fundamental rings longest, upper
// modes shed energy into the shell faster.
var membraneQ = []float32{55, 42, 34, 30, 24, 20}
