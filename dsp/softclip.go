package dsp

import "github.com/chewxy/math32"

// SoftClip applies a cubic soft clipper. Inputs in [-1.5, 1.5] follow the
// cubic x - x^3/3 scaled so the knee lands exactly at +/-1; beyond that the
// output saturates at +/-1 with the first derivative continuous across the
// knee.
func SoftClip(x float32) float32 {
	if !IsFinite(x) {
		return 0
	}
	if x > 1.5 {
		return 1
	}
	if x < -1.5 {
		return -1
	}
	x *= 1.0 / 1.5
	return 1.5 * (x - x*x*x/3.0)
}

// SoftClipAsym applies an asymmetric exponential saturator. Positive
// excursions compress harder than negative ones, which reads as a slightly
// "pushed" skin or reed rather than symmetric tape-style limiting.
func SoftClipAsym(x float32) float32 {
	if !IsFinite(x) {
		return 0
	}
	if x >= 0 {
		return 1 - math32.Exp(-x)
	}
	return -1.25 * (1 - math32.Exp(x/1.25))
}
