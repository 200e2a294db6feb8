//go:build nosimd

package giant

// Step advances every mode by one sample and returns the amplitude-weighted
// sum. The nosimd build runs the exact scalar reference kernel.
func (b *ModalBank) Step() float32 {
	return b.stepScalar()
}

// StepStereo advances every mode and returns the mid and odd/even side sums.
func (b *ModalBank) StepStereo() (mid, side float32) {
	return b.stepStereoScalar()
}
