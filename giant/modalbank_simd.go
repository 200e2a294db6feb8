//go:build !nosimd

package giant

import "github.com/viterin/vek/vek32"

// Step advances every mode by one sample and returns the amplitude-weighted
// sum. This build uses vek's vectorized element-wise kernels; vek dispatches
// to the widest available ISA at startup and degrades to plain loops on
// hardware without SIMD, so the hot loop itself stays branch-free.
func (b *ModalBank) Step() float32 {
	n := b.n
	if n == 0 {
		return 0
	}
	ta := b.tmpA[:n]
	tb := b.tmpB[:n]
	vek32.Mul_Into(ta, b.a1[:n], b.y1[:n])
	vek32.Mul_Into(tb, b.a2[:n], b.y2[:n])
	vek32.Add_Inplace(ta, tb)
	copy(b.y2[:n], b.y1[:n])
	copy(b.y1[:n], ta)
	return vek32.Dot(b.y1[:n], b.amp[:n])
}

// StepStereo advances every mode and returns the mid and odd/even side sums.
func (b *ModalBank) StepStereo() (mid, side float32) {
	n := b.n
	if n == 0 {
		return 0, 0
	}
	ta := b.tmpA[:n]
	tb := b.tmpB[:n]
	vek32.Mul_Into(ta, b.a1[:n], b.y1[:n])
	vek32.Mul_Into(tb, b.a2[:n], b.y2[:n])
	vek32.Add_Inplace(ta, tb)
	copy(b.y2[:n], b.y1[:n])
	copy(b.y1[:n], ta)
	mid = vek32.Dot(b.y1[:n], b.amp[:n])
	side = vek32.Dot(b.y1[:n], b.ampSide[:n])
	return mid, side
}
