package giant

import (
	"math"
	"testing"

	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"
)

// The waveguide bore and the membrane bank both lean on the ideal-string
// assumption that a fixed-fixed 1-D resonator has harmonic mode frequencies.
// Cross-check that assumption against the discrete Laplacian eigenspectrum.
func TestIdealStringModesAreHarmonic(t *testing.T) {
	const n = 256
	const h = 1.0 / float64(n)

	dirichlet := pdefd.Eigenvalues(n, h, pdepoisson.Dirichlet)
	if len(dirichlet) != n {
		t.Fatalf("unexpected eigenvalue count: %d", len(dirichlet))
	}
	if dirichlet[0] <= 0 {
		t.Fatalf("first dirichlet eigenvalue not positive: %g", dirichlet[0])
	}
	for i := 1; i < len(dirichlet); i++ {
		if dirichlet[i] < dirichlet[i-1] {
			t.Fatalf("eigenspectrum not sorted at %d: %g < %g", i, dirichlet[i], dirichlet[i-1])
		}
	}

	// Mode frequency goes as the square root of the eigenvalue. For the low
	// modes of a fine grid the ratios must approach the integers, which is
	// exactly the harmonic series the bore's delay-line tuning assumes.
	f1 := math.Sqrt(dirichlet[0])
	for k := 2; k <= 8; k++ {
		ratio := math.Sqrt(dirichlet[k-1]) / f1
		if math.Abs(ratio-float64(k)) > 0.01*float64(k) {
			t.Fatalf("mode %d ratio %g deviates from harmonic", k, ratio)
		}
	}
}

func TestPeriodicLaplacianHasZeroMode(t *testing.T) {
	const n = 64
	const h = 1.0 / 64.0

	periodic := pdefd.Eigenvalues(n, h, pdepoisson.Periodic)
	if len(periodic) != n {
		t.Fatalf("unexpected eigenvalue count: %d", len(periodic))
	}
	// The constant mode of a closed loop costs nothing; this is the DC mode
	// the bore's bell highpass exists to keep out of the output.
	if math.Abs(periodic[0]) > 1e-12 {
		t.Fatalf("expected a zero mode, got %g", periodic[0])
	}
}
