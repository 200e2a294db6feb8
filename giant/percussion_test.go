package giant

import (
	"math"
	"testing"
)

func TestBellStrikeRingsForSecondsThenDeactivates(t *testing.T) {
	const sampleRate = 48000
	p := NewDefaultParams()
	p.PercType = float32(PercBell)
	p.PercNumModes = 16

	c := newPercussionChain(p)
	c.Prepare(sampleRate)
	c.Trigger(57, 102, defaultTestGesture(), defaultTestScale())

	run := func(seconds float64) float64 {
		n := int(seconds * sampleRate)
		var sum float64
		for i := 0; i < n; i++ {
			l, r := c.ProcessSample()
			if !isFinite(l) || !isFinite(r) {
				t.Fatalf("non-finite output at sample %d", i)
			}
			m := 0.5 * float64(l+r)
			sum += m * m
			if (i+1)%128 == 0 {
				c.EndBlock()
			}
		}
		return math.Sqrt(sum / float64(n))
	}

	run(1.0)
	if c.Energy() < energyEpsilon {
		t.Fatalf("bell dead after 1s, energy %g", c.Energy())
	}

	// A 2 m bell must keep ringing for several seconds: the hum partial's
	// ring time is around 4 s, so the tail must still be audible well past
	// the 3 s mark.
	run(2.0)
	if rms := run(0.5); rms < 1e-6 {
		t.Fatalf("bell tail gone after 3s, rms %g", rms)
	}

	c.Release()
	run(40.0)
	if c.Energy() >= energyEpsilon {
		t.Fatalf("bell still ringing after 41s, energy %g", c.Energy())
	}
}

func TestNoteOffAcceleratesDecayWithoutSilencing(t *testing.T) {
	const sampleRate = 48000
	energyAfter := func(release bool) float32 {
		p := NewDefaultParams()
		c := newPercussionChain(p)
		c.Prepare(sampleRate)
		c.Trigger(57, 100, defaultTestGesture(), defaultTestScale())
		for i := 0; i < sampleRate/2; i++ {
			c.ProcessSample()
		}
		if release {
			c.Release()
			// Release must not force silence.
			var sum float64
			for i := 0; i < 4800; i++ {
				l, r := c.ProcessSample()
				sum += float64(l)*float64(l) + float64(r)*float64(r)
			}
			if sum == 0 {
				t.Fatal("release forced immediate silence")
			}
		} else {
			for i := 0; i < 4800; i++ {
				c.ProcessSample()
			}
		}
		for i := 0; i < 4*sampleRate; i++ {
			c.ProcessSample()
		}
		return c.Energy()
	}

	held := energyAfter(false)
	released := energyAfter(true)
	if released >= held {
		t.Fatalf("note-off did not accelerate decay: held=%g released=%g", held, released)
	}
}

func TestPercussionModeFrequenciesFollowRatioTable(t *testing.T) {
	const sampleRate = 48000
	p := NewDefaultParams()
	p.PercType = float32(PercChime)
	p.PercStructure = 0

	c := newPercussionChain(p)
	c.Prepare(sampleRate)
	c.Trigger(57, 100, defaultTestGesture(), defaultTestScale())

	base := midiNoteToFreq(57)
	for i := 0; i < minInt(c.bank.NumModes(), len(chimeRatios)); i++ {
		want := base * chimeRatios[i]
		got := c.bank.ModeFreq(i)
		if want >= 0.45*sampleRate {
			continue
		}
		if math.Abs(float64(got-want)) > 0.5 {
			t.Fatalf("mode %d at %.2f Hz, want %.2f Hz", i, got, want)
		}
	}
}

func TestStructureStretchIsMonotonic(t *testing.T) {
	for order := 1; order <= 8; order++ {
		base := partialRatio(gongRatios, order-1)
		prev := structureStretch(base, order, 0)
		if prev != base {
			t.Fatalf("zero structure changed ratio: %g != %g", prev, base)
		}
		for _, s := range []float32{0.25, 0.5, 1.0} {
			got := structureStretch(base, order, s)
			if got < prev {
				t.Fatalf("stretch not monotonic at order %d structure %g", order, s)
			}
			prev = got
		}
	}
}

func TestModalDecayCoeffOrdering(t *testing.T) {
	const sampleRate = 48000
	small := ScaleParams{ScaleMeters: 1, MassBias: 0.5, AirLoss: 0.3}
	large := ScaleParams{ScaleMeters: 20, MassBias: 0.5, AirLoss: 0.3}

	// Larger instruments ring longer.
	if modalDecayCoeff(sampleRate, 220, 1, small) >= modalDecayCoeff(sampleRate, 220, 1, large) {
		t.Fatal("larger instrument does not decay more slowly")
	}
	// Higher partials decay faster.
	if modalDecayCoeff(sampleRate, 220, 1, small) <= modalDecayCoeff(sampleRate, 880, 4, small) {
		t.Fatal("higher partial does not decay faster")
	}
	// Never at or above unity.
	for _, size := range []float32{0.5, 10, 40} {
		s := ScaleParams{ScaleMeters: size, MassBias: 1, AirLoss: 0}
		if r := modalDecayCoeff(sampleRate, 30, 1, s); r >= 1.0 {
			t.Fatalf("decay coefficient %g not strictly below 1", r)
		}
	}
}

func TestContactAreaBiasesInjectionSpectrum(t *testing.T) {
	const sampleRate = 48000
	highToLow := func(contact float32) float64 {
		p := NewDefaultParams()
		c := newPercussionChain(p)
		g := defaultTestGesture()
		g.ContactArea = contact
		samples := renderChainMono(t, c, sampleRate, 57, 100, sampleRate/2,
			g, defaultTestScale())

		n := c.bank.NumModes()
		low := goertzelPower(samples, sampleRate, float64(c.bank.ModeFreq(0)))
		high := goertzelPower(samples, sampleRate, float64(c.bank.ModeFreq(n-1)))
		if low <= 0 {
			t.Fatal("no energy at the fundamental")
		}
		return high / low
	}

	// A fingertip strike favors upper partials over a flat-palm strike.
	if highToLow(0.05) <= highToLow(0.95) {
		t.Fatal("small contact area did not favor upper partials")
	}
}
