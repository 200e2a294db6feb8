package giant

import (
	"testing"
)

func TestPrepareRejectsUnsupportedFormats(t *testing.T) {
	cases := []struct {
		sampleRate, blockSize int
		want                  bool
	}{
		{48000, 128, true},
		{8000, 1, true},
		{384000, 8192, true},
		{7999, 128, false},
		{384001, 128, false},
		{48000, 0, false},
		{48000, 8193, false},
		{0, 128, false},
		{-48000, 128, false},
	}
	for _, c := range cases {
		e := NewEngine(InstrumentPercussion)
		if got := e.Prepare(c.sampleRate, c.blockSize); got != c.want {
			t.Errorf("Prepare(%d, %d) = %v, want %v", c.sampleRate, c.blockSize, got, c.want)
		}
	}
}

func TestUnpreparedEngineIsInert(t *testing.T) {
	e := NewEngine(InstrumentHorn)
	e.HandleEvent(NoteOn(60, 100))
	if n := e.ActiveVoiceCount(); n != 0 {
		t.Fatalf("%d active voices without Prepare", n)
	}

	out := [][]float32{make([]float32, 64), make([]float32, 64)}
	out[0][10] = 7 // must be cleared even when unprepared
	e.Process(out, 2, 64)
	if out[0][10] != 0 {
		t.Fatal("Process did not clear the output buffer")
	}
}

func TestRetriggerSameNoteReusesVoice(t *testing.T) {
	e := NewEngine(InstrumentPercussion)
	e.Prepare(48000, 128)
	e.HandleEvent(NoteOn(57, 100))
	e.HandleEvent(NoteOn(57, 80))
	e.HandleEvent(NoteOn(57, 120))
	if n := e.ActiveVoiceCount(); n != 1 {
		t.Fatalf("retrigger grew the pool: %d active voices", n)
	}
}

func TestNoteOnVelocityZeroActsAsNoteOff(t *testing.T) {
	e := NewEngine(InstrumentHorn)
	e.Prepare(48000, 128)
	e.HandleEvent(NoteOn(60, 100))

	out := [][]float32{make([]float32, 128), make([]float32, 128)}
	e.Process(out, 2, 128)

	e.HandleEvent(NoteOn(60, 0))
	v := findVoice(e, 60)
	if v == nil {
		t.Fatal("voice vanished on release")
	}
	if v.State() != VoiceReleasing {
		t.Fatalf("voice state %v after zero-velocity note-on, want releasing", v.State())
	}
}

func TestStealingPolicyPerFamily(t *testing.T) {
	const voices = 3

	// Percussion steals deterministically at the first slot.
	e := NewEngineVoices(InstrumentPercussion, voices)
	e.Prepare(48000, 128)
	for note := 50; note < 50+voices; note++ {
		e.HandleEvent(NoteOn(note, 100))
	}
	first := e.pool.Voices()[0]
	e.HandleEvent(NoteOn(90, 100))
	if first.Note() != 90 {
		t.Fatalf("percussion stole voice playing %d, want slot 0", first.Note())
	}
	if n := e.ActiveVoiceCount(); n != voices {
		t.Fatalf("%d active voices after steal, want %d", n, voices)
	}

	// Drums steal the lowest-energy voice; the one that has decayed
	// longest loses.
	d := NewEngineVoices(InstrumentDrum, voices)
	d.Prepare(48000, 128)
	out := [][]float32{make([]float32, 128), make([]float32, 128)}

	d.HandleEvent(NoteOn(36, 127))
	// Let the first strike decay for a while before the others land.
	for i := 0; i < 400; i++ {
		d.Process(out, 2, 128)
	}
	d.HandleEvent(NoteOn(38, 127))
	d.HandleEvent(NoteOn(40, 127))
	d.Process(out, 2, 128)

	quietest := d.pool.Voices()[0]
	for _, v := range d.pool.Voices()[1:] {
		if v.chain.Energy() < quietest.chain.Energy() {
			quietest = v
		}
	}
	wantSlot := quietest
	d.HandleEvent(NoteOn(43, 127))
	if wantSlot.Note() != 43 {
		t.Fatalf("drum steal took a louder voice; slot holds note %d", wantSlot.Note())
	}
}

func TestParameterRoundTripAndClamping(t *testing.T) {
	e := NewEngine(InstrumentHorn)
	for _, name := range ParameterNames() {
		if !e.HasParameter(name) {
			t.Fatalf("%s not resolvable", name)
		}
		v := e.GetParameter(name)
		e.SetParameter(name, v)
		if got := e.GetParameter(name); got != v {
			t.Fatalf("%s: %g did not round-trip (got %g)", name, v, got)
		}
	}

	// Unknown names are a forward-compatible no-op: writes are dropped,
	// reads are 0, and the rest of the engine state is untouched.
	before := e.Snapshot()
	e.SetParameter("no.such.knob", 1)
	if e.HasParameter("no.such.knob") {
		t.Fatal("unknown parameter resolved")
	}
	if v := e.GetParameter("no.such.knob"); v != 0 {
		t.Fatalf("unknown parameter read %g, want 0", v)
	}
	for name, v := range before {
		if got := e.GetParameter(name); got != v {
			t.Fatalf("%s changed by an unknown-name write: %g -> %g", name, v, got)
		}
	}

	// Out-of-range values clamp instead of erroring.
	e.SetParameter("scale.meters", 1e6)
	if v := e.GetParameter("scale.meters"); v > 40 {
		t.Fatalf("scale.meters %g escaped its range", v)
	}
}

func TestSnapshotApplyRoundTrip(t *testing.T) {
	e := NewEngine(InstrumentVocal)
	e.SetParameter("vocal.vowel", 2.5)
	e.SetParameter("gesture.force", 0.9)
	snap := e.Snapshot()

	other := NewEngine(InstrumentVocal)
	if skipped := other.Apply(snap); skipped != 0 {
		t.Fatalf("apply skipped %d known names", skipped)
	}
	for name, v := range snap {
		if got := other.GetParameter(name); got != v {
			t.Fatalf("%s: applied %g, read %g", name, v, got)
		}
	}

	// A preset from a newer build may carry extra keys; they are counted
	// and skipped, the known ones still land.
	snap["bogus.name"] = 1
	snap["gesture.force"] = 0.25
	if skipped := other.Apply(snap); skipped != 1 {
		t.Fatalf("Apply skipped %d names, want 1", skipped)
	}
	if got := other.GetParameter("gesture.force"); got != 0.25 {
		t.Fatalf("known name did not apply alongside an unknown one: %g", got)
	}
}

func TestResetSilencesImmediately(t *testing.T) {
	e := NewEngine(InstrumentDrum)
	e.Prepare(48000, 128)
	e.HandleEvent(NoteOn(40, 127))

	out := [][]float32{make([]float32, 128), make([]float32, 128)}
	e.Process(out, 2, 128)

	e.HandleEvent(Reset())
	if n := e.ActiveVoiceCount(); n != 0 {
		t.Fatalf("%d active voices after reset", n)
	}
	e.Process(out, 2, 128)
	for i := range out[0] {
		if out[0][i] != 0 || out[1][i] != 0 {
			t.Fatalf("output not silent after reset at frame %d", i)
		}
	}
}

func TestLongRenderWithParameterChurnStaysFinite(t *testing.T) {
	e := NewEngine(InstrumentHorn)
	e.Prepare(48000, 128)
	out := [][]float32{make([]float32, 128), make([]float32, 128)}

	names := ParameterNames()
	rnd := newNoise(12345)
	notes := []int{36, 43, 50, 57, 64}

	for block := 0; block < 200; block++ {
		if block%17 == 0 {
			e.HandleEvent(NoteOn(notes[block%len(notes)], 70+block%50))
		}
		if block%23 == 0 {
			e.HandleEvent(NoteOff(notes[(block/23)%len(notes)]))
		}
		// Sweep a couple of parameters every block.
		for k := 0; k < 2; k++ {
			name := names[(block*3+k)%len(names)]
			e.SetParameter(name, rnd.next()*20)
		}
		e.HandleEvent(ControlChange(1, clamp01(0.5+0.5*rnd.next())))

		e.Process(out, 2, 128)
		for i := 0; i < 128; i++ {
			if !isFinite(out[0][i]) || !isFinite(out[1][i]) {
				t.Fatalf("non-finite output at block %d frame %d", block, i)
			}
			if out[0][i] > 1.5 || out[0][i] < -1.5 {
				t.Fatalf("clipped output escaped soft limit: %g", out[0][i])
			}
		}
	}
}

func TestControlChangeMapsToGesture(t *testing.T) {
	e := NewEngine(InstrumentHorn)
	e.Prepare(48000, 128)
	e.HandleEvent(ControlChange(1, 0.85))
	if v := e.Params().Gesture.Force; v != 0.85 {
		t.Fatalf("CC1 set force %g, want 0.85", v)
	}
	e.HandleEvent(ControlChange(74, 0.25))
	if v := e.Params().Gesture.ContactArea; v != 0.25 {
		t.Fatalf("CC74 set contact area %g, want 0.25", v)
	}
}

func TestMonoFoldAndExtraChannelClear(t *testing.T) {
	e := NewEngine(InstrumentPercussion)
	e.Prepare(48000, 128)
	e.HandleEvent(NoteOn(57, 120))

	mono := [][]float32{make([]float32, 128)}
	e.Process(mono, 1, 128)
	var sum float64
	for _, v := range mono[0] {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		t.Fatal("mono fold produced silence for an active voice")
	}

	three := [][]float32{make([]float32, 128), make([]float32, 128), make([]float32, 128)}
	three[2][5] = 9
	e.Process(three, 3, 128)
	if three[2][5] != 0 {
		t.Fatal("extra channel was not cleared")
	}
}

func findVoice(e *Engine, note int) *Voice {
	for _, v := range e.pool.Voices() {
		if v.active() && v.Note() == note {
			return v
		}
	}
	return nil
}
