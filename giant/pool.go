package giant

// VoicePool owns a fixed set of voices for one instrument type. Allocation
// happens once at construction; note handling is linear scans over the small
// fixed array, which beats any clever structure at these sizes.
type VoicePool struct {
	voices     []*Voice
	instrument InstrumentType
	counter    uint64
}

// NewVoicePool builds a pool of n voices using the registry's factory for
// the given instrument type. Returns nil if the type has no factory.
func NewVoicePool(n int, t InstrumentType, reg *Registry, p *Params) *VoicePool {
	if n < 1 {
		n = 1
	}
	pool := &VoicePool{
		voices:     make([]*Voice, n),
		instrument: t,
	}
	for i := range pool.voices {
		chain := reg.New(t, p)
		if chain == nil {
			return nil
		}
		pool.voices[i] = &Voice{chain: chain, note: -1}
	}
	return pool
}

// Prepare binds every voice to the sample rate.
func (p *VoicePool) Prepare(sampleRate int) {
	for _, v := range p.voices {
		v.prepare(sampleRate)
	}
}

// NoteOn assigns a voice for the note. An active voice already playing the
// same note is retriggered in place. Otherwise the first idle voice is used;
// with none idle, a voice is stolen: drums steal the lowest-energy voice so
// a still-booming strike survives, the other families steal deterministically
// at the first index.
func (p *VoicePool) NoteOn(note, velocity int, g GestureParams, s ScaleParams) *Voice {
	p.counter++

	for _, v := range p.voices {
		if v.active() && v.note == note {
			v.trigger(note, velocity, g, s, p.counter)
			return v
		}
	}
	for _, v := range p.voices {
		if !v.active() {
			v.trigger(note, velocity, g, s, p.counter)
			return v
		}
	}

	victim := p.voices[0]
	if p.instrument == InstrumentDrum {
		lowest := victim.chain.Energy()
		for _, v := range p.voices[1:] {
			if e := v.chain.Energy(); e < lowest {
				lowest = e
				victim = v
			}
		}
	}
	victim.chain.Reset()
	victim.trigger(note, velocity, g, s, p.counter)
	return victim
}

// NoteOff releases every active voice playing the note.
func (p *VoicePool) NoteOff(note int) {
	for _, v := range p.voices {
		if v.active() && v.note == note {
			v.release()
		}
	}
}

// AllNotesOff releases every active voice. Decay still runs naturally; use
// Reset to force immediate silence.
func (p *VoicePool) AllNotesOff() {
	for _, v := range p.voices {
		v.release()
	}
}

// Reset hard-stops and clears every voice.
func (p *VoicePool) Reset() {
	for _, v := range p.voices {
		v.deactivate()
	}
}

// RenderSample sums one stereo frame across all active voices.
func (p *VoicePool) RenderSample() (float32, float32) {
	var l, r float32
	for _, v := range p.voices {
		if v.active() {
			vl, vr := v.renderSample()
			l += vl
			r += vr
		}
	}
	return l, r
}

// EndBlock runs per-block voice maintenance and lifecycle transitions.
func (p *VoicePool) EndBlock() {
	for _, v := range p.voices {
		v.endBlock()
	}
}

// UpdateControl pushes refreshed parameters to every active voice.
func (p *VoicePool) UpdateControl(params *Params) {
	for _, v := range p.voices {
		if v.active() {
			v.chain.UpdateControl(params)
		}
	}
}

// ActiveCount reports the number of non-idle voices.
func (p *VoicePool) ActiveCount() int {
	n := 0
	for _, v := range p.voices {
		if v.active() {
			n++
		}
	}
	return n
}

// Voices exposes the underlying voices for inspection.
func (p *VoicePool) Voices() []*Voice { return p.voices }
