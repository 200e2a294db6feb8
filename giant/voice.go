package giant

// VoiceState tracks where a voice sits in its lifecycle. Transitions are
// driven by the chain itself: a voice leaves Attacking once its envelope
// settles, and returns to Idle autonomously when measured resonator energy
// falls below energyEpsilon.
type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceAttacking
	VoiceSustaining
	VoiceReleasing
)

// energyEpsilon is the auto-deactivation floor: once a voice's resonator
// energy drops below it (and nothing is sustaining), the voice frees itself.
const energyEpsilon = 1e-4

// attackBlocks is how many maintenance blocks a voice reports Attacking
// before settling into Sustaining.
const attackBlocks = 2

// Voice binds one chain instance to a note and a lifecycle state. Voices are
// pooled and reused; they never allocate after Prepare.
type Voice struct {
	chain  Chain
	note   int
	state  VoiceState
	age    uint64
	blocks int
}

func (v *Voice) prepare(sampleRate int) {
	v.chain.Prepare(sampleRate)
	v.state = VoiceIdle
	v.note = -1
}

func (v *Voice) trigger(note, velocity int, g GestureParams, s ScaleParams, age uint64) {
	v.chain.Trigger(note, velocity, g, s)
	v.note = note
	v.state = VoiceAttacking
	v.age = age
	v.blocks = 0
}

func (v *Voice) release() {
	if v.state == VoiceIdle {
		return
	}
	v.chain.Release()
	v.state = VoiceReleasing
}

// renderSample produces one stereo frame. Idle voices are skipped by the
// pool, so this is only called on active voices.
func (v *Voice) renderSample() (float32, float32) {
	return v.chain.ProcessSample()
}

// endBlock advances the lifecycle at block rate. Energy checks here rather
// than per sample keep the hot loop branch-free.
func (v *Voice) endBlock() {
	if v.state == VoiceIdle {
		return
	}
	v.chain.EndBlock()
	v.blocks++

	switch v.state {
	case VoiceAttacking:
		if v.blocks >= attackBlocks {
			v.state = VoiceSustaining
		}
	case VoiceSustaining:
		if !v.chain.Sustaining() && v.chain.Energy() < energyEpsilon {
			v.deactivate()
		}
	case VoiceReleasing:
		if !v.chain.Sustaining() && v.chain.Energy() < energyEpsilon {
			v.deactivate()
		}
	}
}

func (v *Voice) deactivate() {
	v.state = VoiceIdle
	v.note = -1
	v.chain.Reset()
}

func (v *Voice) active() bool { return v.state != VoiceIdle }

// State returns the voice's current lifecycle state.
func (v *Voice) State() VoiceState { return v.state }

// Note returns the MIDI note the voice is playing, or -1 when idle.
func (v *Voice) Note() int { return v.note }
