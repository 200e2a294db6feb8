package giant

import "fmt"

// InstrumentType selects one of the four signal-chain families.
type InstrumentType int

const (
	InstrumentHorn InstrumentType = iota
	InstrumentPercussion
	InstrumentDrum
	InstrumentVocal
)

// String returns the canonical lowercase name of the instrument type.
func (t InstrumentType) String() string {
	switch t {
	case InstrumentHorn:
		return "horn"
	case InstrumentPercussion:
		return "percussion"
	case InstrumentDrum:
		return "drum"
	case InstrumentVocal:
		return "vocal"
	}
	return "unknown"
}

// ParseInstrument maps a name to an InstrumentType.
func ParseInstrument(name string) (InstrumentType, error) {
	switch name {
	case "horn":
		return InstrumentHorn, nil
	case "percussion":
		return InstrumentPercussion, nil
	case "drum":
		return InstrumentDrum, nil
	case "vocal":
		return InstrumentVocal, nil
	}
	return 0, fmt.Errorf("unknown instrument %q", name)
}

// Chain is one complete per-voice signal path: excitation into resonance into
// shaping. Implementations allocate every buffer in Prepare and are
// allocation-free afterwards; ProcessSample runs once per sample inside the
// render loop and must not block.
type Chain interface {
	// Prepare binds the chain to a sample rate. Called once per (re)prepare,
	// never during rendering.
	Prepare(sampleRate int)

	// Trigger energizes the chain for a note. Gesture and scale parameters
	// are copies taken at trigger time and stay fixed for the note.
	Trigger(note, velocity int, g GestureParams, s ScaleParams)

	// Release starts the note's release phase. For struck families this only
	// accelerates decay; it never forces silence.
	Release()

	// ProcessSample renders one stereo sample frame.
	ProcessSample() (left, right float32)

	// Energy reports current resonator energy, used for auto-deactivation and
	// lowest-energy stealing.
	Energy() float32

	// Sustaining reports whether an open-ended envelope (breath, bore
	// reflection) is still above its release floor, keeping the voice alive
	// even when instantaneous energy dips.
	Sustaining() bool

	// UpdateControl refreshes control-rate caches from the live parameter
	// struct. Called between blocks when parameters changed; stages recompute
	// coefficients lazily off their dirty flags.
	UpdateControl(p *Params)

	// EndBlock runs per-block maintenance: denormal flushing and instability
	// cleanup outside the hot loop.
	EndBlock()

	// Reset clears all state and filter memory.
	Reset()
}

// ChainFactory builds a chain for a given parameter set.
type ChainFactory func(p *Params) Chain

// Registry maps instrument types to chain factories. It is plain data
// populated explicitly by the integration layer at startup; the core installs
// nothing implicitly and holds no global registry state.
type Registry struct {
	factories map[InstrumentType]ChainFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[InstrumentType]ChainFactory)}
}

// Register installs a factory for an instrument type, replacing any previous
// registration.
func (r *Registry) Register(t InstrumentType, f ChainFactory) {
	r.factories[t] = f
}

// New builds a chain for the given type, or nil if none is registered.
func (r *Registry) New(t InstrumentType, p *Params) Chain {
	f, ok := r.factories[t]
	if !ok {
		return nil
	}
	return f(p)
}

// RegisterBuiltins installs the four built-in instrument families.
func RegisterBuiltins(r *Registry) {
	r.Register(InstrumentHorn, func(p *Params) Chain { return newHornChain(p) })
	r.Register(InstrumentPercussion, func(p *Params) Chain { return newPercussionChain(p) })
	r.Register(InstrumentDrum, func(p *Params) Chain { return newDrumChain(p) })
	r.Register(InstrumentVocal, func(p *Params) Chain { return newVocalChain(p) })
}
