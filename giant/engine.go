package giant

import (
	"sort"

	"github.com/cwbudde/algo-giant/dsp"
)

const (
	minSampleRate = 8000
	maxSampleRate = 384000
	maxBlockSize  = 8192

	// DefaultVoices is the voice pool size used when none is specified.
	DefaultVoices = 16
)

// Engine is the top-level synthesis facade: one instrument family, a fixed
// voice pool, a flat parameter set and a synchronous event interface. All
// methods run on the render thread; nothing locks, queues or allocates after
// Prepare.
type Engine struct {
	instrument InstrumentType
	params     *Params
	registry   *Registry
	pool       *VoicePool

	sampleRate int
	blockSize  int
	prepared   bool

	paramsDirty bool
}

// NewEngine builds an engine for the given instrument family with the
// default voice count. Call Prepare before rendering.
func NewEngine(instrument InstrumentType) *Engine {
	return NewEngineVoices(instrument, DefaultVoices)
}

// NewEngineVoices builds an engine with an explicit voice pool size.
func NewEngineVoices(instrument InstrumentType, voices int) *Engine {
	params := NewDefaultParams()
	registry := NewRegistry()
	RegisterBuiltins(registry)
	return &Engine{
		instrument: instrument,
		params:     params,
		registry:   registry,
		pool:       NewVoicePool(voices, instrument, registry, params),
	}
}

// Prepare allocates every per-voice buffer for the sample rate and block
// size. It reports false for rates or sizes outside the supported range and
// leaves the engine unprepared. Changing either value later requires a full
// re-Prepare.
func (e *Engine) Prepare(sampleRate, blockSize int) bool {
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return false
	}
	if blockSize < 1 || blockSize > maxBlockSize {
		return false
	}
	if e.pool == nil {
		return false
	}
	e.sampleRate = sampleRate
	e.blockSize = blockSize
	e.pool.Prepare(sampleRate)
	e.prepared = true
	return true
}

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Instrument returns the engine's instrument family.
func (e *Engine) Instrument() InstrumentType { return e.instrument }

// Params returns the live parameter struct. Mutate it only between render
// calls, then let HandleEvent or SetParameter mark it dirty; direct edits
// reach already-sounding voices on the next block.
func (e *Engine) Params() *Params { return e.params }

// HandleEvent applies one control event immediately. Events must arrive
// between render calls, never concurrently with Process.
func (e *Engine) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventNoteOn:
		if ev.Velocity <= 0 {
			e.noteOff(ev.Note)
			return
		}
		e.noteOn(ev.Note, ev.Velocity)
	case EventNoteOff:
		e.noteOff(ev.Note)
	case EventParamChange:
		e.SetParameter(ev.Param, ev.Value)
	case EventControlChange:
		e.applyControlChange(ev.CC, ev.Value)
		e.paramsDirty = true
	case EventReset:
		e.Reset()
	}
}

func (e *Engine) noteOn(note, velocity int) {
	if !e.prepared || note < 0 || note > 127 {
		return
	}
	if velocity > 127 {
		velocity = 127
	}
	e.pool.NoteOn(note, velocity, e.params.Gesture, e.params.Scale)
}

func (e *Engine) noteOff(note int) {
	if !e.prepared {
		return
	}
	e.pool.NoteOff(note)
}

// AllNotesOff releases every voice; decay still runs naturally.
func (e *Engine) AllNotesOff() {
	if e.pool != nil {
		e.pool.AllNotesOff()
	}
}

// Reset hard-stops every voice and clears all filter memory.
func (e *Engine) Reset() {
	if e.pool != nil {
		e.pool.Reset()
	}
}

// SetParameter sets a parameter by its dotted name. Unknown names are a
// no-op so presets from newer builds load cleanly; values are clamped by the
// parameter's own setter.
func (e *Engine) SetParameter(name string, value float32) {
	entry := lookupParam(name)
	if entry == nil {
		return
	}
	entry.set(e.params, value)
	e.paramsDirty = true
}

// GetParameter reads a parameter by its dotted name. Unknown names read 0.
func (e *Engine) GetParameter(name string) float32 {
	entry := lookupParam(name)
	if entry == nil {
		return 0
	}
	return entry.get(e.params)
}

// HasParameter reports whether name is a known parameter id.
func (e *Engine) HasParameter(name string) bool {
	return lookupParam(name) != nil
}

// Snapshot captures every parameter into a name-keyed map.
func (e *Engine) Snapshot() map[string]float32 {
	snap := make(map[string]float32, len(paramTable))
	for i := range paramTable {
		snap[paramTable[i].name] = paramTable[i].get(e.params)
	}
	return snap
}

// Apply sets every parameter present in the map, in sorted-name order so the
// result is deterministic. Unknown names are skipped; the count of skips is
// returned so callers can surface it without failing the load.
func (e *Engine) Apply(values map[string]float32) int {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	skipped := 0
	for _, name := range names {
		if !e.HasParameter(name) {
			skipped++
			continue
		}
		e.SetParameter(name, values[name])
	}
	return skipped
}

// ActiveVoiceCount reports the number of currently sounding voices.
func (e *Engine) ActiveVoiceCount() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.ActiveCount()
}

// Process renders numFrames frames into out. out holds one slice per
// channel; with two or more channels the first two receive the stereo image
// and any extras are cleared, with one channel the stereo sum is folded to
// mono. The render path is allocation-free.
func (e *Engine) Process(out [][]float32, numChannels, numFrames int) {
	if numChannels > len(out) {
		numChannels = len(out)
	}
	for ch := 0; ch < numChannels; ch++ {
		buf := out[ch]
		for i := 0; i < numFrames && i < len(buf); i++ {
			buf[i] = 0
		}
	}
	if !e.prepared || numChannels < 1 || numFrames < 1 {
		return
	}
	if numFrames > e.blockSize {
		numFrames = e.blockSize
	}

	if e.paramsDirty {
		e.pool.UpdateControl(e.params)
		e.paramsDirty = false
	}

	gain := e.params.OutputGain
	stereo := numChannels >= 2 && len(out[0]) >= numFrames && len(out[1]) >= numFrames

	for i := 0; i < numFrames; i++ {
		l, r := e.pool.RenderSample()
		l = dsp.SoftClip(l * gain)
		r = dsp.SoftClip(r * gain)
		if stereo {
			out[0][i] = l
			out[1][i] = r
		} else if len(out[0]) > i {
			out[0][i] = 0.5 * (l + r)
		}
	}

	e.pool.EndBlock()
}
