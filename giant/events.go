package giant

// EventKind tags a scheduled control event.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventParamChange
	EventControlChange
	EventReset
)

// Event is one discrete control event. Events are applied synchronously at
// control rate, between audio blocks; nothing queues or blocks.
type Event struct {
	Kind     EventKind
	Note     int
	Velocity int
	CC       int
	Param    string
	Value    float32
}

// NoteOn builds a note-on event.
func NoteOn(note, velocity int) Event {
	return Event{Kind: EventNoteOn, Note: note, Velocity: velocity}
}

// NoteOff builds a note-off event.
func NoteOff(note int) Event {
	return Event{Kind: EventNoteOff, Note: note}
}

// ParamChange builds a parameter-change event.
func ParamChange(name string, value float32) Event {
	return Event{Kind: EventParamChange, Param: name, Value: value}
}

// ControlChange builds a continuous-controller event with value in [0, 1].
func ControlChange(cc int, value float32) Event {
	return Event{Kind: EventControlChange, CC: cc, Value: value}
}

// Reset builds a reset event that clears every voice and all filter memory.
func Reset() Event {
	return Event{Kind: EventReset}
}

// Continuous controllers mapped onto the live gesture struct. Unknown CC
// numbers are ignored.
const (
	ccForce       = 1  // mod wheel
	ccSpeed       = 2  // breath
	ccRoughness   = 71
	ccContactArea = 74
)

func (e *Engine) applyControlChange(cc int, value float32) {
	v := clamp01(value)
	switch cc {
	case ccForce:
		e.params.Gesture.Force = v
	case ccSpeed:
		e.params.Gesture.Speed = v
	case ccRoughness:
		e.params.Gesture.Roughness = v
	case ccContactArea:
		e.params.Gesture.ContactArea = v
	}
}
