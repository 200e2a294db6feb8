package giant

// GestureParams are the per-note expressive inputs, all in [0, 1]. They are
// supplied at trigger time and may be updated live by continuous controllers;
// each voice copies the current values when it is triggered.
type GestureParams struct {
	Force       float32
	Speed       float32
	ContactArea float32
	Roughness   float32
}

// Clamped returns a copy with every field clamped into [0, 1].
func (g GestureParams) Clamped() GestureParams {
	return GestureParams{
		Force:       clamp01(g.Force),
		Speed:       clamp01(g.Speed),
		ContactArea: clamp01(g.ContactArea),
		Roughness:   clamp01(g.Roughness),
	}
}

// ScaleParams are the instrument macro-physics. A triggered voice copies them
// by value, so adjusting macros live only affects subsequently triggered
// voices. This copy-in-on-trigger is intentional: a ringing giant bell must
// not change size mid-decay.
type ScaleParams struct {
	ScaleMeters      float32 // characteristic instrument size in meters
	MassBias         float32 // [0,1], shifts mass-related loss and darkness
	AirLoss          float32 // [0,1], air damping
	TransientSlowing float32 // [0,1], slows attack/release with size
}

// Clamped returns a copy with every field clamped into its documented range.
func (s ScaleParams) Clamped() ScaleParams {
	return ScaleParams{
		ScaleMeters:      clampFloat32(s.ScaleMeters, 0.5, 40.0),
		MassBias:         clamp01(s.MassBias),
		AirLoss:          clamp01(s.AirLoss),
		TransientSlowing: clamp01(s.TransientSlowing),
	}
}

// BoreShape selects the bore coloration filter of the horn family.
type BoreShape int

const (
	BoreCylindrical BoreShape = iota
	BoreConical
	BoreFlared
	BoreHybrid
)

// PercussionType selects the partial-ratio table of the percussion family.
type PercussionType int

const (
	PercGong PercussionType = iota
	PercBell
	PercPlate
	PercChime
	PercBowl
)

// Params holds the full flat parameter set of one engine instance. External
// access goes through the name-keyed accessor table (see paramtable.go); the
// struct itself is the single source of truth.
type Params struct {
	Gesture GestureParams
	Scale   ScaleParams

	OutputGain float32

	// Horn family
	HornBoreShape   float32 // 0..3, BoreShape
	HornBellSize    float32 // [0,1]
	HornLipTension  float32 // [0,1]
	HornMouthpiece  float32 // [0,1], cavity size
	HornChaosAmount float32 // [0,1]

	// Percussion family
	PercType       float32 // 0..4, PercussionType
	PercNumModes   float32 // 1..64
	PercStructure  float32 // [0,1], inharmonic stretch
	PercBrightness float32 // [0,1], click/noise crossfade
	PercMalletHard float32 // [0,1]

	// Drum family
	DrumShellDepth    float32 // [0,1]
	DrumCavityTune    float32 // [0,1]
	DrumMembraneTense float32 // [0,1]
	DrumRoomSize      float32 // [0,1]

	// Vocal family
	VocalVowel        float32 // 0..4
	VocalVibratoRate  float32 // Hz
	VocalVibratoDepth float32 // [0,1]
	VocalSubLevel     float32 // [0,1]
	VocalChestLevel   float32 // [0,1]

	// Stereo radiation
	StereoWidth    float32 // [0,1]
	StereoOddEven  float32 // 0 or 1
	StereoRotation float32 // [-1,1]
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Gesture: GestureParams{
			Force:       0.7,
			Speed:       0.5,
			ContactArea: 0.4,
			Roughness:   0.2,
		},
		Scale: ScaleParams{
			ScaleMeters:      2.0,
			MassBias:         0.5,
			AirLoss:          0.3,
			TransientSlowing: 0.5,
		},
		OutputGain: 1.0,

		HornBoreShape:   float32(BoreConical),
		HornBellSize:    0.5,
		HornLipTension:  0.5,
		HornMouthpiece:  0.5,
		HornChaosAmount: 0.15,

		PercType:       float32(PercBell),
		PercNumModes:   16,
		PercStructure:  0.2,
		PercBrightness: 0.5,
		PercMalletHard: 0.5,

		DrumShellDepth:    0.5,
		DrumCavityTune:    0.5,
		DrumMembraneTense: 0.5,
		DrumRoomSize:      0.25,

		VocalVowel:        0.0,
		VocalVibratoRate:  4.5,
		VocalVibratoDepth: 0.1,
		VocalSubLevel:     0.35,
		VocalChestLevel:   0.5,

		StereoWidth:    0.6,
		StereoOddEven:  0,
		StereoRotation: 0,
	}
}

func (p *Params) boreShape() BoreShape {
	s := int(p.HornBoreShape + 0.5)
	if s < 0 {
		s = 0
	}
	if s > int(BoreHybrid) {
		s = int(BoreHybrid)
	}
	return BoreShape(s)
}

func (p *Params) percussionType() PercussionType {
	s := int(p.PercType + 0.5)
	if s < 0 {
		s = 0
	}
	if s > int(PercBowl) {
		s = int(PercBowl)
	}
	return PercussionType(s)
}

func (p *Params) percNumModes() int {
	n := int(p.PercNumModes + 0.5)
	if n < 1 {
		n = 1
	}
	if n > maxModes {
		n = maxModes
	}
	return n
}
