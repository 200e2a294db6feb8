package giant

import "sort"

// paramEntry binds a parameter name to typed accessors on a Params struct.
// The table replaces string if/else chains with one binary search per lookup,
// keeping the control path free of linear string comparisons.
type paramEntry struct {
	name string
	get  func(p *Params) float32
	set  func(p *Params, v float32)
}

// paramTable is sorted by name once at startup.
var paramTable = buildParamTable()

func buildParamTable() []paramEntry {
	t := []paramEntry{
		{"gesture.force", func(p *Params) float32 { return p.Gesture.Force }, func(p *Params, v float32) { p.Gesture.Force = clamp01(v) }},
		{"gesture.speed", func(p *Params) float32 { return p.Gesture.Speed }, func(p *Params, v float32) { p.Gesture.Speed = clamp01(v) }},
		{"gesture.contact_area", func(p *Params) float32 { return p.Gesture.ContactArea }, func(p *Params, v float32) { p.Gesture.ContactArea = clamp01(v) }},
		{"gesture.roughness", func(p *Params) float32 { return p.Gesture.Roughness }, func(p *Params, v float32) { p.Gesture.Roughness = clamp01(v) }},

		{"scale.meters", func(p *Params) float32 { return p.Scale.ScaleMeters }, func(p *Params, v float32) { p.Scale.ScaleMeters = clampFloat32(v, 0.5, 40.0) }},
		{"scale.mass_bias", func(p *Params) float32 { return p.Scale.MassBias }, func(p *Params, v float32) { p.Scale.MassBias = clamp01(v) }},
		{"scale.air_loss", func(p *Params) float32 { return p.Scale.AirLoss }, func(p *Params, v float32) { p.Scale.AirLoss = clamp01(v) }},
		{"scale.transient_slowing", func(p *Params) float32 { return p.Scale.TransientSlowing }, func(p *Params, v float32) { p.Scale.TransientSlowing = clamp01(v) }},

		{"output.gain", func(p *Params) float32 { return p.OutputGain }, func(p *Params, v float32) { p.OutputGain = clampFloat32(v, 0, 4) }},

		{"horn.bore_shape", func(p *Params) float32 { return p.HornBoreShape }, func(p *Params, v float32) { p.HornBoreShape = clampFloat32(v, 0, 3) }},
		{"horn.bell_size", func(p *Params) float32 { return p.HornBellSize }, func(p *Params, v float32) { p.HornBellSize = clamp01(v) }},
		{"horn.lip_tension", func(p *Params) float32 { return p.HornLipTension }, func(p *Params, v float32) { p.HornLipTension = clamp01(v) }},
		{"horn.mouthpiece", func(p *Params) float32 { return p.HornMouthpiece }, func(p *Params, v float32) { p.HornMouthpiece = clamp01(v) }},
		{"horn.chaos", func(p *Params) float32 { return p.HornChaosAmount }, func(p *Params, v float32) { p.HornChaosAmount = clamp01(v) }},

		{"perc.type", func(p *Params) float32 { return p.PercType }, func(p *Params, v float32) { p.PercType = clampFloat32(v, 0, 4) }},
		{"perc.num_modes", func(p *Params) float32 { return p.PercNumModes }, func(p *Params, v float32) { p.PercNumModes = clampFloat32(v, 1, maxModes) }},
		{"perc.structure", func(p *Params) float32 { return p.PercStructure }, func(p *Params, v float32) { p.PercStructure = clamp01(v) }},
		{"perc.brightness", func(p *Params) float32 { return p.PercBrightness }, func(p *Params, v float32) { p.PercBrightness = clamp01(v) }},
		{"perc.mallet_hardness", func(p *Params) float32 { return p.PercMalletHard }, func(p *Params, v float32) { p.PercMalletHard = clamp01(v) }},

		{"drum.shell_depth", func(p *Params) float32 { return p.DrumShellDepth }, func(p *Params, v float32) { p.DrumShellDepth = clamp01(v) }},
		{"drum.cavity_tune", func(p *Params) float32 { return p.DrumCavityTune }, func(p *Params, v float32) { p.DrumCavityTune = clamp01(v) }},
		{"drum.membrane_tension", func(p *Params) float32 { return p.DrumMembraneTense }, func(p *Params, v float32) { p.DrumMembraneTense = clamp01(v) }},
		{"drum.room_size", func(p *Params) float32 { return p.DrumRoomSize }, func(p *Params, v float32) { p.DrumRoomSize = clamp01(v) }},

		{"vocal.vowel", func(p *Params) float32 { return p.VocalVowel }, func(p *Params, v float32) { p.VocalVowel = clampFloat32(v, 0, 4) }},
		{"vocal.vibrato_rate", func(p *Params) float32 { return p.VocalVibratoRate }, func(p *Params, v float32) { p.VocalVibratoRate = clampFloat32(v, 0, 12) }},
		{"vocal.vibrato_depth", func(p *Params) float32 { return p.VocalVibratoDepth }, func(p *Params, v float32) { p.VocalVibratoDepth = clamp01(v) }},
		{"vocal.sub_level", func(p *Params) float32 { return p.VocalSubLevel }, func(p *Params, v float32) { p.VocalSubLevel = clamp01(v) }},
		{"vocal.chest_level", func(p *Params) float32 { return p.VocalChestLevel }, func(p *Params, v float32) { p.VocalChestLevel = clamp01(v) }},

		{"stereo.width", func(p *Params) float32 { return p.StereoWidth }, func(p *Params, v float32) { p.StereoWidth = clamp01(v) }},
		{"stereo.odd_even", func(p *Params) float32 { return p.StereoOddEven }, func(p *Params, v float32) { p.StereoOddEven = clamp01(v) }},
		{"stereo.rotation", func(p *Params) float32 { return p.StereoRotation }, func(p *Params, v float32) { p.StereoRotation = clampFloat32(v, -1, 1) }},
	}
	sort.Slice(t, func(i, j int) bool { return t[i].name < t[j].name })
	return t
}

func lookupParam(name string) *paramEntry {
	lo, hi := 0, len(paramTable)
	for lo < hi {
		mid := (lo + hi) / 2
		if paramTable[mid].name < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(paramTable) && paramTable[lo].name == name {
		return &paramTable[lo]
	}
	return nil
}

// ParameterNames returns all registered parameter names in sorted order.
func ParameterNames() []string {
	names := make([]string, len(paramTable))
	for i := range paramTable {
		names[i] = paramTable[i].name
	}
	return names
}
