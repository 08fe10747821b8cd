package harmony

// Mapping is where a key lands relative to the chord
type Mapping struct {
	ChordIndex int
	Octave     int
	Pitch      uint8 // triggered pitch, valid when Triggers
	Triggers   bool
}

// Map splits pitch into a chord index and octave around ReferencePitch and
// resolves the triggered pitch against chord (ascending). A threshold below
// 1 is treated as 1. There is no triggered pitch when the chord has no note
// at the index or the shifted note leaves 0-127.
func Map(pitch uint8, threshold int, chord []uint8, octaveRange int) Mapping {
	if threshold < 1 {
		threshold = 1
	}
	rel := int(pitch) - ReferencePitch
	idx := rel % threshold
	if idx < 0 {
		idx += threshold
	}
	m := Mapping{
		ChordIndex: idx,
		Octave:     (rel - idx) / threshold,
	}
	if idx >= len(chord) {
		return m
	}
	p := int(chord[idx]) + m.Octave*octaveRange
	if p < 0 || p > 127 {
		return m
	}
	m.Pitch = uint8(p)
	m.Triggers = true
	return m
}
