package sequencer

// DefaultTempo is used while the tempo is unknown
const DefaultTempo = 120.0

// Transport is the playback clock seen by devices for one block
type Transport struct {
	Playing    bool
	Tempo      float64 // bpm, valid when TempoKnown
	TempoKnown bool
	SampleRate float64
	PosSamples int64   // absolute position of the block's first sample
	PosBeats   float64 // same position in quarter notes
}

// BPM returns the tempo, or DefaultTempo when none is known
func (t Transport) BPM() float64 {
	if !t.TempoKnown {
		return DefaultTempo
	}
	return t.Tempo
}

// Advance moves the clock forward by n samples
func (t *Transport) Advance(n int) {
	t.PosSamples += int64(n)
	if t.SampleRate > 0 {
		t.PosBeats += float64(n) / t.SampleRate * t.BPM() / 60.0
	}
}

// Rewind resets the position to the start
func (t *Transport) Rewind() {
	t.PosSamples = 0
	t.PosBeats = 0
}
