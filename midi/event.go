package midi

// MIDI message types (status nibble)
const (
	NoteOff         uint8 = 0x80
	NoteOn          uint8 = 0x90
	PolyPressure    uint8 = 0xA0
	CC              uint8 = 0xB0
	ProgramChange   uint8 = 0xC0
	ChannelPressure uint8 = 0xD0
	PitchBend       uint8 = 0xE0
)

// Event is a channel voice event inside one processing block.
//
// Only the fields relevant to Type are meaningful: Note for note and poly
// pressure events, Velocity for notes and pressure, Control/Value for CC and
// program change, Bend for pitch bend.
type Event struct {
	Type     uint8   // NoteOn, NoteOff, PolyPressure, CC, ...
	Timing   uint32  // sample offset inside the current block
	Channel  uint8   // 0-15
	Note     uint8   // 0-127
	Velocity float32 // 0-1 (pressure amount for pressure events)
	VoiceID  int32
	HasVoice bool
	Control  uint8 // controller number, or program for ProgramChange
	Value    uint8 // controller value
	Bend     int16 // -8192..8191
}

// NewNoteOn creates a note-on event
func NewNoteOn(timing uint32, channel, note uint8, velocity float32) Event {
	return Event{Type: NoteOn, Timing: timing, Channel: channel, Note: note, Velocity: velocity}
}

// NewNoteOff creates a note-off event
func NewNoteOff(timing uint32, channel, note uint8, velocity float32) Event {
	return Event{Type: NoteOff, Timing: timing, Channel: channel, Note: note, Velocity: velocity}
}

// WithVoice returns a copy of e tagged with a voice id
func (e Event) WithVoice(id int32) Event {
	e.VoiceID = id
	e.HasVoice = true
	return e
}

// IsNote reports whether e is a note-on or note-off
func (e Event) IsNote() bool {
	return e.Type == NoteOn || e.Type == NoteOff
}

// Pitch returns the key of note-carrying events.
func (e Event) Pitch() (uint8, bool) {
	switch e.Type {
	case NoteOn, NoteOff, PolyPressure:
		return e.Note, true
	}
	return 0, false
}

// WithPitch returns a copy of e with its key replaced. Events without a key
// are returned unchanged.
func (e Event) WithPitch(pitch uint8) Event {
	if _, ok := e.Pitch(); ok {
		e.Note = pitch
	}
	return e
}

// Voice returns the voice id, if the event carries one
func (e Event) Voice() (int32, bool) {
	return e.VoiceID, e.HasVoice
}

// String names the event type, for logs and the monitor
func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case PolyPressure:
		return "poly-pressure"
	case CC:
		return "cc"
	case ProgramChange:
		return "program"
	case ChannelPressure:
		return "channel-pressure"
	case PitchBend:
		return "pitch-bend"
	}
	return "unknown"
}
