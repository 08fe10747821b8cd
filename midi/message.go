package midi

import (
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// FromMessage converts a wire message into an Event at the given block
// offset. A note-on with velocity 0 is a note-off. Messages that are not
// channel voice messages are rejected.
func FromMessage(msg gomidi.Message, timing uint32) (Event, bool) {
	var channel, key, velocity, value uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			return NewNoteOff(timing, channel, key, 0), true
		}
		return NewNoteOn(timing, channel, key, From7Bit(velocity)), true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return NewNoteOff(timing, channel, key, From7Bit(velocity)), true
	case msg.GetPolyAfterTouch(&channel, &key, &value):
		return Event{Type: PolyPressure, Timing: timing, Channel: channel, Note: key, Velocity: From7Bit(value)}, true
	case msg.GetControlChange(&channel, &key, &value):
		return Event{Type: CC, Timing: timing, Channel: channel, Control: key, Value: value}, true
	case msg.GetProgramChange(&channel, &value):
		return Event{Type: ProgramChange, Timing: timing, Channel: channel, Control: value}, true
	case msg.GetAfterTouch(&channel, &value):
		return Event{Type: ChannelPressure, Timing: timing, Channel: channel, Velocity: From7Bit(value)}, true
	case msg.GetPitchBend(&channel, &rel, &abs):
		return Event{Type: PitchBend, Timing: timing, Channel: channel, Bend: rel}, true
	}
	return Event{}, false
}

// Message converts e back into a wire message (nil for unknown types)
func (e Event) Message() gomidi.Message {
	ch := e.Channel & 0x0F
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(ch, e.Note, To7Bit(e.Velocity))
	case NoteOff:
		return gomidi.NoteOffVelocity(ch, e.Note, To7Bit(e.Velocity))
	case PolyPressure:
		return gomidi.PolyAfterTouch(ch, e.Note, To7Bit(e.Velocity))
	case CC:
		return gomidi.ControlChange(ch, e.Control, e.Value)
	case ProgramChange:
		return gomidi.ProgramChange(ch, e.Control)
	case ChannelPressure:
		return gomidi.AfterTouch(ch, To7Bit(e.Velocity))
	case PitchBend:
		return gomidi.Pitchbend(ch, e.Bend)
	}
	return nil
}

// From7Bit maps a 0-127 MIDI value onto 0-1
func From7Bit(v uint8) float32 {
	if v > 127 {
		v = 127
	}
	return float32(v) / 127
}

// To7Bit maps 0-1 onto 0-127, rounding and clamping
func To7Bit(v float32) uint8 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 127
	}
	return uint8(math.Round(float64(v) * 127))
}
