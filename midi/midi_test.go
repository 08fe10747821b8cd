package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestEventPitch(t *testing.T) {
	on := NewNoteOn(3, 2, 60, 0.5)
	p, ok := on.Pitch()
	require.True(t, ok)
	assert.Equal(t, uint8(60), p)
	assert.True(t, on.IsNote())

	moved := on.WithPitch(64)
	assert.Equal(t, uint8(64), moved.Note)
	assert.Equal(t, uint8(60), on.Note)
	assert.Equal(t, on.Timing, moved.Timing)

	cc := Event{Type: CC, Control: 1, Value: 64}
	_, ok = cc.Pitch()
	assert.False(t, ok)
	assert.Equal(t, cc, cc.WithPitch(70))
	assert.False(t, cc.IsNote())

	pressure := Event{Type: PolyPressure, Note: 50}
	assert.Equal(t, uint8(51), pressure.WithPitch(51).Note)
}

func TestEventVoice(t *testing.T) {
	ev := NewNoteOn(0, 0, 60, 1)
	_, ok := ev.Voice()
	assert.False(t, ok)

	id, ok := ev.WithVoice(7).Voice()
	assert.True(t, ok)
	assert.Equal(t, int32(7), id)
}

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want Event
	}{
		{"note on", gomidi.NoteOn(1, 60, 127), NewNoteOn(5, 1, 60, 1)},
		{"zero velocity is off", gomidi.NoteOn(1, 60, 0), NewNoteOff(5, 1, 60, 0)},
		{"note off", gomidi.NoteOffVelocity(2, 61, 0), NewNoteOff(5, 2, 61, 0)},
		{"cc", gomidi.ControlChange(3, 7, 100), Event{Type: CC, Timing: 5, Channel: 3, Control: 7, Value: 100}},
		{"program", gomidi.ProgramChange(4, 12), Event{Type: ProgramChange, Timing: 5, Channel: 4, Control: 12}},
		{"bend", gomidi.Pitchbend(0, -200), Event{Type: PitchBend, Timing: 5, Bend: -200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := FromMessage(tt.msg, 5)
			require.True(t, ok)
			assert.Equal(t, tt.want, ev)
		})
	}

	_, ok := FromMessage(gomidi.Message{0xF8}, 0)
	assert.False(t, ok, "clock is not a channel message")
}

func TestEventMessage(t *testing.T) {
	var ch, key, vel uint8
	msg := NewNoteOn(0, 9, 36, 0.5).Message()
	require.True(t, msg.GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(9), ch)
	assert.Equal(t, uint8(36), key)
	assert.Equal(t, uint8(64), vel)

	msg = NewNoteOff(0, 9, 36, 0).Message()
	assert.True(t, msg.GetNoteOff(&ch, &key, &vel))

	assert.Nil(t, Event{}.Message())
}

func TestSevenBit(t *testing.T) {
	assert.Equal(t, uint8(0), To7Bit(-1))
	assert.Equal(t, uint8(127), To7Bit(2))
	assert.Equal(t, uint8(64), To7Bit(0.5))
	assert.Equal(t, float32(1), From7Bit(200))
	assert.Equal(t, uint8(100), To7Bit(From7Bit(100)))
}

func TestKeyboardControllerQueue(t *testing.T) {
	kb, err := NewKeyboardController("Keys", nil)
	require.NoError(t, err)
	assert.Equal(t, "Keys", kb.ID())
	assert.Equal(t, ControllerKeyboard, kb.Type())

	kb.push(NewNoteOn(0, 0, 60, 1))
	ev := <-kb.Events()
	assert.Equal(t, uint8(60), ev.Note)

	require.NoError(t, kb.Close())
	require.NoError(t, kb.Close())
	kb.push(NewNoteOn(0, 0, 61, 1))
	_, open := <-kb.Events()
	assert.False(t, open)
}

func TestDeviceManagerAccepts(t *testing.T) {
	dm := NewDeviceManager(" KeyStep ", "")
	assert.True(t, dm.Accepts("Arturia KeyStep 37"))
	assert.False(t, dm.Accepts("IAC Driver Bus 1"))

	all := NewDeviceManager()
	all.Exclude("Synth Out")
	assert.True(t, all.Accepts("IAC Driver Bus 1"))
	assert.False(t, all.Accepts("Synth Out"))
}
