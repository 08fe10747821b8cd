package sequencer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-modular/euclid"
	"go-modular/harmony"
	"go-modular/midi"
)

// fixedDevice emits the same events every block
type fixedDevice struct {
	name   string
	events []midi.Event
	off    []midi.Event
}

func (f *fixedDevice) Name() string { return f.name }
func (f *fixedDevice) Process(ctx *Context) {
	for _, ev := range f.events {
		ctx.Send(ev)
	}
}
func (f *fixedDevice) AllNotesOff(ctx *Context) {
	for _, ev := range f.off {
		ctx.Send(ev)
	}
}
func (f *fixedDevice) View() string        { return f.name }
func (f *fixedDevice) HandleKey(key string) {}

func runBlocks(m *Manager, n int, input func(block int) []midi.Event) []Stamped {
	var out []Stamped
	for b := 0; b < n; b++ {
		var in []midi.Event
		if input != nil {
			in = input(b)
		}
		start := m.Transport().PosSamples
		out = Stamp(out, start, m.ProcessBlock(in))
	}
	return out
}

func TestTransportBPM(t *testing.T) {
	var tr Transport
	assert.Equal(t, 120.0, tr.BPM())
	tr.Tempo = 90
	assert.Equal(t, 120.0, tr.BPM())
	tr.TempoKnown = true
	assert.Equal(t, 90.0, tr.BPM())
}

func TestTransportAdvance(t *testing.T) {
	tr := Transport{SampleRate: 1000, Tempo: 120, TempoKnown: true}
	tr.Advance(500)
	assert.Equal(t, int64(500), tr.PosSamples)
	assert.InDelta(t, 1.0, tr.PosBeats, 1e-9)
	tr.Rewind()
	assert.Zero(t, tr.PosSamples)
	assert.Zero(t, tr.PosBeats)
}

func euclidManager() (*Manager, *EuclidDevice) {
	params := DefaultEuclidParams("gm")
	params[0].StepSize = euclid.Step1_8
	dev := NewEuclidDevice(params, 0)

	// 1/8 at 120 bpm and 1 kHz = 250 samples per step
	m := NewManager(1000, 100, 120)
	m.AddTrack(NewTrack("drums", dev))
	return m, dev
}

func TestEuclidDeviceSchedule(t *testing.T) {
	m, _ := euclidManager()
	m.Play()

	out := runBlocks(m, 21, nil)
	assert.Equal(t, []Stamped{
		{0, midi.NewNoteOn(0, 0, 36, 1)},
		{250, midi.NewNoteOff(50, 0, 36, 1)},
		{1000, midi.NewNoteOn(0, 0, 36, 1)},
		{1250, midi.NewNoteOff(50, 0, 36, 1)},
		{2000, midi.NewNoteOn(0, 0, 36, 1)},
	}, out)

	m.Stop()
	assert.Equal(t, []midi.Event{midi.NewNoteOff(0, 0, 36, 1)}, m.ProcessBlock(nil))
	assert.Empty(t, m.ProcessBlock(nil))
}

func TestEuclidDeviceStoppedIsSilent(t *testing.T) {
	m, _ := euclidManager()
	assert.Empty(t, runBlocks(m, 10, nil))
	assert.Zero(t, m.Transport().PosSamples)
}

func TestEuclidDeviceVoicesShareBlock(t *testing.T) {
	params := DefaultEuclidParams("gm")
	for i := range params {
		params[i].Enabled = true
		params[i].Notes, params[i].Steps = 1, 4
		params[i].StepSize = euclid.Step1_4
	}
	dev := NewEuclidDevice(params, 9)
	m := NewManager(1000, 64, 120)
	m.AddTrack(NewTrack("drums", dev))
	m.Play()

	out := m.ProcessBlock(nil)
	require.Len(t, out, 4)
	for i, ev := range out {
		assert.Equal(t, midi.NoteOn, ev.Type)
		assert.Equal(t, uint8(9), ev.Channel)
		assert.Equal(t, GetKit("gm").Notes[i], ev.Note)
	}
}

func TestEuclidDeviceKeys(t *testing.T) {
	dev := NewEuclidDevice(DefaultEuclidParams("gm"), 0)
	dev.HandleKey("j")
	dev.HandleKey(" ")
	assert.True(t, dev.Voice(1).Params.Enabled)

	dev.HandleKey("l")
	dev.HandleKey("l")
	dev.HandleKey("]")
	assert.Equal(t, 3, dev.Voice(1).Params.Notes)

	for i := 0; i < 10; i++ {
		dev.HandleKey("[")
	}
	assert.Equal(t, euclid.MinNotes, dev.Voice(1).Params.Notes)

	dev.HandleKey(">")
	assert.Equal(t, uint8(1), dev.Channel)
	assert.Contains(t, dev.View(), "EUCLID")
}

func patternsManager() (*Manager, *PatternsDevice) {
	dev := NewPatternsDevice(harmony.DefaultParams())
	m := NewManager(1000, 100, 120)
	m.AddTrack(NewTrack("keys", dev))
	return m, dev
}

func chordOn(timing uint32, notes ...uint8) []midi.Event {
	var out []midi.Event
	for _, n := range notes {
		out = append(out, midi.NewNoteOn(timing, 15, n, 1))
	}
	return out
}

func TestPatternsDevicePressRelease(t *testing.T) {
	m, dev := patternsManager()

	in := append(chordOn(0, 72, 74, 76), midi.NewNoteOn(10, 0, 60, 1))
	assert.Equal(t, []midi.Event{midi.NewNoteOn(10, 0, 72, 1)}, m.ProcessBlock(in))
	assert.Empty(t, m.ProcessBlock(nil))

	out := m.ProcessBlock([]midi.Event{midi.NewNoteOff(3, 0, 60, 0)})
	assert.Equal(t, []midi.Event{midi.NewNoteOff(3, 0, 72, 1)}, out)
	assert.Equal(t, 0, dev.Processor().HeldCount())
}

func TestPatternsDeviceChordChange(t *testing.T) {
	m, _ := patternsManager()
	m.ProcessBlock(append(chordOn(0, 72, 74, 76), midi.NewNoteOn(0, 0, 61, 1)))

	out := m.ProcessBlock([]midi.Event{
		midi.NewNoteOff(5, 15, 74, 0),
		midi.NewNoteOn(5, 15, 75, 1),
	})
	assert.Equal(t, []midi.Event{
		midi.NewNoteOff(5, 0, 74, 1),
		midi.NewNoteOn(5, 0, 75, 1),
	}, out)
}

func TestPatternsDeviceUnsortedInput(t *testing.T) {
	m, _ := patternsManager()
	in := []midi.Event{
		midi.NewNoteOn(20, 0, 60, 1),
		midi.NewNoteOn(0, 15, 72, 1),
	}
	assert.Equal(t, []midi.Event{midi.NewNoteOn(20, 0, 72, 1)}, m.ProcessBlock(in))
}

func TestPatternsDeviceOtherEvents(t *testing.T) {
	m, _ := patternsManager()
	m.ProcessBlock(chordOn(0, 72, 74, 76))

	cc := midi.Event{Type: midi.CC, Timing: 4, Channel: 0, Control: 1, Value: 64}
	chordCC := midi.Event{Type: midi.CC, Timing: 4, Channel: 15, Control: 1, Value: 64}
	pressure := midi.Event{Type: midi.PolyPressure, Timing: 4, Channel: 0, Note: 61, Velocity: 0.5}
	missing := midi.Event{Type: midi.PolyPressure, Timing: 4, Channel: 0, Note: 127, Velocity: 0.5}

	out := m.ProcessBlock([]midi.Event{cc, chordCC, pressure, missing})
	mapped := pressure
	mapped.Note = 74
	assert.Equal(t, []midi.Event{cc, mapped}, out)
}

func TestPatternsDeviceSettingChangeRetriggers(t *testing.T) {
	m, dev := patternsManager()
	m.ProcessBlock(append(chordOn(0, 72, 74, 76), midi.NewNoteOn(0, 0, 61, 1)))

	dev.Params.AutoThreshold = false
	dev.Params.WrapThreshold = 1
	assert.Equal(t, []midi.Event{
		midi.NewNoteOff(0, 0, 74, 1),
		midi.NewNoteOn(0, 0, 84, 1),
	}, m.ProcessBlock(nil))
}

func TestPatternsDeviceModeChangeFlushes(t *testing.T) {
	m, dev := patternsManager()
	m.ProcessBlock(append(chordOn(0, 72, 74, 76), midi.NewNoteOn(0, 0, 60, 1)))

	for i := 0; i < settingKeyboardMode; i++ {
		dev.HandleKey("j")
	}
	dev.HandleKey(" ")
	assert.Equal(t, harmony.IgnoreBlackKeys, dev.Params.KeyboardMode)

	assert.Equal(t, []midi.Event{midi.NewNoteOff(0, 0, 72, 1)}, m.ProcessBlock(nil))
	assert.Equal(t, 0, dev.Processor().HeldCount())
}

func TestPatternsDeviceView(t *testing.T) {
	m, dev := patternsManager()
	m.ProcessBlock(append(chordOn(0, 60, 64, 67), midi.NewNoteOn(0, 0, 61, 1)))
	view := dev.View()
	assert.Contains(t, view, "C3 E3 G3")
	assert.Contains(t, view, "C#3")
}

func TestManagerMergesByTiming(t *testing.T) {
	m := NewManager(1000, 100, 120)
	m.AddTrack(NewTrack("a", &fixedDevice{name: "a", events: []midi.Event{
		midi.NewNoteOn(0, 0, 1, 1), midi.NewNoteOn(5, 0, 2, 1),
	}}))
	m.AddTrack(NewTrack("b", &fixedDevice{name: "b", events: []midi.Event{
		midi.NewNoteOn(0, 1, 3, 1), midi.NewNoteOn(3, 1, 4, 1),
	}}))

	var notes []uint8
	for _, ev := range m.ProcessBlock(nil) {
		notes = append(notes, ev.Note)
	}
	assert.Equal(t, []uint8{1, 3, 4, 2}, notes)
}

func TestManagerMutedTrack(t *testing.T) {
	m := NewManager(1000, 100, 120)
	track := NewTrack("a", &fixedDevice{name: "a", events: []midi.Event{
		midi.NewNoteOn(0, 0, 1, 1), midi.NewNoteOff(1, 0, 2, 1),
	}})
	m.AddTrack(track)
	track.Muted = true

	assert.Equal(t, []midi.Event{midi.NewNoteOff(1, 0, 2, 1)}, m.ProcessBlock(nil))
}

func TestManagerAllNotesOff(t *testing.T) {
	m := NewManager(1000, 100, 120)
	m.AddTrack(NewTrack("a", &fixedDevice{name: "a", off: []midi.Event{midi.NewNoteOff(0, 0, 7, 1)}}))
	m.AddTrack(NewTrack("empty", nil))
	assert.Equal(t, []midi.Event{midi.NewNoteOff(0, 0, 7, 1)}, m.AllNotesOff())
}

func TestManagerTempo(t *testing.T) {
	m := NewManager(1000, 100, 120)
	m.SetTempo(10)
	assert.Equal(t, float64(MinTempo), m.Transport().BPM())
	m.SetTempo(500)
	assert.Equal(t, float64(MaxTempo), m.Transport().BPM())
	m.SetTempo(133.5)
	assert.Equal(t, 133.5, m.Transport().BPM())
}

func TestManagerTransport(t *testing.T) {
	m := NewManager(1000, 100, 120)
	m.ProcessBlock(nil)
	assert.Zero(t, m.Transport().PosSamples)

	m.TogglePlay()
	m.ProcessBlock(nil)
	m.ProcessBlock(nil)
	assert.Equal(t, int64(200), m.Transport().PosSamples)

	m.TogglePlay()
	assert.False(t, m.Transport().Playing)
	m.Play()
	assert.Zero(t, m.Transport().PosSamples)
}

func TestManagerFocus(t *testing.T) {
	m := NewManager(1000, 100, 120)
	a := &fixedDevice{name: "a"}
	b := &fixedDevice{name: "b"}
	m.AddTrack(NewTrack("a", a))
	m.AddTrack(NewTrack("empty", nil))
	m.AddTrack(NewTrack("b", b))

	assert.Equal(t, "Session", m.Focused().Name())
	m.FocusNext()
	assert.Same(t, a, m.Focused())
	m.FocusNext()
	assert.Same(t, b, m.Focused())
	m.FocusNext()
	assert.Equal(t, "Session", m.Focused().Name())

	m.FocusTrack(1)
	assert.Equal(t, "Session", m.Focused().Name())
	m.FocusTrack(2)
	assert.Equal(t, "b", m.View())
}

func TestSessionMute(t *testing.T) {
	m := NewManager(1000, 100, 120)
	track := NewTrack("a", &fixedDevice{name: "a"})
	m.AddTrack(track)

	m.HandleKey("m")
	assert.True(t, track.Muted)
	assert.Contains(t, m.View(), "muted")
}

func TestKits(t *testing.T) {
	assert.Equal(t, uint8(40), GetKit("rd8").Notes[1])
	assert.Equal(t, GetKit(DefaultKit), GetKit("nope"))
	assert.Contains(t, KitNames(), "gm")

	params := DefaultEuclidParams("gm")
	assert.True(t, params[0].Enabled)
	assert.False(t, params[1].Enabled)
	assert.Equal(t, uint8(38), params[1].Note)
}

func TestSamplesToTicks(t *testing.T) {
	assert.Equal(t, uint32(960), SamplesToTicks(500, 120, 1000))
	assert.Equal(t, uint32(0), SamplesToTicks(-5, 120, 1000))
	assert.Equal(t, uint32(0), SamplesToTicks(5, 120, 0))
}

func TestWriteSMF(t *testing.T) {
	events := []Stamped{
		{0, midi.NewNoteOn(0, 0, 60, 1)},
		{500, midi.NewNoteOff(0, 0, 60, 0)},
		{1000, midi.NewNoteOn(0, 0, 64, 1)},
		{1250, midi.NewNoteOff(0, 0, 64, 0)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, events, 120, 1000))

	rd, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rd.Tracks, 1)

	type hit struct {
		tick uint32
		on   bool
		key  uint8
	}
	var hits []hit
	var tick uint32
	for _, ev := range rd.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		msg := gomidi.Message(ev.Message)
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			hits = append(hits, hit{tick, true, key})
		case msg.GetNoteOff(&ch, &key, &vel):
			hits = append(hits, hit{tick, false, key})
		}
	}
	assert.Equal(t, []hit{
		{0, true, 60},
		{960, false, 60},
		{1920, true, 64},
		{2400, false, 64},
	}, hits)
}

func TestSettingsSelectsOutput(t *testing.T) {
	m := NewManager(1000, 100, 120)
	m.SetMIDIPorts([]string{"Keys"}, []string{"Synth A", "Synth B"})
	m.FocusSettings()

	m.HandleKey("j")
	m.HandleKey("enter")
	assert.Equal(t, "Synth B", m.DefaultPort())
	assert.Contains(t, m.View(), "Keys")

	m.SetMIDIPorts(nil, []string{"Synth A"})
	m.HandleKey("enter")
	assert.Equal(t, "Synth A", m.DefaultPort())
}

func TestRender(t *testing.T) {
	m, _ := euclidManager()
	keys := NewPatternsDevice(harmony.DefaultParams())
	m.AddTrack(NewTrack("keys", keys))

	first := append(chordOn(0, 72, 74, 76), midi.NewNoteOn(0, 0, 62, 1))
	out := Render(m, 1000, first)

	assert.Equal(t, []Stamped{
		{0, midi.NewNoteOn(0, 0, 36, 1)},
		{0, midi.NewNoteOn(0, 0, 76, 1)},
		{250, midi.NewNoteOff(50, 0, 36, 1)},
		{1000, midi.NewNoteOff(0, 0, 76, 1)},
	}, out)
	assert.False(t, m.Transport().Playing)
}
