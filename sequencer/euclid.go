package sequencer

import (
	"fmt"
	"strings"

	"go-modular/euclid"
	"go-modular/midi"
	"go-modular/widgets"
)

// voice fields editable from the keyboard
const (
	fieldNote = iota
	fieldVelocity
	fieldNotes
	fieldSteps
	fieldOffset
	fieldStepSize
	numFields
)

var fieldNames = [numFields]string{"note", "vel", "notes", "steps", "offset", "step"}

// EuclidDevice is the rhythm engine: NumVoices Euclidean voices clocked by
// the transport.
type EuclidDevice struct {
	Channel uint8 // output channel, 0-15

	voices [NumVoices]*euclid.Voice
	notes  []euclid.Note // scratch

	// UI
	selected int
	field    int
	lastPos  int64
	lastT    Transport
}

// DefaultEuclidParams returns four voices on the kit's notes with only the
// first enabled.
func DefaultEuclidParams(kit string) [NumVoices]euclid.VoiceParams {
	k := GetKit(kit)
	var params [NumVoices]euclid.VoiceParams
	for i := range params {
		params[i] = euclid.DefaultVoiceParams(k.Notes[i])
	}
	params[0].Enabled = true
	return params
}

// NewEuclidDevice creates a rhythm device
func NewEuclidDevice(params [NumVoices]euclid.VoiceParams, channel uint8) *EuclidDevice {
	d := &EuclidDevice{
		Channel: channel & 0x0F,
		notes:   make([]euclid.Note, 0, 4),
	}
	for i := range d.voices {
		d.voices[i] = euclid.NewVoice(params[i].Clamp())
	}
	return d
}

// Voice returns voice i
func (d *EuclidDevice) Voice(i int) *euclid.Voice {
	return d.voices[i]
}

// Params returns the current parameters of every voice
func (d *EuclidDevice) Params() [NumVoices]euclid.VoiceParams {
	var params [NumVoices]euclid.VoiceParams
	for i, v := range d.voices {
		params[i] = v.Params
	}
	return params
}

func (d *EuclidDevice) Name() string {
	return "Euclid"
}

// Process walks the block sample by sample and lets every voice fire the
// edges at that position. Stopping the transport releases sounding notes.
func (d *EuclidDevice) Process(ctx *Context) {
	t := ctx.Transport
	d.lastT = t
	if !t.Playing {
		d.AllNotesOff(ctx)
		return
	}

	bpm := t.BPM()
	for s := 0; s < ctx.BlockSize; s++ {
		pos := t.PosSamples + int64(s)
		for _, v := range d.voices {
			d.notes = v.Advance(pos, bpm, t.SampleRate, d.notes[:0])
			for _, n := range d.notes {
				ctx.Send(d.event(n, uint32(s)))
			}
		}
	}
	d.lastPos = t.PosSamples + int64(ctx.BlockSize)
}

func (d *EuclidDevice) AllNotesOff(ctx *Context) {
	for _, v := range d.voices {
		d.notes = v.Release(d.notes[:0])
		for _, n := range d.notes {
			ctx.Send(d.event(n, 0))
		}
	}
}

func (d *EuclidDevice) event(n euclid.Note, timing uint32) midi.Event {
	vel := midi.From7Bit(n.Velocity)
	if n.On {
		return midi.NewNoteOn(timing, d.Channel, n.Pitch, vel)
	}
	return midi.NewNoteOff(timing, d.Channel, n.Pitch, vel)
}

// playhead returns the step voice v is on, -1 when stopped
func (d *EuclidDevice) playhead(v *euclid.Voice) int {
	if !d.lastT.Playing || !v.Params.Enabled {
		return -1
	}
	seq := v.Sequence(d.lastT.BPM(), d.lastT.SampleRate)
	if seq.StepSamples() == 0 {
		return -1
	}
	return int(seq.Wrap(d.lastPos) / seq.StepSamples())
}

func (d *EuclidDevice) View() string {
	var out strings.Builder
	fmt.Fprintf(&out, "EUCLID  Channel %d  Voice %d  [%s]\n\n", d.Channel+1, d.selected+1, fieldNames[d.field])

	for i, v := range d.voices {
		p := v.Params
		marker := " "
		if i == d.selected {
			marker = ">"
		}
		state := "off"
		if p.Enabled {
			state = "on "
		}
		gates := euclid.Generate(p.Notes, p.Steps, p.Offset)
		fmt.Fprintf(&out, "%s V%d %s  %-4s vel %3d  %2d/%-2d +%-2d %-4s  %s\n",
			marker, i+1, state, widgets.NoteName(p.Note), p.Velocity,
			p.Notes, p.Steps, p.Offset, p.StepSize, widgets.RenderGates(gates, d.playhead(v)))
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "select voice"},
			{Key: "h / l", Desc: "select field"},
			{Key: "[ / ]", Desc: "decrease/increase field"},
			{Key: "space", Desc: "enable/disable voice"},
			{Key: "< / >", Desc: "output channel"},
		}},
	}))
	return out.String()
}

func (d *EuclidDevice) HandleKey(key string) {
	v := d.voices[d.selected]

	switch key {
	case "j", "down":
		if d.selected < NumVoices-1 {
			d.selected++
		}
	case "k", "up":
		if d.selected > 0 {
			d.selected--
		}
	case "h", "left":
		if d.field > 0 {
			d.field--
		}
	case "l", "right":
		if d.field < numFields-1 {
			d.field++
		}
	case " ":
		v.Params.Enabled = !v.Params.Enabled
	case "[":
		v.Params = adjustVoice(v.Params, d.field, -1)
	case "]":
		v.Params = adjustVoice(v.Params, d.field, 1)
	case "<", ",":
		if d.Channel > 0 {
			d.Channel--
		}
	case ">", ".":
		if d.Channel < 15 {
			d.Channel++
		}
	}
}

func adjustVoice(p euclid.VoiceParams, field, delta int) euclid.VoiceParams {
	switch field {
	case fieldNote:
		p.Note = uint8(int(p.Note) + delta)
	case fieldVelocity:
		p.Velocity = uint8(int(p.Velocity) + delta)
	case fieldNotes:
		p.Notes += delta
	case fieldSteps:
		p.Steps += delta
	case fieldOffset:
		p.Offset += delta
	case fieldStepSize:
		if delta > 0 {
			p.StepSize = p.StepSize.Shorter()
		} else {
			p.StepSize = p.StepSize.Longer()
		}
	}
	return p.Clamp()
}
