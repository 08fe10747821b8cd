package sequencer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"go-modular/harmony"
	"go-modular/midi"
	"go-modular/widgets"
)

// settings editable from the keyboard
const (
	settingChordChannel = iota
	settingThreshold
	settingAuto
	settingOctaveRange
	settingKeyboardMode
	numSettings
)

var chordColor = [3]uint8{253, 157, 110}

var settingNames = [numSettings]string{"chord channel", "wrap threshold", "auto threshold", "octave range", "keyboard mode"}

// PatternsDevice is the harmonic engine: keys on the chord channel hold a
// chord, keys on every other channel are mapped onto it.
type PatternsDevice struct {
	Params harmony.Params

	proc   *harmony.Processor
	sorted []midi.Event // block input in timing order
	other  []midi.Event // non-note pattern events of the current cycle
	held   []harmony.HeldKey

	// set when held keys can no longer be found by their release
	flush bool

	cursor int
}

// NewPatternsDevice creates a harmonic device
func NewPatternsDevice(params harmony.Params) *PatternsDevice {
	return &PatternsDevice{
		Params: params.Clamp(),
		proc:   harmony.NewProcessor(),
		sorted: make([]midi.Event, 0, 128),
		other:  make([]midi.Event, 0, 32),
		held:   make([]harmony.HeldKey, 0, 16),
	}
}

// Processor exposes the state machine (tests, monitor)
func (d *PatternsDevice) Processor() *harmony.Processor {
	return d.proc
}

func (d *PatternsDevice) Name() string {
	return "Patterns"
}

// Process handles the block's input in timing order. Events sharing a
// timing form one cycle; the cycle ends before the first event with a new
// timing and once more after the last event. A block without input still
// ends one cycle at timing 0 so setting changes retrigger held keys.
func (d *PatternsDevice) Process(ctx *Context) {
	if d.flush {
		d.AllNotesOff(ctx)
		d.flush = false
	}

	d.sorted = append(d.sorted[:0], ctx.In...)
	slices.SortStableFunc(d.sorted, func(a, b midi.Event) int {
		return cmp.Compare(a.Timing, b.Timing)
	})

	chordCh := d.Params.ChordChannelIndex()
	var cycle uint32
	for i, ev := range d.sorted {
		if i == 0 {
			cycle = ev.Timing
		} else if ev.Timing != cycle {
			d.endCycle(ctx, cycle)
			cycle = ev.Timing
		}

		if ev.Channel == chordCh {
			d.proc.ChordEvent(ev)
			continue
		}
		if !d.proc.PatternEvent(ev) {
			d.other = append(d.other, ev)
		}
	}
	d.endCycle(ctx, cycle)
}

func (d *PatternsDevice) endCycle(ctx *Context, timing uint32) {
	threshold := d.Params.Threshold(d.proc.Chord.Len())
	ctx.Out = d.proc.EndCycle(ctx.Out, timing, threshold, d.Params.OctaveRange, d.Params.KeyboardMode)

	for _, ev := range d.other {
		if mapped, ok := d.proc.Remap(ev, threshold, d.Params.OctaveRange, d.Params.KeyboardMode); ok {
			ctx.Send(mapped)
		}
	}
	d.other = d.other[:0]
}

func (d *PatternsDevice) AllNotesOff(ctx *Context) {
	ctx.Out = d.proc.AllNotesOff(ctx.Out, 0)
}

func (d *PatternsDevice) View() string {
	var out strings.Builder
	chord := d.proc.Chord.Ordered()
	threshold := d.Params.Threshold(len(chord))

	fmt.Fprintf(&out, "PATTERNS  Chord ch %d  Threshold %d  Range %d  %s\n\n",
		d.Params.ChordChannel, threshold, d.Params.OctaveRange, d.Params.KeyboardMode)

	for i := 0; i < numSettings; i++ {
		marker := " "
		if i == d.cursor {
			marker = ">"
		}
		fmt.Fprintf(&out, "%s %-15s %s\n", marker, settingNames[i], d.settingValue(i))
	}

	out.WriteString("\n")
	fmt.Fprintf(&out, "  chord   %s\n", widgets.NoteNames(chord))
	out.WriteString("          " + widgets.RenderKeyboard(48, 84, d.proc.Chord.Contains, chordColor) + "\n")
	out.WriteString("          " + widgets.RenderLegendItem(chordColor, "chord", "keys held on the chord channel") + "\n")

	d.held = d.proc.Held(d.held[:0])
	if len(d.held) == 0 {
		out.WriteString("  held    -\n")
	}
	for i, h := range d.held {
		label := "        "
		if i == 0 {
			label = "  held  "
		}
		target := "-"
		if h.Mapping.Triggers {
			target = widgets.NoteName(h.Mapping.Pitch)
		}
		fmt.Fprintf(&out, "%s %-4s -> slot %d oct %+d -> %s\n", label, widgets.NoteName(h.Raw), h.Mapping.ChordIndex, h.Mapping.Octave, target)
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "select setting"},
			{Key: "[ / ]", Desc: "decrease/increase setting"},
			{Key: "space", Desc: "toggle auto threshold / keyboard mode"},
		}},
	}))
	return out.String()
}

func (d *PatternsDevice) settingValue(i int) string {
	switch i {
	case settingChordChannel:
		return fmt.Sprint(d.Params.ChordChannel)
	case settingThreshold:
		return fmt.Sprint(d.Params.WrapThreshold)
	case settingAuto:
		if d.Params.AutoThreshold {
			return "on"
		}
		return "off"
	case settingOctaveRange:
		return fmt.Sprint(d.Params.OctaveRange)
	case settingKeyboardMode:
		return d.Params.KeyboardMode.String()
	}
	return ""
}

func (d *PatternsDevice) HandleKey(key string) {
	p := &d.Params
	before := *p

	switch key {
	case "j", "down":
		if d.cursor < numSettings-1 {
			d.cursor++
		}
	case "k", "up":
		if d.cursor > 0 {
			d.cursor--
		}
	case "[", "]":
		delta := 1
		if key == "[" {
			delta = -1
		}
		switch d.cursor {
		case settingChordChannel:
			p.ChordChannel += delta
		case settingThreshold:
			p.WrapThreshold += delta
		case settingOctaveRange:
			p.OctaveRange += delta
		case settingAuto:
			p.AutoThreshold = !p.AutoThreshold
		case settingKeyboardMode:
			p.KeyboardMode = p.KeyboardMode.Next()
		}
	case " ", "enter":
		switch d.cursor {
		case settingAuto:
			p.AutoThreshold = !p.AutoThreshold
		case settingKeyboardMode:
			p.KeyboardMode = p.KeyboardMode.Next()
		}
	}
	*p = p.Clamp()

	if p.KeyboardMode != before.KeyboardMode || p.ChordChannel != before.ChordChannel {
		d.flush = true
	}
}
