package sequencer

import "go-modular/midi"

// outputCapacity is the per-track event buffer preallocated for one block
const outputCapacity = 256

// Track hosts one device with its own processing context
type Track struct {
	Name   string
	Device Device // nil = empty track
	Muted  bool

	ctx     *Context
	lastOut int // events sent in the last block
}

// NewTrack creates a track running d
func NewTrack(name string, d Device) *Track {
	return &Track{
		Name:   name,
		Device: d,
		ctx:    NewContext(outputCapacity),
	}
}

// HasDevice returns true if this track has a device assigned.
func (t *Track) HasDevice() bool {
	return t.Device != nil
}

// Process runs the device for one block and returns its output. The slice
// is reused by the next call. A muted track keeps processing so its state
// stays current, but only note-offs get through.
func (t *Track) Process(tr Transport, blockSize int, in []midi.Event) []midi.Event {
	if t.Device == nil {
		return nil
	}
	t.ctx.Reset(tr, blockSize, in)
	t.Device.Process(t.ctx)
	if t.Muted {
		t.ctx.Out = keepNoteOffs(t.ctx.Out)
	}
	t.lastOut = len(t.ctx.Out)
	return t.ctx.Out
}

// Active reports whether the last block produced output
func (t *Track) Active() bool {
	return t.lastOut > 0
}

// AllNotesOff asks the device to release everything and returns the events
func (t *Track) AllNotesOff(tr Transport) []midi.Event {
	if t.Device == nil {
		return nil
	}
	t.ctx.Reset(tr, 0, nil)
	t.Device.AllNotesOff(t.ctx)
	return t.ctx.Out
}

func keepNoteOffs(events []midi.Event) []midi.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.Type == midi.NoteOff {
			out = append(out, ev)
		}
	}
	return out
}
