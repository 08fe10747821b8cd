package harmony

import "go-modular/midi"

// heldNote is a pattern key that is down, with what it currently triggers
type heldNote struct {
	active   bool
	raw      uint8
	channel  uint8
	velocity float32
	voiceID  int32
	hasVoice bool
	mapping  Mapping
}

func (h *heldNote) noteOn(timing uint32) (midi.Event, bool) {
	if !h.mapping.Triggers {
		return midi.Event{}, false
	}
	return h.event(midi.NoteOn, timing), true
}

func (h *heldNote) noteOff(timing uint32) (midi.Event, bool) {
	if !h.mapping.Triggers {
		return midi.Event{}, false
	}
	return h.event(midi.NoteOff, timing), true
}

func (h *heldNote) event(typ uint8, timing uint32) midi.Event {
	return midi.Event{
		Type:     typ,
		Timing:   timing,
		Channel:  h.channel,
		Note:     h.mapping.Pitch,
		Velocity: h.velocity,
		VoiceID:  h.voiceID,
		HasVoice: h.hasVoice,
	}
}

// Processor is the pattern state machine. Chord events change the chord
// immediately; pattern presses and releases are queued and applied by
// EndCycle, which emits the note-offs and note-ons needed to move every held
// key onto its current chord note.
//
// A Processor is not safe for concurrent use.
type Processor struct {
	Chord *ChordSet

	pressed  []midi.Event
	released []midi.Event

	// keyed by keyboard-filtered pitch
	held  [128]heldNote
	nHeld int
}

// NewProcessor creates a processor with an empty chord
func NewProcessor() *Processor {
	return &Processor{
		Chord:    NewChordSet(),
		pressed:  make([]midi.Event, 0, 64),
		released: make([]midi.Event, 0, 64),
	}
}

// ChordEvent applies a chord-channel event: note-on adds the key to the
// chord, note-off removes it, anything else is ignored.
func (p *Processor) ChordEvent(ev midi.Event) {
	switch ev.Type {
	case midi.NoteOn:
		p.Chord.Insert(ev.Note)
	case midi.NoteOff:
		p.Chord.Remove(ev.Note)
	}
}

// PatternEvent queues a pattern key press or release for the next EndCycle.
// It reports false for events that are not notes.
func (p *Processor) PatternEvent(ev midi.Event) bool {
	switch ev.Type {
	case midi.NoteOn:
		p.pressed = append(p.pressed, ev)
	case midi.NoteOff:
		p.released = append(p.released, ev)
	default:
		return false
	}
	return true
}

// Pending returns the number of queued presses and releases
func (p *Processor) Pending() (pressed, released int) {
	return len(p.pressed), len(p.released)
}

// EndCycle drains the queues and appends the resulting events to out:
// releases first (at their own timing), then held keys whose mapping
// changed are retriggered at timing, then new presses (at their own timing).
func (p *Processor) EndCycle(out []midi.Event, timing uint32, threshold, octaveRange int, mode KeyboardMode) []midi.Event {
	chord := p.Chord.Ordered()

	for _, ev := range p.released {
		key, ok := mode.Apply(ev.Note)
		if !ok {
			continue
		}
		h := &p.held[key]
		if !h.active {
			continue
		}
		if off, ok := h.noteOff(ev.Timing); ok {
			out = append(out, off)
		}
		*h = heldNote{}
		p.nHeld--
	}
	p.released = p.released[:0]

	if p.nHeld > 0 {
		for key := range p.held {
			h := &p.held[key]
			if !h.active {
				continue
			}
			m := Map(uint8(key), threshold, chord, octaveRange)
			if m == h.mapping {
				continue
			}
			if off, ok := h.noteOff(timing); ok {
				out = append(out, off)
			}
			h.mapping = m
			if on, ok := h.noteOn(timing); ok {
				out = append(out, on)
			}
		}
	}

	for _, ev := range p.pressed {
		key, ok := mode.Apply(ev.Note)
		if !ok {
			continue
		}
		h := &p.held[key]
		if !h.active {
			p.nHeld++
		}
		// a second press of a held key replaces it without a note-off
		*h = heldNote{
			active:   true,
			raw:      ev.Note,
			channel:  ev.Channel,
			velocity: ev.Velocity,
			voiceID:  ev.VoiceID,
			hasVoice: ev.HasVoice,
			mapping:  Map(key, threshold, chord, octaveRange),
		}
		if on, ok := h.noteOn(ev.Timing); ok {
			out = append(out, on)
		}
	}
	p.pressed = p.pressed[:0]

	return out
}

// Remap moves a pitch-carrying event (poly pressure) onto the chord note its
// key currently triggers. It reports false when the key triggers nothing.
// Events without a pitch are returned unchanged.
func (p *Processor) Remap(ev midi.Event, threshold, octaveRange int, mode KeyboardMode) (midi.Event, bool) {
	pitch, ok := ev.Pitch()
	if !ok {
		return ev, true
	}
	key, ok := mode.Apply(pitch)
	if !ok {
		return ev, false
	}
	m := Map(key, threshold, p.Chord.Ordered(), octaveRange)
	if !m.Triggers {
		return ev, false
	}
	return ev.WithPitch(m.Pitch), true
}

// AllNotesOff releases every sounding mapped note at timing and forgets all
// held keys and queued events. The chord is kept.
func (p *Processor) AllNotesOff(out []midi.Event, timing uint32) []midi.Event {
	for key := range p.held {
		h := &p.held[key]
		if !h.active {
			continue
		}
		if off, ok := h.noteOff(timing); ok {
			out = append(out, off)
		}
		*h = heldNote{}
	}
	p.nHeld = 0
	p.pressed = p.pressed[:0]
	p.released = p.released[:0]
	return out
}

// HeldKey describes one held pattern key, for display
type HeldKey struct {
	Key     uint8 // keyboard-filtered pitch
	Raw     uint8
	Mapping Mapping
}

// Held appends the held pattern keys in ascending key order
func (p *Processor) Held(out []HeldKey) []HeldKey {
	if p.nHeld == 0 {
		return out
	}
	for key := range p.held {
		h := &p.held[key]
		if h.active {
			out = append(out, HeldKey{Key: uint8(key), Raw: h.raw, Mapping: h.mapping})
		}
	}
	return out
}

// HeldCount returns the number of held pattern keys
func (p *Processor) HeldCount() int {
	return p.nHeld
}
