package euclid

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-modular/debug"
)

// Parameter ranges for a rhythm voice
const (
	MinNote     = 1
	MaxNote     = 127
	MinVelocity = 1
	MaxVelocity = 127
	MinNotes    = 1
	MaxNotes    = 64
	MinSteps    = 1
	MaxSteps    = 64
	MinOffset   = 0
	MaxOffset   = 64
)

// VoiceParams configures one rhythm voice
type VoiceParams struct {
	Note     uint8    `json:"note"`
	Velocity uint8    `json:"velocity"`
	Notes    int      `json:"notes"`
	Steps    int      `json:"steps"`
	Offset   int      `json:"offset"`
	StepSize StepSize `json:"stepSize"`
	Enabled  bool     `json:"enabled"`
}

// DefaultVoiceParams returns a disabled 2-in-8 sixteenth pattern playing note
func DefaultVoiceParams(note uint8) VoiceParams {
	return VoiceParams{
		Note:     note,
		Velocity: 127,
		Notes:    2,
		Steps:    8,
		Offset:   0,
		StepSize: Step1_16,
	}
}

// Validate reports the first parameter outside its range
func (p VoiceParams) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			msg := fmt.Sprintf("%s %d out of range %d..%d", name, v, lo, hi)
			return fault.New(msg, fmsg.WithDesc(msg, fmt.Sprintf("Voice %s must be between %d and %d.", name, lo, hi)))
		}
		return nil
	}
	if err := check("note", int(p.Note), MinNote, MaxNote); err != nil {
		return err
	}
	if err := check("velocity", int(p.Velocity), MinVelocity, MaxVelocity); err != nil {
		return err
	}
	if err := check("notes", p.Notes, MinNotes, MaxNotes); err != nil {
		return err
	}
	if err := check("steps", p.Steps, MinSteps, MaxSteps); err != nil {
		return err
	}
	if err := check("offset", p.Offset, MinOffset, MaxOffset); err != nil {
		return err
	}
	if !p.StepSize.Valid() {
		return fault.New(fmt.Sprintf("invalid step size %d", int(p.StepSize)),
			fmsg.WithDesc("invalid step size", "Voice step size must be one of 1/1 .. 1/64."))
	}
	return nil
}

// Clamp forces every parameter into range
func (p VoiceParams) Clamp() VoiceParams {
	p.Note = uint8(clamp(int(p.Note), MinNote, MaxNote))
	p.Velocity = uint8(clamp(int(p.Velocity), MinVelocity, MaxVelocity))
	p.Notes = clamp(p.Notes, MinNotes, MaxNotes)
	p.Steps = clamp(p.Steps, MinSteps, MaxSteps)
	p.Offset = clamp(p.Offset, MinOffset, MaxOffset)
	if !p.StepSize.Valid() {
		p.StepSize = Step1_16
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Note is a timeline edge resolved to a pitch
type Note struct {
	On       bool
	Pitch    uint8
	Velocity uint8
}

// seqKey is everything a Sequence depends on
type seqKey struct {
	notes, steps, offset int
	stepSize             StepSize
	tempo, sampleRate    float64
}

// Voice is one rhythm voice: parameters, a cached timeline and the note it
// is currently sounding.
type Voice struct {
	Params VoiceParams

	seq      *Sequence
	key      seqKey
	rebuilds int

	sounding      bool
	soundingPitch uint8
	soundingVel   uint8
}

// NewVoice creates a voice with the given parameters
func NewVoice(p VoiceParams) *Voice {
	return &Voice{Params: p}
}

// Sequence returns the timeline for the current parameters, rebuilding it
// only when something it depends on has changed.
func (v *Voice) Sequence(tempo, sampleRate float64) *Sequence {
	key := seqKey{
		notes:      v.Params.Notes,
		steps:      v.Params.Steps,
		offset:     v.Params.Offset,
		stepSize:   v.Params.StepSize,
		tempo:      tempo,
		sampleRate: sampleRate,
	}
	if v.seq != nil && key == v.key {
		return v.seq
	}

	gates := Generate(key.notes, key.steps, key.offset)
	v.seq = Build(gates, key.stepSize.Beats(), tempo, sampleRate)
	v.key = key
	v.rebuilds++
	debug.Log("euclid", "rebuild %d/%d+%d %s @%.2fbpm: period=%d events=%d",
		key.notes, key.steps, key.offset, key.stepSize, tempo, v.seq.Length(), len(v.seq.Events))
	return v.seq
}

// Rebuilds returns how many times the timeline has been built
func (v *Voice) Rebuilds() int {
	return v.rebuilds
}

// Sounding returns the pitch the voice is holding, if any
func (v *Voice) Sounding() (uint8, bool) {
	return v.soundingPitch, v.sounding
}

// Advance appends the edges that fire at absolute sample position pos.
// A disabled voice only releases what it is sounding.
func (v *Voice) Advance(pos int64, tempo, sampleRate float64, out []Note) []Note {
	if !v.Params.Enabled {
		return v.Release(out)
	}
	seq := v.Sequence(tempo, sampleRate)
	for _, ev := range seq.EventsAt(seq.Wrap(pos)) {
		if !ev.On {
			out = v.Release(out)
			continue
		}
		out = v.Release(out)
		v.sounding = true
		v.soundingPitch = v.Params.Note
		v.soundingVel = v.Params.Velocity
		out = append(out, Note{On: true, Pitch: v.soundingPitch, Velocity: v.soundingVel})
	}
	return out
}

// Release appends a note-off for the sounding pitch, if there is one
func (v *Voice) Release(out []Note) []Note {
	if !v.sounding {
		return out
	}
	v.sounding = false
	return append(out, Note{On: false, Pitch: v.soundingPitch, Velocity: v.soundingVel})
}
