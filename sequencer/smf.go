package sequencer

import (
	"io"
	"math"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-modular/midi"
)

// TicksPerQuarter is the resolution of written MIDI files
const TicksPerQuarter = 960

// Stamped is an event at an absolute sample position
type Stamped struct {
	Sample int64
	Event  midi.Event
}

// Stamp converts block output to absolute positions, given the block's
// first sample.
func Stamp(out []Stamped, blockStart int64, events []midi.Event) []Stamped {
	for _, ev := range events {
		out = append(out, Stamped{Sample: blockStart + int64(ev.Timing), Event: ev})
	}
	return out
}

// SamplesToTicks converts a sample position to file ticks at a fixed tempo
func SamplesToTicks(sample int64, tempo, sampleRate float64) uint32 {
	if sample <= 0 || sampleRate <= 0 {
		return 0
	}
	beats := float64(sample) / sampleRate * clampTempo(tempo) / 60.0
	return uint32(math.Round(beats * TicksPerQuarter))
}

// WriteSMF writes events (sorted by sample) as a single-track Standard MIDI
// File at a fixed tempo.
func WriteSMF(w io.Writer, events []Stamped, tempo, sampleRate float64) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(clampTempo(tempo)))

	var last uint32
	for _, st := range events {
		msg := st.Event.Message()
		if msg == nil {
			continue
		}
		tick := SamplesToTicks(st.Sample, tempo, sampleRate)
		if tick < last {
			tick = last
		}
		tr.Add(tick-last, msg)
		last = tick
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return fault.Wrap(err, fmsg.With("add track"))
	}
	if _, err := s.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("write midi file"))
	}
	return nil
}
