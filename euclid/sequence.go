package euclid

import "math"

// minTempo keeps tempo divisions finite
const minTempo = 0.00001

// Event is one gate edge of a rhythm timeline
type Event struct {
	Offset int64 // sample position inside one period
	On     bool  // true = onset, false = release
}

// Sequence is a looping, sample-indexed set of gate edges.
type Sequence struct {
	Events []Event

	length      int64
	stepSamples int64

	// events by wrapped offset, releases ahead of onsets
	index map[int64][]Event
}

// NewSequence creates an empty sequence with the given period, clamped to at
// least one sample.
func NewSequence(length int64) *Sequence {
	if length < 1 {
		length = 1
	}
	return &Sequence{
		length: length,
		index:  make(map[int64][]Event),
	}
}

// BeatsToSamples converts quarter notes to samples at the given tempo.
// Tempos at or below zero are clamped to a tiny positive value.
func BeatsToSamples(beats, tempo, sampleRate float64) int64 {
	return int64(math.Round(beats / math.Max(tempo, minTempo) * 60.0 * sampleRate))
}

// Build lays gates out on a timeline: every true gate i produces an onset at
// i*step and a release at (i+1)*step, where step is stepBeats converted to
// samples. The period is step*len(gates).
func Build(gates []bool, stepBeats, tempo, sampleRate float64) *Sequence {
	step := BeatsToSamples(stepBeats, tempo, sampleRate)
	if step < 0 {
		step = 0
	}

	seq := NewSequence(step * int64(len(gates)))
	seq.stepSamples = step
	if step == 0 {
		// a zero-length step cannot sound
		return seq
	}

	seq.Events = make([]Event, 0, 2*Count(gates))
	for i, g := range gates {
		if !g {
			continue
		}
		seq.Add(Event{Offset: int64(i) * step, On: true})
		seq.Add(Event{Offset: int64(i+1) * step, On: false})
	}
	return seq
}

// Length returns the period in samples (always >= 1)
func (s *Sequence) Length() int64 {
	return s.length
}

// StepSamples returns the length of one step in samples
func (s *Sequence) StepSamples() int64 {
	return s.stepSamples
}

// Add appends an event. It is indexed at its wrapped offset, so a release
// that falls on the period boundary fires at position 0 of the next loop.
func (s *Sequence) Add(ev Event) {
	s.Events = append(s.Events, ev)

	key := s.Wrap(ev.Offset)
	bucket := s.index[key]
	if ev.On {
		s.index[key] = append(bucket, ev)
		return
	}
	at := len(bucket)
	for i, e := range bucket {
		if e.On {
			at = i
			break
		}
	}
	bucket = append(bucket, Event{})
	copy(bucket[at+1:], bucket[at:])
	bucket[at] = ev
	s.index[key] = bucket
}

// Wrap maps an absolute sample position into [0, Length()), wrapping
// negative positions around from the end.
func (s *Sequence) Wrap(pos int64) int64 {
	length := s.length
	if length < 1 {
		length = 1
	}
	w := pos % length
	if w < 0 {
		w += length
	}
	return w
}

// EventsAt returns the events at a wrapped position. The returned slice is
// shared with the sequence and must not be modified.
func (s *Sequence) EventsAt(wrapped int64) []Event {
	return s.index[wrapped]
}
