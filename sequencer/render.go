package sequencer

import "go-modular/midi"

// Render plays the manager from the start for length samples, feeding first
// as the input of the first block, and returns its output at absolute
// positions. Sounding notes are released at the end.
func Render(m *Manager, length int64, first []midi.Event) []Stamped {
	var out []Stamped
	m.Play()

	in := first
	for {
		start := m.Transport().PosSamples
		if start >= length {
			break
		}
		out = Stamp(out, start, m.ProcessBlock(in))
		in = nil
	}

	m.Stop()
	return Stamp(out, m.Transport().PosSamples, m.AllNotesOff())
}
