// Package harmony maps played "pattern" keys onto the notes of a held chord
// and keeps the mapped notes in sync while the chord changes.
package harmony

// ChordSet is the set of held chord pitches. Ascending order defines the
// chord index: index 0 is always the lowest held pitch.
type ChordSet struct {
	member  [128]bool
	ordered []uint8
}

// NewChordSet creates an empty chord
func NewChordSet(pitches ...uint8) *ChordSet {
	c := &ChordSet{ordered: make([]uint8, 0, 128)}
	for _, p := range pitches {
		c.Insert(p)
	}
	return c
}

// Insert adds pitch. It reports false if it was already held or out of range.
func (c *ChordSet) Insert(pitch uint8) bool {
	if pitch > 127 || c.member[pitch] {
		return false
	}
	c.member[pitch] = true

	at := len(c.ordered)
	for i, p := range c.ordered {
		if p > pitch {
			at = i
			break
		}
	}
	c.ordered = append(c.ordered, 0)
	copy(c.ordered[at+1:], c.ordered[at:])
	c.ordered[at] = pitch
	return true
}

// Remove drops pitch. It reports false if it was not held.
func (c *ChordSet) Remove(pitch uint8) bool {
	if pitch > 127 || !c.member[pitch] {
		return false
	}
	c.member[pitch] = false

	for i, p := range c.ordered {
		if p == pitch {
			c.ordered = append(c.ordered[:i], c.ordered[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether pitch is held
func (c *ChordSet) Contains(pitch uint8) bool {
	return pitch <= 127 && c.member[pitch]
}

// Len returns the number of held pitches
func (c *ChordSet) Len() int {
	return len(c.ordered)
}

// Ordered returns the held pitches, lowest first. The slice is shared with
// the set and only valid until the next Insert or Remove.
func (c *ChordSet) Ordered() []uint8 {
	return c.ordered
}

// Clear drops every pitch
func (c *ChordSet) Clear() {
	for _, p := range c.ordered {
		c.member[p] = false
	}
	c.ordered = c.ordered[:0]
}
