// Package euclid generates Euclidean step patterns and turns them into
// looping, sample-indexed note timelines.
package euclid

// Generate distributes notes onsets over steps gates.
//
// Onsets start out evenly spaced, floor(steps/notes) apart. The steps%notes
// leftover steps are handed to the gaps one by one, starting at the gap
// under a cursor seeded with offset and moving forward past gaps that were
// already widened. The finished pattern is then rotated right by offset.
//
// The result always has exactly notes true entries when
// 0 < notes <= steps, and is all false otherwise.
func Generate(notes, steps, offset int) []bool {
	if steps < 0 {
		steps = 0
	}
	gates := make([]bool, steps)
	if notes <= 0 || notes > steps {
		return gates
	}
	if offset < 0 {
		offset = 0
	}

	fill := steps / notes
	remainder := steps % notes

	// gap[i] is the distance from onset i to onset i+1
	gaps := make([]int, notes)
	widened := make([]bool, notes)
	for i := range gaps {
		gaps[i] = fill
	}

	cursor := offset % notes
	for r := 0; r < remainder; r++ {
		for widened[cursor] {
			cursor = (cursor + 1) % notes
		}
		gaps[cursor]++
		widened[cursor] = true
		cursor = (cursor + 1) % notes
	}

	pos := 0
	for _, g := range gaps {
		gates[pos] = true
		pos += g
	}

	rotateRight(gates, offset)
	return gates
}

// rotateRight rotates s in place by k positions (k taken modulo len(s))
func rotateRight(s []bool, k int) {
	n := len(s)
	if n == 0 {
		return
	}
	k %= n
	if k == 0 {
		return
	}
	reverse(s)
	reverse(s[:k])
	reverse(s[k:])
}

func reverse(s []bool) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Count returns the number of true gates
func Count(gates []bool) int {
	n := 0
	for _, g := range gates {
		if g {
			n++
		}
	}
	return n
}
