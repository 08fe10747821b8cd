package euclid

import (
	"fmt"
	"strconv"
	"strings"
)

// StepSize is the musical length of one step, as a fraction of a whole note
type StepSize int

const (
	Step1_1 StepSize = iota
	Step1_2
	Step1_4
	Step1_8
	Step1_16
	Step1_32
	Step1_64
)

var stepDivisors = [...]int{1, 2, 4, 8, 16, 32, 64}

// StepSizes lists every step size from longest to shortest
var StepSizes = []StepSize{Step1_1, Step1_2, Step1_4, Step1_8, Step1_16, Step1_32, Step1_64}

// Valid reports whether s is one of the defined sizes
func (s StepSize) Valid() bool {
	return s >= Step1_1 && s <= Step1_64
}

// Divisor returns n for a 1/n step (16 for sixteenth notes)
func (s StepSize) Divisor() int {
	if !s.Valid() {
		return stepDivisors[Step1_16]
	}
	return stepDivisors[s]
}

// Beats returns the step length in quarter notes
func (s StepSize) Beats() float64 {
	return 4.0 / float64(s.Divisor())
}

func (s StepSize) String() string {
	return fmt.Sprintf("1/%d", s.Divisor())
}

// Shorter returns the next shorter step size, saturating at 1/64
func (s StepSize) Shorter() StepSize {
	if s >= Step1_64 {
		return Step1_64
	}
	return s + 1
}

// Longer returns the next longer step size, saturating at 1/1
func (s StepSize) Longer() StepSize {
	if s <= Step1_1 {
		return Step1_1
	}
	return s - 1
}

// ParseStepSize parses "1/16" (or just "16")
func ParseStepSize(text string) (StepSize, error) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "1/")
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("step size %q: %w", text, err)
	}
	for i, d := range stepDivisors {
		if d == n {
			return StepSize(i), nil
		}
	}
	return 0, fmt.Errorf("step size %q: must be one of 1/1 .. 1/64", text)
}

func (s StepSize) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid step size %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *StepSize) UnmarshalText(b []byte) error {
	v, err := ParseStepSize(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
