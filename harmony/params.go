package harmony

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// Params configures the harmonic engine
type Params struct {
	ChordChannel  int          `json:"chordChannel"`  // 1-16
	WrapThreshold int          `json:"wrapThreshold"` // 1-12, ignored with AutoThreshold
	AutoThreshold bool         `json:"autoThreshold"`
	OctaveRange   int          `json:"octaveRange"` // 1-127
	KeyboardMode  KeyboardMode `json:"keyboardMode"`
}

// DefaultParams returns the stock settings: chords on channel 16, automatic
// threshold, one octave per wrap.
func DefaultParams() Params {
	return Params{
		ChordChannel:  16,
		WrapThreshold: 12,
		AutoThreshold: true,
		OctaveRange:   12,
		KeyboardMode:  AllKeys,
	}
}

// Threshold returns the wrap threshold for a chord of chordLen notes
func (p Params) Threshold(chordLen int) int {
	if p.AutoThreshold {
		return max(chordLen, 1)
	}
	return max(p.WrapThreshold, 1)
}

// ChordChannelIndex returns the 0-based chord channel
func (p Params) ChordChannelIndex() uint8 {
	return uint8(clampInt(p.ChordChannel, 1, 16) - 1)
}

// Validate reports the first out-of-range setting
func (p Params) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			msg := fmt.Sprintf("%s %d out of range %d..%d", name, v, lo, hi)
			return fault.New(msg, fmsg.WithDesc(msg, fmt.Sprintf("Patterns %s must be between %d and %d.", name, lo, hi)))
		}
		return nil
	}
	if err := check("chord channel", p.ChordChannel, 1, 16); err != nil {
		return err
	}
	if err := check("wrap threshold", p.WrapThreshold, 1, 12); err != nil {
		return err
	}
	if err := check("octave range", p.OctaveRange, 1, 127); err != nil {
		return err
	}
	if _, ok := keyboardModeNames[p.KeyboardMode]; !ok {
		return fault.New(fmt.Sprintf("invalid keyboard mode %d", int(p.KeyboardMode)),
			fmsg.WithDesc("invalid keyboard mode", "Keyboard mode must be all-keys or ignore-black-keys."))
	}
	return nil
}

// Clamp forces every setting into range
func (p Params) Clamp() Params {
	p.ChordChannel = clampInt(p.ChordChannel, 1, 16)
	p.WrapThreshold = clampInt(p.WrapThreshold, 1, 12)
	p.OctaveRange = clampInt(p.OctaveRange, 1, 127)
	if _, ok := keyboardModeNames[p.KeyboardMode]; !ok {
		p.KeyboardMode = AllKeys
	}
	return p
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
