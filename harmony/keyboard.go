package harmony

import "fmt"

// KeyboardMode selects how raw keys are read before chord mapping
type KeyboardMode int

const (
	// AllKeys passes every key through unchanged
	AllKeys KeyboardMode = iota
	// IgnoreBlackKeys drops black keys and packs the white keys into a
	// 7-per-octave index space around middle C
	IgnoreBlackKeys
)

// ReferencePitch is the key every mapping is measured from (C3 / MIDI 60)
const ReferencePitch = 60

var keyboardModeNames = map[KeyboardMode]string{
	AllKeys:         "all-keys",
	IgnoreBlackKeys: "ignore-black-keys",
}

func (m KeyboardMode) String() string {
	if name, ok := keyboardModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("KeyboardMode(%d)", int(m))
}

// Next cycles to the following mode
func (m KeyboardMode) Next() KeyboardMode {
	if m == AllKeys {
		return IgnoreBlackKeys
	}
	return AllKeys
}

func (m KeyboardMode) MarshalText() ([]byte, error) {
	name, ok := keyboardModeNames[m]
	if !ok {
		return nil, fmt.Errorf("invalid keyboard mode %d", int(m))
	}
	return []byte(name), nil
}

func (m *KeyboardMode) UnmarshalText(b []byte) error {
	for mode, name := range keyboardModeNames {
		if name == string(b) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown keyboard mode %q", string(b))
}

// IsBlackKey reports whether pitch is a sharp/flat
func IsBlackKey(pitch uint8) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// blackKeysFromReference counts the black keys between the reference pitch
// and pitch. Keys above the reference count in (60, pitch], keys below count
// in [pitch, 60) and come back negative.
func blackKeysFromReference(pitch uint8) int {
	n := 0
	if pitch >= ReferencePitch {
		for p := ReferencePitch + 1; p <= int(pitch); p++ {
			if IsBlackKey(uint8(p)) {
				n++
			}
		}
		return n
	}
	for p := int(pitch); p < ReferencePitch; p++ {
		if IsBlackKey(uint8(p)) {
			n--
		}
	}
	return n
}

// Apply converts a raw key for mapping. The second result is false when the
// key is filtered out or the result would leave the pitch range.
func (m KeyboardMode) Apply(pitch uint8) (uint8, bool) {
	if pitch > 127 {
		return 0, false
	}
	if m != IgnoreBlackKeys {
		return pitch, true
	}
	if IsBlackKey(pitch) {
		return 0, false
	}
	mapped := int(pitch) - blackKeysFromReference(pitch)
	if mapped < 0 || mapped > 127 {
		return 0, false
	}
	return uint8(mapped), true
}
