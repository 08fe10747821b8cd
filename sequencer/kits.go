package sequencer

import "sort"

// NumVoices is the number of rhythm voices on a Euclid device
const NumVoices = 4

// DrumKit maps the rhythm voices to the notes a drum machine expects
type DrumKit struct {
	Name  string
	Notes [NumVoices]uint8 // kick, snare, closed hat, open hat
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name:  "General MIDI",
		Notes: [NumVoices]uint8{36, 38, 42, 46},
	},
	"rd8": {
		Name:  "Behringer RD-8",
		Notes: [NumVoices]uint8{36, 40, 42, 46}, // RD-8 snare is 40, not 38
	},
	"tr8s": {
		Name:  "Roland TR-8S",
		Notes: [NumVoices]uint8{36, 38, 42, 46},
	},
	"er1": {
		Name:  "Korg ER-1",
		Notes: [NumVoices]uint8{36, 38, 42, 46},
	},
	"voice1": {
		Name:  "Modular voice 1",
		Notes: [NumVoices]uint8{16, 17, 18, 19}, // low trigger notes for CV interfaces
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the available kit names, sorted
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}
