package sequencer

import (
	"fmt"
	"strings"

	"go-modular/debug"
	"go-modular/widgets"
)

// SettingsDevice picks the MIDI output port and shows the connected inputs
type SettingsDevice struct {
	manager *Manager

	// Available MIDI ports (cached from last scan)
	midiInputs  []string
	midiOutputs []string

	cursor int
}

// NewSettingsDevice creates a settings device
func NewSettingsDevice(manager *Manager) *SettingsDevice {
	return &SettingsDevice{manager: manager}
}

// SetMIDIPorts updates the list of available MIDI ports
func (s *SettingsDevice) SetMIDIPorts(inputs, outputs []string) {
	s.midiInputs = inputs
	s.midiOutputs = outputs
	if s.cursor >= len(s.midiOutputs) {
		s.cursor = max(0, len(s.midiOutputs)-1)
	}
}

func (s *SettingsDevice) Name() string {
	return "Settings"
}

func (s *SettingsDevice) Process(ctx *Context) {}

func (s *SettingsDevice) AllNotesOff(ctx *Context) {}

func (s *SettingsDevice) View() string {
	var out strings.Builder
	current := s.manager.DefaultPort()

	out.WriteString("SETTINGS  MIDI ports\n\n")
	out.WriteString("Output\n")
	out.WriteString("────────────────────────────────────────\n")
	if len(s.midiOutputs) == 0 {
		out.WriteString("  (no MIDI outputs found)\n")
	}
	for i, port := range s.midiOutputs {
		marker := " "
		if i == s.cursor {
			marker = ">"
		}
		active := " "
		if port == current {
			active = widgets.GateActive
		}
		fmt.Fprintf(&out, "%s %s %s\n", marker, active, port)
	}

	out.WriteString("\nInputs\n")
	out.WriteString("────────────────────────────────────────\n")
	if len(s.midiInputs) == 0 {
		out.WriteString("  (none connected)\n")
	}
	for _, port := range s.midiInputs {
		fmt.Fprintf(&out, "    %s\n", port)
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "select output"},
			{Key: "enter", Desc: "send to selected output"},
		}},
	}))
	return out.String()
}

func (s *SettingsDevice) HandleKey(key string) {
	switch key {
	case "j", "down":
		if s.cursor < len(s.midiOutputs)-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "enter", " ":
		if s.cursor < len(s.midiOutputs) {
			port := s.midiOutputs[s.cursor]
			s.manager.SetDefaultPort(port)
			debug.Log("ports", "output set to %s", port)
		}
	}
}
