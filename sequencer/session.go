package sequencer

import (
	"fmt"
	"strings"

	"go-modular/widgets"
)

// SessionDevice is the track overview. It produces no notes.
type SessionDevice struct {
	tracks []*Track

	// UI state
	cursor int
}

func NewSessionDevice() *SessionDevice {
	return &SessionDevice{}
}

// Device interface implementation

func (s *SessionDevice) Name() string {
	return "Session"
}

func (s *SessionDevice) Process(ctx *Context) {}

func (s *SessionDevice) AllNotesOff(ctx *Context) {}

func (s *SessionDevice) View() string {
	var out strings.Builder
	out.WriteString("SESSION  Tracks\n\n")

	if len(s.tracks) == 0 {
		out.WriteString("  no tracks\n")
	}
	for i, t := range s.tracks {
		marker := " "
		if i == s.cursor {
			marker = ">"
		}
		device := "-"
		if t.HasDevice() {
			device = t.Device.Name()
		}
		state := " "
		if t.Active() {
			state = widgets.GateActive
		}
		muted := ""
		if t.Muted {
			muted = "muted"
		}
		fmt.Fprintf(&out, "%s %d  %-10s %-10s %s %s\n", marker, i+1, t.Name, device, state, muted)
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "select track"},
			{Key: "m", Desc: "mute/unmute track"},
			{Key: "1-9", Desc: "focus device on that track"},
		}},
	}))
	return out.String()
}

func (s *SessionDevice) HandleKey(key string) {
	switch key {
	case "j", "down":
		if s.cursor < len(s.tracks)-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case "m", " ":
		if s.cursor < len(s.tracks) {
			s.tracks[s.cursor].Muted = !s.tracks[s.cursor].Muted
		}
	}
}
