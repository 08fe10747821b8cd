package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gate cell symbols
const (
	GateEmpty    = "·"
	GateActive   = "●"
	GatePlayhead = "▶"
	GateHit      = "▷" // playhead on an active step
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI key with middle C (60) as C3
func NoteName(pitch uint8) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], int(pitch)/12-2)
}

// NoteNames formats a list of keys, "-" when empty
func NoteNames(pitches []uint8) string {
	if len(pitches) == 0 {
		return "-"
	}
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = NoteName(p)
	}
	return strings.Join(names, " ")
}

// RenderGates renders a step pattern, marking the playhead step (-1 for none)
func RenderGates(gates []bool, playhead int) string {
	var out strings.Builder
	for i, g := range gates {
		switch {
		case i == playhead && g:
			out.WriteString(GateHit)
		case i == playhead:
			out.WriteString(GatePlayhead)
		case g:
			out.WriteString(GateActive)
		default:
			out.WriteString(GateEmpty)
		}
	}
	return out.String()
}

// RenderKeyboard draws keys lo..hi as a strip, white keys as "_" and black
// keys as "'", with lit keys shown as a solid block in color.
func RenderKeyboard(lo, hi uint8, lit func(uint8) bool, color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	var out strings.Builder
	for p := int(lo); p <= int(hi); p++ {
		key := uint8(p)
		switch {
		case lit(key):
			out.WriteString(style.Render("█"))
		case isBlack(key):
			out.WriteString("'")
		default:
			out.WriteString("_")
		}
	}
	return out.String()
}

func isBlack(p uint8) bool {
	switch p % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return fmt.Sprintf("  %s %s - %s", style.Render("■"), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
