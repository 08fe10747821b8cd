package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteName(t *testing.T) {
	assert.Equal(t, "C3", NoteName(60))
	assert.Equal(t, "C#3", NoteName(61))
	assert.Equal(t, "B2", NoteName(59))
	assert.Equal(t, "C-2", NoteName(0))
	assert.Equal(t, "G8", NoteName(127))
	assert.Equal(t, "C3 E3 G3", NoteNames([]uint8{60, 64, 67}))
	assert.Equal(t, "-", NoteNames(nil))
}

func TestRenderGates(t *testing.T) {
	gates := []bool{true, false, false, true}
	assert.Equal(t, "●··●", RenderGates(gates, -1))
	assert.Equal(t, "▷··●", RenderGates(gates, 0))
	assert.Equal(t, "●▶·●", RenderGates(gates, 1))
}

func TestRenderKeyboard(t *testing.T) {
	out := RenderKeyboard(60, 64, func(uint8) bool { return false }, [3]uint8{255, 0, 0})
	assert.Equal(t, "_'_'_", out)

	out = RenderKeyboard(60, 64, func(p uint8) bool { return p == 62 }, [3]uint8{255, 0, 0})
	assert.True(t, strings.HasPrefix(out, "_'"))
	assert.Contains(t, out, "█")
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Voices", Keys: []KeyBinding{{Key: "j / k", Desc: "select voice"}}}})
	assert.Equal(t, "Voices\n  j / k        select voice", out)
}
