package harmony

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllKeysIdentity(t *testing.T) {
	for p := 0; p < 128; p++ {
		got, ok := AllKeys.Apply(uint8(p))
		require.True(t, ok)
		assert.Equal(t, uint8(p), got)
	}
	_, ok := AllKeys.Apply(128)
	assert.False(t, ok)
}

func TestIgnoreBlackKeys(t *testing.T) {
	tests := []struct {
		pitch uint8
		want  uint8
		ok    bool
	}{
		{60, 60, true},
		{61, 0, false},
		{62, 61, true},
		{64, 62, true},
		{65, 63, true},
		{72, 67, true},
		{59, 59, true},
		{58, 0, false},
		{57, 58, true},
		{55, 57, true},
		{48, 53, true},
		{0, 25, true},
		{127, 99, true},
	}
	for _, tt := range tests {
		got, ok := IgnoreBlackKeys.Apply(tt.pitch)
		assert.Equal(t, tt.ok, ok, "pitch %d", tt.pitch)
		if tt.ok {
			assert.Equal(t, tt.want, got, "pitch %d", tt.pitch)
		}
	}
}

func TestIgnoreBlackKeysPacksWhiteKeys(t *testing.T) {
	// consecutive white keys land on consecutive indexes
	var prev int = -1
	for p := 0; p < 128; p++ {
		got, ok := IgnoreBlackKeys.Apply(uint8(p))
		if IsBlackKey(uint8(p)) {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok)
		if prev >= 0 {
			assert.Equal(t, prev+1, int(got), "pitch %d", p)
		}
		prev = int(got)
	}
}

func TestKeyboardModeText(t *testing.T) {
	b, err := json.Marshal(IgnoreBlackKeys)
	require.NoError(t, err)
	assert.Equal(t, `"ignore-black-keys"`, string(b))

	var m KeyboardMode
	require.NoError(t, json.Unmarshal([]byte(`"all-keys"`), &m))
	assert.Equal(t, AllKeys, m)
	assert.Error(t, json.Unmarshal([]byte(`"black-only"`), &m))

	assert.Equal(t, IgnoreBlackKeys, AllKeys.Next())
	assert.Equal(t, AllKeys, IgnoreBlackKeys.Next())
}
