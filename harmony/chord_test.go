package harmony

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChordSetOrdered(t *testing.T) {
	c := NewChordSet()
	assert.True(t, c.Insert(76))
	assert.True(t, c.Insert(72))
	assert.True(t, c.Insert(74))
	assert.False(t, c.Insert(72))
	assert.Equal(t, []uint8{72, 74, 76}, c.Ordered())
	assert.Equal(t, 3, c.Len())

	assert.True(t, c.Remove(74))
	assert.False(t, c.Remove(74))
	assert.Equal(t, []uint8{72, 76}, c.Ordered())
	assert.False(t, c.Contains(74))
	assert.True(t, c.Contains(76))
}

func TestChordSetOutOfRange(t *testing.T) {
	c := NewChordSet()
	assert.False(t, c.Insert(200))
	assert.False(t, c.Remove(200))
	assert.False(t, c.Contains(200))
	assert.Equal(t, 0, c.Len())
}

func TestChordSetClear(t *testing.T) {
	c := NewChordSet(60, 64, 67)
	c.Clear()
	assert.Empty(t, c.Ordered())
	assert.True(t, c.Insert(64))
	assert.Equal(t, []uint8{64}, c.Ordered())
}
