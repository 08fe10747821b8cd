package euclid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepSizeBeats(t *testing.T) {
	assert.Equal(t, 4.0, Step1_1.Beats())
	assert.Equal(t, 1.0, Step1_4.Beats())
	assert.Equal(t, 0.25, Step1_16.Beats())
	assert.Equal(t, 0.0625, Step1_64.Beats())
	assert.Equal(t, 0.25, StepSize(42).Beats())
}

func TestStepSizeStep(t *testing.T) {
	assert.Equal(t, Step1_32, Step1_16.Shorter())
	assert.Equal(t, Step1_64, Step1_64.Shorter())
	assert.Equal(t, Step1_8, Step1_16.Longer())
	assert.Equal(t, Step1_1, Step1_1.Longer())
}

func TestParseStepSize(t *testing.T) {
	s, err := ParseStepSize("1/8")
	require.NoError(t, err)
	assert.Equal(t, Step1_8, s)

	s, err = ParseStepSize(" 32 ")
	require.NoError(t, err)
	assert.Equal(t, Step1_32, s)

	_, err = ParseStepSize("1/3")
	assert.Error(t, err)
	_, err = ParseStepSize("quarter")
	assert.Error(t, err)
}

func TestStepSizeJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Step StepSize `json:"step"`
	}{Step1_16})
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":"1/16"}`, string(b))

	var v struct {
		Step StepSize `json:"step"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"step":"1/2"}`), &v))
	assert.Equal(t, Step1_2, v.Step)
}
