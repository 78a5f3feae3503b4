package variation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

func TestEqualityDoesNotAliasAcrossModes(t *testing.T) {
	bri := variation.Brightness(100)
	hs := variation.HS(100, 0, 0)
	ct := variation.ColorTemp(100, 0)

	assert.NotEqual(t, bri, hs, "brightness-only must not equal HS with same brightness")
	assert.NotEqual(t, bri, ct, "brightness-only must not equal color-temp with same brightness")
	assert.NotEqual(t, hs, ct)

	assert.Equal(t, variation.HS(100, 200, 50), variation.HS(100, 200, 50))
	assert.NotEqual(t, variation.HS(100, 200, 50), variation.HS(100, 200, 51))
}

func TestFields(t *testing.T) {
	assert.Equal(t, []int{42}, variation.Brightness(42).Fields())
	assert.Equal(t, []int{42, 370}, variation.ColorTemp(42, 370).Fields())
	assert.Equal(t, []int{42, 1000, 60}, variation.HS(42, 1000, 60).Fields())
}

func TestFromFieldsRoundTrip(t *testing.T) {
	for _, v := range []variation.Variation{
		variation.Brightness(1),
		variation.ColorTemp(128, 450),
		variation.HS(255, 65535, 255),
	} {
		got, err := variation.FromFields(v.Mode, v.Fields())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFromFieldsUnsupportedMode(t *testing.T) {
	_, err := variation.FromFields(light.ColorMode("xy"), []int{1, 2})
	require.Error(t, err)
}

func TestFromFieldsTooFewColumns(t *testing.T) {
	_, err := variation.FromFields(light.ModeHS, []int{1, 2})
	require.Error(t, err)
}

func TestState(t *testing.T) {
	state := variation.HS(10, 20, 30).State(true)
	assert.Equal(t, light.ModeHS, state.Mode)
	assert.True(t, state.On)
	assert.Equal(t, 10, state.Bri)
	assert.Equal(t, 20, state.Hue)
	assert.Equal(t, 30, state.Sat)
}
