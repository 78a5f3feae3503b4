package variation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

func testParams() variation.SweepParams {
	return variation.SweepParams{
		MinBrightness: 1,
		MaxBrightness: 255,
		BriSteps:      3,
		HSBriSteps:    50,
		HSSatSteps:    100,
		HSHueSteps:    20000,
		MinSat:        1,
		MaxSat:        255,
		MinHue:        1,
		MaxHue:        65535,
		CTBriSteps:    50,
		CTMiredSteps:  100,
	}
}

func TestInclusiveRange(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step int
		want             []int
	}{
		{"aligned", 0, 10, 5, []int{0, 5, 10}},
		{"non-divisible end included once", 1, 255, 127, []int{1, 128, 255}},
		{"step larger than range", 1, 10, 100, []int{1, 10}},
		{"start equals end", 7, 7, 3, []int{7}},
		{"unit step", 0, 3, 1, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, variation.InclusiveRange(tt.start, tt.end, tt.step))
		})
	}
}

func TestInclusiveRangeProperties(t *testing.T) {
	for _, step := range []int{1, 2, 7, 100} {
		got := variation.InclusiveRange(3, 200, step)

		assert.Equal(t, 3, got[0], "sequence starts at start")
		assert.Equal(t, 200, got[len(got)-1], "sequence ends at end")
		for i := 1; i < len(got); i++ {
			assert.Greater(t, got[i], got[i-1], "strictly increasing")
			assert.LessOrEqual(t, got[i], 200, "never exceeds end")
		}
	}
}

func TestGenerateBrightness(t *testing.T) {
	params := testParams()
	params.BriSteps = 127

	got, err := variation.Generate(light.ModeBrightness, params, light.Info{})
	require.NoError(t, err)

	want := []variation.Variation{
		variation.Brightness(1),
		variation.Brightness(128),
		variation.Brightness(255),
	}
	assert.Equal(t, want, got)
}

func TestGenerateHSOrdering(t *testing.T) {
	got, err := variation.Generate(light.ModeHS, testParams(), light.Info{})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	// Brightness-major, saturation middle, hue fastest
	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		require.Equal(t, light.ModeHS, b.Mode)

		assert.LessOrEqual(t, a.Bri, b.Bri)
		if a.Bri == b.Bri {
			assert.LessOrEqual(t, a.Sat, b.Sat)
			if a.Sat == b.Sat {
				assert.Less(t, a.Hue, b.Hue)
			}
		}
	}
}

func TestGenerateColorTempBoundedByDeviceMireds(t *testing.T) {
	info := light.Info{MinMired: 153.4, MaxMired: 500.2}

	got, err := variation.Generate(light.ModeColorTemp, testParams(), info)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, v := range got {
		assert.GreaterOrEqual(t, v.Mired, 153)
		assert.LessOrEqual(t, v.Mired, 500)
	}

	last := got[len(got)-1]
	assert.Equal(t, 500, last.Mired, "rounded max mired swept")
	assert.Equal(t, 255, last.Bri)
}

func TestGenerateUnsupportedMode(t *testing.T) {
	_, err := variation.Generate(light.ColorMode("rgbw"), testParams(), light.Info{})
	require.Error(t, err)
}

func TestGenerateIsRestartable(t *testing.T) {
	first, err := variation.Generate(light.ModeHS, testParams(), light.Info{})
	require.NoError(t, err)
	second, err := variation.Generate(light.ModeHS, testParams(), light.Info{})
	require.NoError(t, err)

	assert.Equal(t, first, second, "same parameters must yield the same ordered sequence")
}

func TestTrimAfter(t *testing.T) {
	params := testParams()
	params.BriSteps = 127
	seq, err := variation.Generate(light.ModeBrightness, params, light.Info{})
	require.NoError(t, err)

	trimmed := variation.TrimAfter(seq, variation.Brightness(128))
	assert.Equal(t, []variation.Variation{variation.Brightness(255)}, trimmed)

	assert.Empty(t, variation.TrimAfter(seq, variation.Brightness(255)), "resume at last row leaves nothing")
	assert.Empty(t, variation.TrimAfter(seq, variation.Brightness(42)), "unknown resume point trims everything")
}

func TestTrimAfterResumeIdempotence(t *testing.T) {
	seq, err := variation.Generate(light.ModeHS, testParams(), light.Info{})
	require.NoError(t, err)

	n := len(seq) / 2
	trimmed := variation.TrimAfter(seq, seq[n-1])
	assert.Equal(t, seq[n:], trimmed, "trimming at row N leaves rows N+1..end")
}

func TestRemove(t *testing.T) {
	seq := []variation.Variation{
		variation.Brightness(1),
		variation.Brightness(2),
		variation.Brightness(3),
	}

	got := variation.Remove(seq, variation.Brightness(2))
	assert.Equal(t, []variation.Variation{variation.Brightness(1), variation.Brightness(3)}, got)

	got = variation.Remove(got, variation.Brightness(99))
	assert.Len(t, got, 2, "removing an absent variation is a no-op")
}

func TestModes(t *testing.T) {
	modes := variation.Modes([]variation.Variation{
		variation.Brightness(1),
		variation.HS(1, 1, 1),
		variation.HS(2, 1, 1),
	})

	assert.Len(t, modes, 2)
	assert.Contains(t, modes, light.ModeBrightness)
	assert.Contains(t, modes, light.ModeHS)
}
