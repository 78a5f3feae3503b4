package variation

import (
	"math"

	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
)

// SweepParams holds the range and step parameters a sweep is generated
// from. Generation is a pure function of these values plus the device's
// mired bounds, so regenerating yields the same ordered sequence.
type SweepParams struct {
	MinBrightness int
	MaxBrightness int

	BriSteps int // brightness step in brightness-only mode

	HSBriSteps int
	HSSatSteps int
	HSHueSteps int
	MinSat     int
	MaxSat     int
	MinHue     int
	MaxHue     int

	CTBriSteps   int
	CTMiredSteps int
}

// InclusiveRange yields start, start+step, ... for every value below end,
// and always ends with end itself, even when end does not align to the
// step grid. The configured maximum is therefore always swept exactly once.
func InclusiveRange(start, end, step int) []int {
	values := make([]int, 0, (end-start)/step+2)
	for i := start; i < end; i += step {
		values = append(values, i)
	}

	return append(values, end)
}

// Generate produces the full ordered variation sequence for a color mode.
// Ordering is brightness-major; HS mode additionally orders saturation
// before hue so hue varies fastest. The time estimator and the extra
// settle waits rely on this ordering.
func Generate(mode light.ColorMode, params SweepParams, info light.Info) ([]Variation, error) {
	switch mode {
	case light.ModeBrightness:
		return generateBrightness(params), nil
	case light.ModeColorTemp:
		return generateColorTemp(params, info), nil
	case light.ModeHS:
		return generateHS(params), nil
	default:
		return nil, errors.WithData(light.ErrUnsupportedMode, mode)
	}
}

func generateBrightness(params SweepParams) []Variation {
	bris := InclusiveRange(params.MinBrightness, params.MaxBrightness, params.BriSteps)

	variations := make([]Variation, 0, len(bris))
	for _, bri := range bris {
		variations = append(variations, Brightness(bri))
	}

	return variations
}

func generateColorTemp(params SweepParams, info light.Info) []Variation {
	minMired := int(math.Round(info.MinMired))
	maxMired := int(math.Round(info.MaxMired))

	var variations []Variation
	for _, bri := range InclusiveRange(params.MinBrightness, params.MaxBrightness, params.CTBriSteps) {
		for _, mired := range InclusiveRange(minMired, maxMired, params.CTMiredSteps) {
			variations = append(variations, ColorTemp(bri, mired))
		}
	}

	return variations
}

func generateHS(params SweepParams) []Variation {
	var variations []Variation
	for _, bri := range InclusiveRange(params.MinBrightness, params.MaxBrightness, params.HSBriSteps) {
		for _, sat := range InclusiveRange(params.MinSat, params.MaxSat, params.HSSatSteps) {
			for _, hue := range InclusiveRange(params.MinHue, params.MaxHue, params.HSHueSteps) {
				variations = append(variations, HS(bri, hue, sat))
			}
		}
	}

	return variations
}

// TrimAfter returns the variations strictly after the first occurrence of
// resumeAt. The resume point itself is already measured and excluded. When
// resumeAt never occurs the result is empty: nothing is left to measure.
func TrimAfter(variations []Variation, resumeAt Variation) []Variation {
	for i, v := range variations {
		if v == resumeAt {
			return variations[i+1:]
		}
	}

	return nil
}

// Remove deletes the first occurrence of v from variations, preserving
// order. The slice is returned unchanged when v is absent.
func Remove(variations []Variation, v Variation) []Variation {
	for i, candidate := range variations {
		if candidate == v {
			return append(variations[:i:i], variations[i+1:]...)
		}
	}

	return variations
}

// Modes returns the set of color modes present in the given variations
func Modes(variations []Variation) map[light.ColorMode]struct{} {
	modes := make(map[light.ColorMode]struct{})
	for _, v := range variations {
		modes[v.Mode] = struct{}{}
	}

	return modes
}
