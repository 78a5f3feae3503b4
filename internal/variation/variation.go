package variation

import (
	"fmt"

	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
)

// Variation is one target device state in a sweep. It is a closed variant
// over the supported color modes: Mode is the discriminant and only the
// fields belonging to that mode are set. The zero value of unused fields
// keeps Variation comparable, and because Mode participates in equality a
// brightness-only variation never compares equal to an HS or color-temp
// variation with the same brightness.
type Variation struct {
	Mode  light.ColorMode
	Bri   int
	Hue   int
	Sat   int
	Mired int
}

// Brightness creates a brightness-only variation
func Brightness(bri int) Variation {
	return Variation{Mode: light.ModeBrightness, Bri: bri}
}

// HS creates a hue/saturation variation
func HS(bri, hue, sat int) Variation {
	return Variation{Mode: light.ModeHS, Bri: bri, Hue: hue, Sat: sat}
}

// ColorTemp creates a color-temperature variation
func ColorTemp(bri, mired int) Variation {
	return Variation{Mode: light.ModeColorTemp, Bri: bri, Mired: mired}
}

// Fields returns the leading numeric dataset columns for this variation
func (v Variation) Fields() []int {
	switch v.Mode {
	case light.ModeHS:
		return []int{v.Bri, v.Hue, v.Sat}
	case light.ModeColorTemp:
		return []int{v.Bri, v.Mired}
	default:
		return []int{v.Bri}
	}
}

// State flattens the variation into a device state request
func (v Variation) State(on bool) light.State {
	return light.State{
		Mode:  v.Mode,
		On:    on,
		Bri:   v.Bri,
		Hue:   v.Hue,
		Sat:   v.Sat,
		Mired: v.Mired,
	}
}

// String implements the Stringer interface
func (v Variation) String() string {
	switch v.Mode {
	case light.ModeHS:
		return fmt.Sprintf("bri=%d hue=%d sat=%d", v.Bri, v.Hue, v.Sat)
	case light.ModeColorTemp:
		return fmt.Sprintf("bri=%d mired=%d", v.Bri, v.Mired)
	default:
		return fmt.Sprintf("bri=%d", v.Bri)
	}
}

// FromFields reconstructs a variation from its dataset columns. The
// column count must match the given color mode.
func FromFields(mode light.ColorMode, fields []int) (Variation, error) {
	switch mode {
	case light.ModeBrightness:
		if len(fields) < 1 {
			return Variation{}, errors.WithData(errors.ErrInvalidArgument, fields)
		}
		return Brightness(fields[0]), nil
	case light.ModeColorTemp:
		if len(fields) < 2 {
			return Variation{}, errors.WithData(errors.ErrInvalidArgument, fields)
		}
		return ColorTemp(fields[0], fields[1]), nil
	case light.ModeHS:
		if len(fields) < 3 {
			return Variation{}, errors.WithData(errors.ErrInvalidArgument, fields)
		}
		return HS(fields[0], fields[1], fields[2]), nil
	default:
		return Variation{}, errors.WithData(light.ErrUnsupportedMode, mode)
	}
}
