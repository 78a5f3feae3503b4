package light

import "context"

// ColorMode identifies one of the supported light state families.
type ColorMode string

const (
	ModeBrightness ColorMode = "brightness"
	ModeColorTemp  ColorMode = "color_temp"
	ModeHS         ColorMode = "hs"
)

// IsValid returns whether the color mode is one of the supported kinds
func (m ColorMode) IsValid() bool {
	switch m {
	case ModeBrightness, ModeColorTemp, ModeHS:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (m ColorMode) String() string {
	return string(m)
}

// State describes one target light state. Which fields are meaningful
// depends on Mode; Bri is always meaningful when On is true.
type State struct {
	Mode  ColorMode
	On    bool
	Bri   int
	Hue   int
	Sat   int
	Mired int
}

// Info holds the device properties the sweep needs up front.
type Info struct {
	ModelID  string
	MinMired float64
	MaxMired float64
}

// Controller is the device-control capability. Apply blocks until the
// device has accepted the state; physical settling is the caller's concern.
type Controller interface {
	Apply(ctx context.Context, state State) error
	Info(ctx context.Context) (Info, error)
}
