package light

import (
	"context"

	"codeberg.org/mutker/lightsweep/internal/logger"
)

// SimController pretends to be a light. It accepts every state change
// immediately, which makes full sweeps runnable without hardware.
type SimController struct {
	info Info
}

// NewSimController creates a simulated light with the given mired range
func NewSimController(modelID string, minMired, maxMired float64) *SimController {
	if modelID == "" {
		modelID = "SIM001"
	}

	return &SimController{
		info: Info{
			ModelID:  modelID,
			MinMired: minMired,
			MaxMired: maxMired,
		},
	}
}

func (c *SimController) Apply(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Debug().
		Str("mode", state.Mode.String()).
		Bool("on", state.On).
		Int("bri", state.Bri).
		Int("hue", state.Hue).
		Int("sat", state.Sat).
		Int("mired", state.Mired).
		Msg("Simulated light state change")

	return nil
}

func (c *SimController) Info(_ context.Context) (Info, error) {
	return c.info, nil
}
