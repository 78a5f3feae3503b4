package powermeter

import (
	"context"
	"time"
)

// SimSampler reports a fixed wattage for every sample. Useful for dry
// runs and for exercising the full sweep without a smart plug.
type SimSampler struct {
	watts float64
}

// NewSimSampler creates a sampler that always reads the given wattage
func NewSimSampler(watts float64) *SimSampler {
	return &SimSampler{watts: watts}
}

func (s *SimSampler) Sample(ctx context.Context, _ time.Time, _ int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return s.watts, nil
}
