package powermeter

import (
	"context"
	"time"
)

// Sampler is the power-sensing capability. Sample returns the measured
// draw in watts for a reading taken after anchor. Freshness checking and
// multi-sample averaging happen behind this interface; the caller only
// classifies the returned fault.
type Sampler interface {
	Sample(ctx context.Context, anchor time.Time, retries int) (float64, error)
}
