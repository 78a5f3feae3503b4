package runner

import (
	"fmt"
	"math"
	"time"

	"codeberg.org/mutker/lightsweep/internal/config"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

// Rough per-step cost of the device and meter round trips, on top of the
// configured waits.
const estimatedStepDelay = 150 * time.Millisecond

// Estimator computes the remaining session duration from the remaining
// variation set and the configured timing constants. It is a pure
// function of its inputs so estimates are reproducible.
type Estimator struct {
	Sleep       config.SleepConfig
	SampleCount int
	Sweep       variation.SweepParams
}

// TimeLeft estimates the remaining duration. total is every variation
// scheduled this invocation, left the not-yet-measured subset, current
// the variation being measured right now (nil before the first step).
// Retries and nudges are not accounted for.
func (e Estimator) TimeLeft(total, left []variation.Variation, current *variation.Variation) time.Duration {
	progress := len(total) - len(left)

	var timeLeft time.Duration
	if progress == 0 {
		timeLeft += e.Sleep.Standby + e.Sleep.Initial
	}

	timeLeft += time.Duration(len(left)) * (e.Sleep.Step + estimatedStepDelay)
	if e.SampleCount > 1 {
		timeLeft += time.Duration(len(left)*e.SampleCount) * (e.Sleep.Sample + estimatedStepDelay)
	}

	currentMode := light.ModeBrightness
	if current != nil {
		currentMode = current.Mode
	}
	timeLeft += e.modeTail(currentMode, current)

	// Modes still wholly unmeasured get their full-sweep tail
	for mode := range variation.Modes(left) {
		if mode != currentMode {
			timeLeft += e.modeTail(mode, nil)
		}
	}

	if timeLeft < 0 {
		return 0
	}

	return timeLeft
}

func (e Estimator) modeTail(mode light.ColorMode, current *variation.Variation) time.Duration {
	switch mode {
	case light.ModeHS:
		return e.hsTail(current)
	case light.ModeColorTemp:
		return e.ctTail(current)
	default:
		return 0
	}
}

// hsTail estimates the extra settle time the remaining saturation and hue
// sweep will cost, given the brightness the sweep has reached. Hue varies
// fastest in the generated ordering, so the remaining hue steps dominate.
func (e Estimator) hsTail(current *variation.Variation) time.Duration {
	bri := e.Sweep.MinBrightness
	if current != nil {
		bri = current.Bri
	}

	satStepsLeft := roundDiv(e.Sweep.MaxBrightness-bri, e.Sweep.HSBriSteps) - 1
	tail := time.Duration(satStepsLeft) * e.Sleep.Sat

	hueStepsLeft := int(math.Round(float64(e.Sweep.MaxHue) / float64(e.Sweep.HSHueSteps) * float64(satStepsLeft)))
	tail += time.Duration(hueStepsLeft) * e.Sleep.Hue

	return tail
}

func (e Estimator) ctTail(current *variation.Variation) time.Duration {
	bri := e.Sweep.MinBrightness
	if current != nil {
		bri = current.Bri
	}

	ctStepsLeft := roundDiv(e.Sweep.MaxBrightness-bri, e.Sweep.CTBriSteps) - 1

	return time.Duration(ctStepsLeft) * e.Sleep.CT
}

func roundDiv(numerator, denominator int) int {
	return int(math.Round(float64(numerator) / float64(denominator)))
}

// FormatTimeLeft renders an estimate as seconds, minutes above a minute,
// or hours above an hour, with one decimal place.
func FormatTimeLeft(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	seconds := d.Seconds()
	switch {
	case seconds > 3600:
		return fmt.Sprintf("%.1fh", seconds/3600)
	case seconds > 60:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.1fs", seconds)
	}
}
