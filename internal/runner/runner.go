package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"codeberg.org/mutker/lightsweep/internal/config"
	"codeberg.org/mutker/lightsweep/internal/dataset"
	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/logger"
	"codeberg.org/mutker/lightsweep/internal/powermeter"
	"codeberg.org/mutker/lightsweep/internal/session"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

const (
	// The whole invocation aborts once more than this many zero readings
	// have been discarded, across every color mode.
	maxZeroReadings = 50

	fullBrightness       = 255
	nudgeBrightnessPivot = 128

	dummyLoadSamples = 30

	progressLogEvery = 10
)

// RunInput describes one color-mode run: where its dataset lives and the
// (possibly resume-trimmed) ordered variations to execute.
type RunInput struct {
	Mode        light.ColorMode
	DatasetPath string
	Variations  []variation.Variation
	Resuming    bool
}

// RunResult summarizes one finished (or aborted) color-mode run
type RunResult struct {
	Input        RunInput
	RowsWritten  int
	ZeroReadings int
	Aborted      bool
	Reason       string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Runner drives a light through its variation space and measures the
// power draw at every step. Calls to the device and the meter are
// blocking and strictly serialized: the settle waits between apply and
// sample are what keeps readings attributable to the applied state.
type Runner struct {
	light   light.Controller
	meter   powermeter.Sampler
	cfg     *config.Config
	confirm func(prompt string) bool
	journal session.Repository

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time

	info           light.Info
	dummyLoadWatts float64
	zeroReadings   int
}

// New creates a runner. confirm may be nil (interactive questions then
// default to yes) and journal may be nil (no session records are kept).
func New(
	ctrl light.Controller,
	meter powermeter.Sampler,
	cfg *config.Config,
	confirm func(prompt string) bool,
	journal session.Repository,
) *Runner {
	return &Runner{
		light:   ctrl,
		meter:   meter,
		cfg:     cfg,
		confirm: confirm,
		journal: journal,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

func (r *Runner) estimator() Estimator {
	return Estimator{
		Sleep:       r.cfg.Sleep,
		SampleCount: r.cfg.SampleCount,
		Sweep:       r.cfg.Sweep.Params(),
	}
}

// Run executes the full measurement session: one run per configured
// color mode, sharing a single remaining-set and zero-reading budget.
func (r *Runner) Run(ctx context.Context) error {
	info, err := r.light.Info(ctx)
	if err != nil {
		return errors.Wrap(light.ErrInfoFailed, err)
	}
	r.info = info
	logger.Info().Str("model_id", info.ModelID).Msg("Detected light")

	if r.cfg.DummyLoad {
		if err := r.loadDummyLoad(ctx); err != nil {
			return err
		}
	}

	modes := r.cfg.Modes()
	inputs := make([]RunInput, 0, len(modes))
	for _, mode := range modes {
		input, err := r.prepareRun(mode)
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
	}

	var all []variation.Variation
	for _, input := range inputs {
		all = append(all, input.Variations...)
	}
	left := append([]variation.Variation(nil), all...)

	for _, input := range inputs {
		result, err := r.runColorMode(ctx, input, all, &left)
		r.record(ctx, result)
		if err != nil {
			return err
		}
	}

	return nil
}

// prepareRun generates the variation sequence for a color mode and trims
// it when an existing dataset is being continued.
func (r *Runner) prepareRun(mode light.ColorMode) (RunInput, error) {
	path := dataset.FilePath(r.cfg.ExportDir, r.info.ModelID, mode)

	resuming, err := dataset.ShouldResume(path, r.cfg.ResumePreference(), r.confirm)
	if err != nil {
		return RunInput{}, err
	}

	variations, err := variation.Generate(mode, r.cfg.Sweep.Params(), r.info)
	if err != nil {
		return RunInput{}, err
	}

	if resuming {
		resumeAt, err := dataset.ResumeVariation(path, mode)
		if err != nil {
			return RunInput{}, err
		}
		variations = variation.TrimAfter(variations, resumeAt)
	}

	return RunInput{
		Mode:        mode,
		DatasetPath: path,
		Variations:  variations,
		Resuming:    resuming,
	}, nil
}

func (r *Runner) runColorMode(
	ctx context.Context,
	input RunInput,
	all []variation.Variation,
	left *[]variation.Variation,
) (RunResult, error) {
	result := RunResult{Input: input, StartedAt: r.now()}

	err := r.measureVariations(ctx, input, all, left, &result)
	result.ZeroReadings = r.zeroReadings
	result.FinishedAt = r.now()
	if err != nil {
		return result, err
	}
	if result.Aborted {
		return result, nil
	}

	if r.cfg.Gzip {
		if err := dataset.Compress(input.DatasetPath); err != nil {
			logger.Warn().Err(err).Msg("Failed to compress dataset")
		}
	}

	return result, nil
}

// measureVariations is the per-variation state machine. A nil return with
// result.Aborted set means only this color mode stopped; a non-nil error
// aborts the entire invocation.
func (r *Runner) measureVariations(
	ctx context.Context,
	input RunInput,
	all []variation.Variation,
	left *[]variation.Variation,
	result *RunResult,
) error {
	writer, err := dataset.NewWriter(input.DatasetPath, input.Mode, input.Resuming, r.cfg.AddDatetime)
	if err != nil {
		result.Aborted = true
		result.Reason = string(errors.CodeOf(err))
		return err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close dataset")
		}
	}()

	if input.Resuming {
		logger.Info().Str("dataset", input.DatasetPath).Msg("Resuming measurements")
	}

	estimator := r.estimator()
	logger.Info().
		Str("color_mode", input.Mode.String()).
		Str("estimated_duration", FormatTimeLeft(estimator.TimeLeft(all, *left, nil))).
		Msg("Start taking measurements")

	// Reset the device and let the plug settle before the first sample
	if err := r.powerOff(ctx); err != nil {
		result.Aborted = true
		result.Reason = string(ErrDeviceFault)
		return err
	}
	logger.Info().Msgf("Waiting %s for the meter to settle...", r.cfg.Sleep.Initial)
	r.sleep(ctx, r.cfg.Sleep.Initial)

	var prev *variation.Variation
	for count, v := range input.Variations {
		if ctx.Err() != nil {
			result.Aborted = true
			result.Reason = "cancelled"
			r.shutdownLight(ctx)
			return errors.Wrap(ErrRunAborted, ctx.Err())
		}

		if count%progressLogEvery == 0 {
			current := v
			logger.Info().
				Int("progress_pct", progressPercent(all, *left)).
				Str("time_left", FormatTimeLeft(estimator.TimeLeft(all, *left, &current))).
				Msg("Progress")
		}

		logger.Info().Str("variation", v.String()).Msg("Changing light state")
		applyTime := r.now()
		if err := r.light.Apply(ctx, v.State(true)); err != nil {
			result.Aborted = true
			result.Reason = string(ErrDeviceFault)
			return errors.Wrap(ErrDeviceFault, err)
		}

		r.extraSettle(ctx, prev, v)
		prevCopy := v
		prev = &prevCopy

		r.sleep(ctx, r.cfg.Sleep.Step)

		watts, err := r.takeMeasurement(ctx, applyTime, 0)
		if err != nil {
			switch {
			case powermeter.IsStaleReading(err):
				watts, err = r.nudgeAndRemeasure(ctx, v)
				if err != nil {
					result.Aborted = true
					result.Reason = string(errors.CodeOf(err))
					if powermeter.IsStaleReading(err) {
						// Only this color mode stops; the rest of the
						// session may still produce usable datasets.
						logger.Error().Err(err).Msg("Aborting color mode after exhausted nudges")
						r.shutdownLight(ctx)
						return nil
					}
					logger.Error().Err(err).Msg("Aborting measurement session")
					r.shutdownLight(ctx)
					return err
				}
			case powermeter.IsZeroReading(err):
				if berr := r.countZeroReading(err); berr != nil {
					result.Aborted = true
					result.Reason = string(ErrZeroReadingBudget)
					r.shutdownLight(ctx)
					return berr
				}
				// Marked consumed for estimation even though no row is
				// written; the dataset and the remaining-set diverge by
				// one row per zero skip.
				*left = variation.Remove(*left, v)
				continue
			default:
				result.Aborted = true
				result.Reason = string(errors.CodeOf(err))
				logger.Error().Err(err).Msg("Aborting measurement session")
				r.shutdownLight(ctx)
				return errors.Wrap(powermeter.ErrMeterFault, err)
			}
		}

		logger.Info().Str("watts", dataset.FormatWatts(watts)).Msg("Measured power")
		if err := writer.Write(v, watts); err != nil {
			result.Aborted = true
			result.Reason = string(errors.CodeOf(err))
			return err
		}
		result.RowsWritten = writer.RowsWritten()
		*left = variation.Remove(*left, v)
	}

	logger.Info().Str("dataset", input.DatasetPath).Msg("Measurements finished, exported dataset")
	r.shutdownLight(ctx)

	return nil
}

// extraSettle adds mode-specific waits when a channel decreased relative
// to the previous variation. Decreases trigger slower driver transients
// than increases, so they get extra settle time before sampling.
func (r *Runner) extraSettle(ctx context.Context, prev *variation.Variation, v variation.Variation) {
	if prev == nil || prev.Mode != v.Mode {
		return
	}

	switch v.Mode {
	case light.ModeColorTemp:
		if v.Mired < prev.Mired {
			logger.Info().Msg("Extra waiting for significant CT change...")
			r.sleep(ctx, r.cfg.Sleep.CT)
		}
	case light.ModeHS:
		if v.Sat < prev.Sat {
			logger.Info().Msg("Extra waiting for significant SAT change...")
			r.sleep(ctx, r.cfg.Sleep.Sat)
		}
		if v.Hue < prev.Hue {
			logger.Info().Msg("Extra waiting for significant HUE change...")
			r.sleep(ctx, r.cfg.Sleep.Hue)
		}
	}
}

// nudgeAndRemeasure recovers from a stale reading by forcing a sharply
// different light state, re-applying the target variation and sampling
// again. Exhausting every attempt raises the stale fault to the caller.
func (r *Runner) nudgeAndRemeasure(ctx context.Context, v variation.Variation) (float64, error) {
	for attempt := 0; attempt < r.cfg.MaxNudges; attempt++ {
		logger.Warn().Msg("Measurement is stuck, nudging the light")

		// Full brightness if the target is dim, otherwise off: either way
		// a change the meter cannot miss.
		pulse := light.State{
			Mode: light.ModeBrightness,
			On:   v.Bri < nudgeBrightnessPivot,
			Bri:  fullBrightness,
		}
		if err := r.light.Apply(ctx, pulse); err != nil {
			return 0, errors.Wrap(ErrDeviceFault, err)
		}
		r.sleep(ctx, r.cfg.Sleep.NudgePulse)

		applyTime := r.now()
		if err := r.light.Apply(ctx, v.State(true)); err != nil {
			return 0, errors.Wrap(ErrDeviceFault, err)
		}
		r.sleep(ctx, r.cfg.Sleep.Nudge)

		watts, err := r.takeMeasurement(ctx, applyTime, 0)
		if err == nil {
			return watts, nil
		}

		switch {
		case powermeter.IsStaleReading(err):
			continue
		case powermeter.IsZeroReading(err):
			if berr := r.countZeroReading(err); berr != nil {
				return 0, berr
			}
			continue
		default:
			return 0, err
		}
	}

	return 0, errors.WithMessage(powermeter.ErrStaleReading,
		fmt.Sprintf("power measurement still outdated after %d nudged retries", r.cfg.MaxNudges))
}

// MeasureStandby measures the power draw of the light while off
func (r *Runner) MeasureStandby(ctx context.Context) (float64, error) {
	if r.info.ModelID == "" {
		info, err := r.light.Info(ctx)
		if err != nil {
			return 0, errors.Wrap(light.ErrInfoFailed, err)
		}
		r.info = info
	}

	if err := r.powerOff(ctx); err != nil {
		return 0, err
	}

	start := r.now()
	logger.Info().Msgf("Measuring standby power. Waiting %s...", r.cfg.Sleep.Standby)
	r.sleep(ctx, r.cfg.Sleep.Standby)

	watts, err := r.takeMeasurement(ctx, start, 0)
	if err == nil {
		return watts, nil
	}

	switch {
	case powermeter.IsStaleReading(err):
		return r.nudgeAndRemeasure(ctx, variation.Brightness(0))
	case powermeter.IsZeroReading(err):
		// Known limitation when measuring very low standby draw without
		// a dummy load; reported as zero rather than failing the session.
		logger.Error().Msg("Measured 0 watt as standby usage. " +
			"Consider measuring multiple lights at once or using a dummy load.")
		return 0, nil
	default:
		return 0, err
	}
}

// RunStandby performs the one-shot standby measurement and journals it
func (r *Runner) RunStandby(ctx context.Context) error {
	started := r.now()

	watts, err := r.MeasureStandby(ctx)
	if err != nil {
		return err
	}
	logger.Info().Str("watts", dataset.FormatWatts(watts)).Msg("Measured standby power")

	r.record(ctx, RunResult{
		Input:        RunInput{Mode: "standby"},
		ZeroReadings: r.zeroReadings,
		StartedAt:    started,
		FinishedAt:   r.now(),
	})

	return nil
}

// takeMeasurement requests a power reading anchored to the apply time and
// normalizes it: dummy load subtracted, split across the measured lights,
// rounded to two decimals.
func (r *Runner) takeMeasurement(ctx context.Context, anchor time.Time, retries int) (float64, error) {
	value, err := r.meter.Sample(ctx, anchor, retries)
	if err != nil {
		return 0, err
	}

	if r.cfg.DummyLoad {
		value -= r.dummyLoadWatts
	}
	value /= float64(r.cfg.NumLights)

	return math.Round(value*100) / 100, nil
}

func (r *Runner) countZeroReading(err error) error {
	r.zeroReadings++
	logger.Warn().Err(err).Msg("Discarding measurement")

	if r.zeroReadings > maxZeroReadings {
		logger.Error().Msg("Aborting measurement session. Received too many 0 readings")
		return errors.Wrap(ErrZeroReadingBudget, err)
	}

	return nil
}

func (r *Runner) loadDummyLoad(ctx context.Context) error {
	store := powermeter.NewCalibrationStore(r.cfg.ExportDir)

	watts, ok, err := store.Load()
	if err != nil {
		return err
	}
	if !ok {
		watts, err = r.measureDummyLoad(ctx, store)
		if err != nil {
			return err
		}
	}

	r.dummyLoadWatts = watts
	logger.Info().Msgf("Using %sW as dummy load value", dataset.FormatWatts(watts))

	return nil
}

// measureDummyLoad averages the dummy load's draw and persists it for
// future sessions.
func (r *Runner) measureDummyLoad(ctx context.Context, store *powermeter.CalibrationStore) (float64, error) {
	if r.confirm != nil {
		r.confirm("Only connect your dummy load to your smart plug, not the light! Confirm to start measuring the dummy load")
	}

	var sum float64
	for i := 0; i < dummyLoadSamples; i++ {
		anchor := r.now()
		r.sleep(ctx, r.cfg.Sleep.Sample)
		value, err := r.meter.Sample(ctx, anchor, 0)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	average := sum / dummyLoadSamples

	if err := store.Store(average); err != nil {
		return 0, err
	}

	if r.confirm != nil {
		r.confirm("Connect your light now and confirm to start measuring")
	}

	return average, nil
}

func (r *Runner) record(ctx context.Context, result RunResult) {
	if r.journal == nil {
		return
	}

	outcome := session.OutcomeCompleted
	if result.Aborted {
		outcome = session.OutcomeAborted
	}

	rec := &session.RunRecord{
		ID:           uuid.NewString(),
		ModelID:      r.info.ModelID,
		ColorMode:    result.Input.Mode.String(),
		RowsWritten:  result.RowsWritten,
		ZeroReadings: result.ZeroReadings,
		Outcome:      outcome,
		Reason:       result.Reason,
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
	}
	if err := r.journal.Record(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("Failed to record session run")
	}
}

func (r *Runner) powerOff(ctx context.Context) error {
	state := light.State{Mode: light.ModeBrightness, On: false}
	if err := r.light.Apply(ctx, state); err != nil {
		return errors.Wrap(ErrDeviceFault, err)
	}

	return nil
}

func (r *Runner) shutdownLight(ctx context.Context) {
	logger.Info().Msg("Turning off the light")
	// The light still gets turned off when the run context was cancelled
	if err := r.powerOff(context.WithoutCancel(ctx)); err != nil {
		logger.Warn().Err(err).Msg("Failed to turn off the light")
	}
}

func progressPercent(all, left []variation.Variation) int {
	if len(all) == 0 {
		return 100
	}

	return (len(all) - len(left)) * 100 / len(all)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
