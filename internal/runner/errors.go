package runner

import "codeberg.org/mutker/lightsweep/internal/errors"

const (
	// ErrZeroReadingBudget means the session-wide zero-reading counter
	// exceeded its threshold and the whole run must stop.
	ErrZeroReadingBudget = errors.ErrorCode("runner_zero_reading_budget_exceeded")

	ErrDeviceFault = errors.ErrorCode("runner_device_fault")
	ErrRunAborted  = errors.ErrorCode("runner_aborted")
)
