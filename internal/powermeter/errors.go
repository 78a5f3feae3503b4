package powermeter

import "codeberg.org/mutker/lightsweep/internal/errors"

const (
	// ErrStaleReading means the meter's sample predates the applied light
	// state, typically because the sensor has not refreshed yet.
	ErrStaleReading = errors.ErrorCode("powermeter_stale_reading")

	// ErrZeroReading means the meter reported no measurable draw, e.g.
	// the load is below the sensor's resolution.
	ErrZeroReading = errors.ErrorCode("powermeter_zero_reading")

	// ErrMeterFault covers every other meter failure. Not retried.
	ErrMeterFault = errors.ErrorCode("powermeter_fault")

	ErrUnknownDriver = errors.ErrorCode("powermeter_unknown_driver")
)

// IsStaleReading reports whether err is a stale-reading fault
func IsStaleReading(err error) bool {
	return errors.IsCode(err, ErrStaleReading)
}

// IsZeroReading reports whether err is a zero-reading fault
func IsZeroReading(err error) bool {
	return errors.IsCode(err, ErrZeroReading)
}
