package light

import "codeberg.org/mutker/lightsweep/internal/errors"

const (
	ErrApplyFailed       = errors.ErrorCode("light_apply_failed")
	ErrInfoFailed        = errors.ErrorCode("light_info_failed")
	ErrUnknownDriver     = errors.ErrorCode("light_unknown_driver")
	ErrUnsupportedMode   = errors.ErrorCode("light_unsupported_color_mode")
	ErrDeviceUnreachable = errors.ErrorCode("light_device_unreachable")
)
