package dataset

import "codeberg.org/mutker/lightsweep/internal/errors"

const (
	ErrOpenFailed     = errors.ErrorCode("dataset_open_failed")
	ErrWriteFailed    = errors.ErrorCode("dataset_write_failed")
	ErrReadFailed     = errors.ErrorCode("dataset_read_failed")
	ErrCompressFailed = errors.ErrorCode("dataset_compress_failed")
	ErrEmptyDataset   = errors.ErrorCode("dataset_empty")
)
