package session

import "codeberg.org/mutker/lightsweep/internal/errors"

const (
	ErrInvalidDBPath = errors.ErrorCode("session_invalid_db_path")
	ErrStorageInit   = errors.ErrorCode("session_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("session_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("session_storage_close_failed")
	ErrInvalidRecord = errors.ErrorCode("session_invalid_record")
)
