package powermeter

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/lightsweep/internal/errors"
)

const calibrationDirPerm = 0o755

// CalibrationStore persists the measured dummy-load wattage between
// sessions so the dummy load only has to be measured once.
type CalibrationStore struct {
	path string
}

// NewCalibrationStore creates a store rooted under the export directory
func NewCalibrationStore(exportDir string) *CalibrationStore {
	return &CalibrationStore{
		path: filepath.Join(exportDir, ".persistent", "dummy_load"),
	}
}

// Load returns the stored dummy-load wattage. The second return value
// is false when no calibration has been stored yet.
func (s *CalibrationStore) Load() (float64, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrOperationFailed, err)
	}

	watts, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrInvalidArgument, err)
	}

	return watts, true, nil
}

// Store persists the dummy-load wattage
func (s *CalibrationStore) Store(watts float64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), calibrationDirPerm); err != nil {
		return errors.Wrap(errors.ErrOperationFailed, err)
	}

	value := strconv.FormatFloat(watts, 'f', -1, 64)
	if err := os.WriteFile(s.path, []byte(value), 0o600); err != nil {
		return errors.Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}
