package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/logger"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

// Rows are pushed to the file every writeBuffer rows, bounding how much
// data the OS buffer can lose on a crash.
const writeBuffer = 50

const timestampLayout = "20060102150405"

var headers = map[light.ColorMode][]string{
	light.ModeHS:         {"bri", "hue", "sat", "watt"},
	light.ModeColorTemp:  {"bri", "mired", "watt"},
	light.ModeBrightness: {"bri", "watt"},
}

// FilePath returns the dataset path for a device model and color mode
func FilePath(exportDir, modelID string, mode light.ColorMode) string {
	return filepath.Join(exportDir, modelID, mode.String()+".csv")
}

// Writer appends measurement rows to a dataset file. A fresh file gets a
// header row; a resumed file is opened in append mode without one.
type Writer struct {
	file        *os.File
	csv         *csv.Writer
	addTime     bool
	rowsWritten int
}

// NewWriter opens the dataset file for the given color mode. When
// resuming, the existing file is extended; otherwise it is replaced.
func NewWriter(path string, mode light.ColorMode, resuming, addTime bool) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(ErrOpenFailed, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resuming {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, errors.Wrap(ErrOpenFailed, err)
	}

	w := &Writer{
		file:    file,
		csv:     csv.NewWriter(file),
		addTime: addTime,
	}

	if !resuming {
		header := append([]string{}, headers[mode]...)
		if addTime {
			header = append(header, "time")
		}
		if err := w.csv.Write(header); err != nil {
			file.Close()
			return nil, errors.Wrap(ErrWriteFailed, err)
		}
	}

	return w, nil
}

// Write appends one measurement row: the variation's fields followed by
// the wattage rounded to two decimals and, when enabled, a timestamp.
func (w *Writer) Write(v variation.Variation, watts float64) error {
	fields := v.Fields()
	row := make([]string, 0, len(fields)+2)
	for _, field := range fields {
		row = append(row, strconv.Itoa(field))
	}
	row = append(row, FormatWatts(watts))
	if w.addTime {
		row = append(row, time.Now().Format(timestampLayout))
	}

	if err := w.csv.Write(row); err != nil {
		return errors.Wrap(ErrWriteFailed, err)
	}

	w.rowsWritten++
	if w.rowsWritten%writeBuffer == 1 {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return errors.Wrap(ErrWriteFailed, err)
		}
		logger.Debug().Msg("Flushing dataset buffer")
	}

	return nil
}

// RowsWritten returns how many data rows this writer has appended
func (w *Writer) RowsWritten() int {
	return w.rowsWritten
}

// Close flushes pending rows and closes the file
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return errors.Wrap(ErrWriteFailed, err)
	}

	if err := w.file.Close(); err != nil {
		return errors.Wrap(errors.ErrShutdownFailed, err)
	}

	return nil
}

// FormatWatts renders a wattage rounded to two decimals, always keeping
// at least one decimal place (10 becomes "10.0").
func FormatWatts(watts float64) string {
	s := strconv.FormatFloat(round2(watts), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
