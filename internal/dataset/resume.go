package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

// ResumePreference is the tri-state resume setting: resume unconditionally,
// start over unconditionally, or ask the user.
type ResumePreference string

const (
	ResumeAsk    ResumePreference = "ask"
	ResumeAlways ResumePreference = "always"
	ResumeNever  ResumePreference = "never"
)

// IsValid returns whether the preference is one of the known values
func (p ResumePreference) IsValid() bool {
	switch p {
	case ResumeAsk, ResumeAlways, ResumeNever:
		return true
	default:
		return false
	}
}

// ShouldResume decides whether an existing dataset should be continued.
// Missing, empty and header-only files always start fresh. Otherwise the
// preference decides; ResumeAsk defers to confirm, defaulting to yes.
func ShouldResume(path string, pref ResumePreference, confirm func(prompt string) bool) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(ErrReadFailed, err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	rows, err := readRows(path)
	if err != nil {
		return false, err
	}
	if len(rows) <= 1 {
		return false, nil
	}

	switch pref {
	case ResumeAlways:
		return true, nil
	case ResumeNever:
		return false, nil
	default:
		if confirm == nil {
			return true, nil
		}
		prompt := fmt.Sprintf("Dataset %s already exists. Do you want to resume measurements?", path)
		return confirm(prompt), nil
	}
}

// ResumeVariation reconstructs the variation encoded in the dataset's last
// row, shaped per the given color mode.
func ResumeVariation(path string, mode light.ColorMode) (variation.Variation, error) {
	rows, err := readRows(path)
	if err != nil {
		return variation.Variation{}, err
	}
	if len(rows) == 0 {
		return variation.Variation{}, errors.New(ErrEmptyDataset)
	}

	if !mode.IsValid() {
		return variation.Variation{}, errors.WithData(light.ErrUnsupportedMode, mode)
	}

	last := rows[len(rows)-1]
	fields, err := parseFields(last, fieldCount(mode))
	if err != nil {
		return variation.Variation{}, err
	}

	return variation.FromFields(mode, fields)
}

func fieldCount(mode light.ColorMode) int {
	switch mode {
	case light.ModeHS:
		return 3
	case light.ModeColorTemp:
		return 2
	default:
		return 1
	}
}

func parseFields(row []string, count int) ([]int, error) {
	if len(row) < count {
		return nil, errors.WithData(ErrReadFailed, row)
	}

	fields := make([]int, 0, count)
	for _, col := range row[:count] {
		value, err := strconv.Atoi(col)
		if err != nil {
			return nil, errors.Wrap(ErrReadFailed, err)
		}
		fields = append(fields, value)
	}

	return fields, nil
}

func readRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrReadFailed, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(ErrReadFailed, err)
	}

	return rows, nil
}
