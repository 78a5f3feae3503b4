package dataset_test

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/lightsweep/internal/dataset"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

func TestWriterFreshFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness.csv")

	w, err := dataset.NewWriter(path, light.ModeBrightness, false, false)
	require.NoError(t, err)

	require.NoError(t, w.Write(variation.Brightness(1), 10))
	require.NoError(t, w.Write(variation.Brightness(128), 10))
	require.NoError(t, w.Write(variation.Brightness(255), 10.456))
	assert.Equal(t, 3, w.RowsWritten())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "bri,watt", lines[0])
	assert.Equal(t, "1,10.0", lines[1])
	assert.Equal(t, "128,10.0", lines[2])
	assert.Equal(t, "255,10.46", lines[3])
}

func TestWriterResumeAppendsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hs.csv")

	w, err := dataset.NewWriter(path, light.ModeHS, false, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(variation.HS(1, 1, 1), 5.5))
	require.NoError(t, w.Close())

	w, err = dataset.NewWriter(path, light.ModeHS, true, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(variation.HS(1, 2001, 1), 6.5))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "bri,hue,sat,watt", lines[0])
	assert.Equal(t, "1,1,1,5.5", lines[1])
	assert.Equal(t, "1,2001,1,6.5", lines[2])
}

func TestWriterDatetimeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color_temp.csv")

	w, err := dataset.NewWriter(path, light.ModeColorTemp, false, true)
	require.NoError(t, err)
	require.NoError(t, w.Write(variation.ColorTemp(10, 300), 4.2))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "bri,mired,watt,time", lines[0])

	cols := strings.Split(lines[1], ",")
	require.Len(t, cols, 4)
	assert.Equal(t, "10", cols[0])
	assert.Equal(t, "300", cols[1])
	assert.Equal(t, "4.2", cols[2])
	assert.Len(t, cols[3], 14, "timestamp is YYYYMMDDHHMMSS")
}

func TestFormatWatts(t *testing.T) {
	assert.Equal(t, "10.0", dataset.FormatWatts(10))
	assert.Equal(t, "5.0", dataset.FormatWatts(5.0))
	assert.Equal(t, "5.25", dataset.FormatWatts(5.25))
	assert.Equal(t, "5.26", dataset.FormatWatts(5.256))
	assert.Equal(t, "0.0", dataset.FormatWatts(0))
}

func TestShouldResumeMissingEmptyOrHeaderOnly(t *testing.T) {
	dir := t.TempDir()

	got, err := dataset.ShouldResume(filepath.Join(dir, "missing.csv"), dataset.ResumeAlways, nil)
	require.NoError(t, err)
	assert.False(t, got, "missing file never resumes")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	got, err = dataset.ShouldResume(empty, dataset.ResumeAlways, nil)
	require.NoError(t, err)
	assert.False(t, got, "empty file never resumes")

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("bri,watt\n"), 0o644))
	got, err = dataset.ShouldResume(headerOnly, dataset.ResumeAlways, nil)
	require.NoError(t, err)
	assert.False(t, got, "header-only file never resumes")
}

func TestShouldResumePreference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness.csv")
	require.NoError(t, os.WriteFile(path, []byte("bri,watt\n1,10.0\n"), 0o644))

	got, err := dataset.ShouldResume(path, dataset.ResumeAlways, nil)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = dataset.ShouldResume(path, dataset.ResumeNever, nil)
	require.NoError(t, err)
	assert.False(t, got)

	asked := false
	got, err = dataset.ShouldResume(path, dataset.ResumeAsk, func(prompt string) bool {
		asked = true
		assert.Contains(t, prompt, path)
		return false
	})
	require.NoError(t, err)
	assert.True(t, asked)
	assert.False(t, got)

	// Without a confirmer the interactive preference defaults to yes
	got, err = dataset.ShouldResume(path, dataset.ResumeAsk, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestResumeVariationRoundTrip(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		mode light.ColorMode
		v    variation.Variation
	}{
		{light.ModeBrightness, variation.Brightness(128)},
		{light.ModeColorTemp, variation.ColorTemp(64, 451)},
		{light.ModeHS, variation.HS(255, 64001, 255)},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			path := filepath.Join(dir, tt.mode.String()+".csv")

			w, err := dataset.NewWriter(path, tt.mode, false, false)
			require.NoError(t, err)
			require.NoError(t, w.Write(tt.v, 7.77))
			require.NoError(t, w.Close())

			got, err := dataset.ResumeVariation(path, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.v, got)
		})
	}
}

func TestResumeVariationReturnsLastRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness.csv")

	w, err := dataset.NewWriter(path, light.ModeBrightness, false, false)
	require.NoError(t, err)
	for _, bri := range []int{1, 128, 255} {
		require.NoError(t, w.Write(variation.Brightness(bri), 10))
	}
	require.NoError(t, w.Close())

	got, err := dataset.ResumeVariation(path, light.ModeBrightness)
	require.NoError(t, err)
	assert.Equal(t, variation.Brightness(255), got)
}

func TestResumeVariationUnsupportedMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weird.csv")
	require.NoError(t, os.WriteFile(path, []byte("bri,watt\n1,10.0\n"), 0o644))

	_, err := dataset.ResumeVariation(path, light.ColorMode("rgbw"))
	require.Error(t, err)
}

func TestCompress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness.csv")
	content := []byte("bri,watt\n1,10.0\n128,10.0\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	require.NoError(t, dataset.Compress(path))

	gz, err := os.Open(path + ".gz")
	require.NoError(t, err)
	defer gz.Close()

	zr, err := gzip.NewReader(gz)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Equal(t, content, got, "gzip copy is byte-for-byte")

	_, err = os.Stat(path)
	require.NoError(t, err, "original stays in place for resuming")
}
