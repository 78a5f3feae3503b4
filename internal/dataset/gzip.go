package dataset

import (
	"compress/gzip"
	"io"
	"os"

	"codeberg.org/mutker/lightsweep/internal/errors"
)

// Compress writes a gzipped byte-for-byte copy of the dataset next to it,
// as <path>.gz. The original file is left in place for resuming.
func Compress(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrap(ErrCompressFailed, err)
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return errors.Wrap(ErrCompressFailed, err)
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		return errors.Wrap(ErrCompressFailed, err)
	}

	if err := zw.Close(); err != nil {
		dst.Close()
		return errors.Wrap(ErrCompressFailed, err)
	}

	if err := dst.Close(); err != nil {
		return errors.Wrap(ErrCompressFailed, err)
	}

	return nil
}
