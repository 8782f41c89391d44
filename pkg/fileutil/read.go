package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// DefaultReadLimit bounds reads of installed artifacts. Desktop entries and
// the Info.plist osacompile writes are a few kilobytes.
const DefaultReadLimit int64 = 1 << 20

// ErrTooLarge is returned, marked errors.ErrMalformedInput, when a file is
// over the read limit.
var ErrTooLarge = errors.New("file too large")

// ReadLimited reads path, refusing anything over limit bytes. A limit of
// zero or less uses DefaultReadLimit. Errors from os.Open keep their
// fs.ErrNotExist and fs.ErrPermission identity.
func ReadLimited(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultReadLimit
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, tooLarge(path, limit)
	}

	// Stat can under-report for special files, so read one byte past the
	// limit to detect overflow.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if int64(len(data)) > limit {
		return nil, tooLarge(path, limit)
	}
	return data, nil
}

func tooLarge(path string, limit int64) error {
	return errors.Mark(errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", path, limit), errors.ErrMalformedInput)
}
