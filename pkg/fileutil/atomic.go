// Package fileutil writes and removes installer artifacts without leaving
// half-written files behind.
package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// AtomicWriteFile writes data to a temporary file next to path and renames
// it into place, so readers see either the old file or the new one. The
// parent directory must already exist. perm is applied regardless of umask.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".org-protocol-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "renaming temp file to %s", filepath.Base(path))
	}
	return nil
}

// ReplaceFile atomically replaces an existing file, keeping its permission
// bits. It fails, creating nothing, if path does not exist.
func ReplaceFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat target file")
	}
	return AtomicWriteFile(path, data, info.Mode().Perm())
}

// RemoveIfExists removes path, recursively for directories such as an
// application bundle, and reports whether anything was there. A missing
// path is not an error.
func RemoveIfExists(path string) (bool, error) {
	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, errors.Wrap(err, "stat")
	}

	remove := os.Remove
	if info.IsDir() {
		remove = os.RemoveAll
	}
	if err := remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrap(err, "removing")
	}
	return true, nil
}
