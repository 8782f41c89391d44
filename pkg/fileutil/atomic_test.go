package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{"desktop entry", []byte("[Desktop Entry]\nName=Org-Protocol\n"), 0o644},
		{"empty", []byte{}, 0o644},
		{"private", []byte{0x00, 0x01, 0xFF}, 0o600},
		{"plist", []byte(`<?xml version="1.0"?><plist version="1.0"><dict></dict></plist>` + "\n"), 0o644},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "artifact")

			require.NoError(t, AtomicWriteFile(path, tt.data, tt.perm))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())
		})
	}
}

func TestAtomicWriteFile_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "org-protocol.desktop")
	require.NoError(t, os.WriteFile(path, []byte("[Desktop Entry]\nName=Old\n"), 0o600))

	want := []byte("[Desktop Entry]\nName=Org-Protocol\n")
	require.NoError(t, AtomicWriteFile(path, want, 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAtomicWriteFile_MissingDirectory(t *testing.T) {
	dir := t.TempDir()

	err := AtomicWriteFile(filepath.Join(dir, "applications", "org-protocol.desktop"), []byte("x"), 0o644)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAtomicWriteFile_CleansUpOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target makes the rename fail after the
	// temp file has been written.
	target := filepath.Join(dir, "org-protocol.desktop")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

	require.Error(t, AtomicWriteFile(target, []byte("x"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestReplaceFile_PreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Info.plist")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o640))
	// WriteFile is subject to umask
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, ReplaceFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestReplaceFile_MissingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.plist")

	assert.Error(t, ReplaceFile(path, []byte("data")))
	assert.NoFileExists(t, path, "ReplaceFile must not create a missing target")
}

func TestRemoveIfExists(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		removed, err := RemoveIfExists(filepath.Join(t.TempDir(), "nope.desktop"))
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("desktop entry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "org-protocol.desktop")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		removed, err := RemoveIfExists(path)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.NoFileExists(t, path)
	})

	t.Run("bundle directory", func(t *testing.T) {
		bundle := filepath.Join(t.TempDir(), "OrgProtocolClient.app")
		require.NoError(t, os.MkdirAll(filepath.Join(bundle, "Contents"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(bundle, "Contents", "Info.plist"), []byte("x"), 0o600))

		removed, err := RemoveIfExists(bundle)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.NoDirExists(t, bundle)
	})

	t.Run("dangling symlink", func(t *testing.T) {
		dir := t.TempDir()
		link := filepath.Join(dir, "OrgProtocolClient.app")
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), link))

		removed, err := RemoveIfExists(link)
		require.NoError(t, err)
		assert.True(t, removed)
		_, err = os.Lstat(link)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
