package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

func TestReadLimited(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		size    int64
		limit   int64
		wantErr bool
	}{
		{"small file", 100, 0, false},
		{"exact default limit", DefaultReadLimit, 0, false},
		{"over default limit", DefaultReadLimit + 1, 0, true},
		{"custom limit", 64, 64, false},
		{"over custom limit", 65, 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			data, err := ReadLimited(path, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadLimited() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrTooLarge) {
					t.Errorf("expected ErrTooLarge, got %v", err)
				}
				if !errors.Is(err, errors.ErrMalformedInput) {
					t.Errorf("oversized file should be marked malformed input, got %v", err)
				}
				return
			}
			if int64(len(data)) != tt.size {
				t.Errorf("read %d bytes, want %d", len(data), tt.size)
			}
		})
	}
}

func TestReadLimited_Missing(t *testing.T) {
	_, err := ReadLimited(filepath.Join(t.TempDir(), "Info.plist"), 0)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
