package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveUpload copies r into dir/name and returns the written path and size.
// name must be a bare file name.
func SaveUpload(dir, name string, r io.Reader) (string, int64, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", 0, fmt.Errorf("invalid upload name %q", name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload: %w", err)
	}
	defer out.Close()

	n, err := out.ReadFrom(r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to save file: %w", err)
	}
	return dst, n, nil
}
