//go:build windows

package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// replaceFile writes data to a temp file and renames it over path.
// Rename is best-effort atomic on Windows.
func replaceFile(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "temp-storage-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}
