//go:build !windows

package storage

import "github.com/google/renameio/v2"

// replaceFile writes data to a temp file in the same directory, fsyncs it and
// renames it over path.
func replaceFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0o600)
}
