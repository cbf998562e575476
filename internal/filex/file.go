// Package filex resolves on-disk locations used by the client binaries.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the per-user directory holding the local database.
const DataDirName = ".geokeeper"

// EnsureDataDir creates (if needed) and returns ~/.geokeeper/<sub>.
// An empty sub returns the data directory itself.
func EnsureDataDir(sub string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return EnsureSubDir(filepath.Join(home, DataDirName), sub)
}

// EnsureSubDir creates base/sub with 0o700 permissions and returns its path.
func EnsureSubDir(base, sub string) (string, error) {
	dir := filepath.Join(base, sub)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
