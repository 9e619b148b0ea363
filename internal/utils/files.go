package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// CandidatePaths lists where name is looked up, in priority order: the bare
// name, data/, ../data/, ../, then each extra directory.
func CandidatePaths(name string, extraDirs ...string) []string {
	paths := []string{
		name,
		filepath.Join("data", name),
		filepath.Join("..", "data", name),
		filepath.Join("..", name),
	}
	for _, d := range extraDirs {
		if d == "" {
			continue
		}
		paths = append(paths, filepath.Join(d, name))
	}
	return paths
}

// IsNotExist reports whether err means the file is simply absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
