package genmsg

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateFiles asserts that every named file exists in dir. It fails fast:
// the first missing file is reported as a *MissingFileError and the rest are
// not checked.
func ValidateFiles(dir string, files []string) error {
	for _, name := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return &MissingFileError{Path: path}
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return nil
}
