package datadir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Validate copies the bundled tree to target when target does not exist yet.
// An existing target is left alone so user edits survive upgrades.
func Validate(bundled string, target string) error {
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not check data directory %s: %w", target, err)
	}

	info, err := os.Stat(bundled)
	if err != nil {
		return fmt.Errorf("bundled data directory %s is missing: %w", bundled, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bundled data path %s is not a directory", bundled)
	}

	return os.CopyFS(target, os.DirFS(bundled))
}
