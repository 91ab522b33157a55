package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MarkerDir marks the root of a local mirror.
const MarkerDir = ".mdninja"

// ErrNoRoot is returned by FindRoot when no marker is found.
var ErrNoRoot = errors.New("mirror root not found")

// FindRoot looks upwards from startDir for a directory holding MarkerDir and
// returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, MarkerDir)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w above %s", ErrNoRoot, abs)
}

// Init makes dir a mirror root. It is idempotent.
func Init(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(abs, MarkerDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create mirror marker: %w", err)
	}
	return abs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
