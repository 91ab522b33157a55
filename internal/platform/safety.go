package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the directory under os.TempDir() that holds sessions of
// dev runs.
const DevDirName = "mdninja-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	// "go run" builds into the temp dir.
	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	// "go test" binaries end in .test.
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveSessionPath determines where the session file lives. With forceTemp
// the file is re-rooted under os.TempDir()/mdninja-dev so dev runs never
// overwrite the real login of the user. Paths already inside the temp dir
// are trusted as they are.
func ResolveSessionPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		return userPath
	}

	cleanUserPath := filepath.Clean(userPath)
	tempRoot := os.TempDir()

	rel, err := filepath.Rel(tempRoot, cleanUserPath)
	if userPath != "" && err == nil && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	name := filepath.Base(cleanUserPath)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "session.yaml"
	}
	return filepath.Join(tempRoot, DevDirName, name)
}
