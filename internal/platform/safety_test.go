package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/mdninja/internal/platform"
)

func TestResolveSessionPath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, platform.DevDirName)

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{
			name:     "Normal Mode - Specific Path",
			userPath: "/home/me/.config/mdninja/session.yaml",
			expected: "/home/me/.config/mdninja/session.yaml",
		},
		{
			name:      "Dev Mode - Empty Path",
			userPath:  "",
			forceTemp: true,
			expected:  filepath.Join(devBase, "session.yaml"),
		},
		{
			name:      "Dev Mode - Real Config Dir",
			userPath:  "/home/me/.config/mdninja/session.yaml",
			forceTemp: true,
			expected:  filepath.Join(devBase, "session.yaml"),
		},
		{
			name:      "Dev Mode - Clean Name",
			userPath:  "../bad/work.yaml",
			forceTemp: true,
			expected:  filepath.Join(devBase, "work.yaml"),
		},
		{
			name:      "Dev Mode - Exception for Temp Dir",
			userPath:  filepath.Join(tempRoot, "my-test", "session.yaml"),
			forceTemp: true,
			expected:  filepath.Join(tempRoot, "my-test", "session.yaml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, platform.ResolveSessionPath(tt.userPath, tt.forceTemp))
		})
	}
}

func TestIsDevRun(t *testing.T) {
	assert.True(t, platform.IsDevRun(), "go test binaries are dev runs")
}
