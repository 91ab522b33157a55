package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   site/ (.mdninja)
	//     drafts/
	//       old/
	//   empty/
	//   fake/ (.mdninja is a file)
	baseDir := t.TempDir()
	siteDir := filepath.Join(baseDir, "site")
	draftsDir := filepath.Join(siteDir, "drafts")
	oldDir := filepath.Join(draftsDir, "old")
	emptyDir := filepath.Join(baseDir, "empty")
	fakeDir := filepath.Join(baseDir, "fake")

	require.NoError(t, os.MkdirAll(oldDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.MkdirAll(fakeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fakeDir, MarkerDir), nil, 0644))

	root, err := Init(siteDir)
	require.NoError(t, err)
	assert.Equal(t, siteDir, root)

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: siteDir, wantRoot: siteDir},
		{name: "Start in Subdir", startPath: draftsDir, wantRoot: siteDir},
		{name: "Start Nested Deeply", startPath: oldDir, wantRoot: siteDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
		{name: "Marker Must Be A Directory", startPath: fakeDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)
	_, err = Init(dir)
	assert.NoError(t, err)
}
