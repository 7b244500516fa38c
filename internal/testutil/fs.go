package testutil

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteFiles writes each path -> content pair into fs. Files are created
// executable so they also serve as plugin binaries.
func WriteFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()

	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o755), "failed to write %s", path)
	}
}

// NewFs returns an in-memory filesystem holding files.
func NewFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, files)
	return fs
}

// StatErrFs wraps an afero.Fs whose Stat always fails with Err.
type StatErrFs struct {
	afero.Fs
	Err error
}

// Stat implements afero.Fs.
func (f StatErrFs) Stat(string) (os.FileInfo, error) {
	return nil, f.Err
}
