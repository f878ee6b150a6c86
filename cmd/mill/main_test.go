package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_Version wires the full dependency graph and runs the cheapest
// command end to end.
func TestRun_Version(t *testing.T) {
	t.Setenv("MILL_QUIET", "1")
	restoreArgs(t)
	os.Args = []string{"mill", "version"}

	assert.Equal(t, 0, run())
}

func TestRun_Build(t *testing.T) {
	t.Setenv("MILL_QUIET", "1")
	restoreArgs(t)

	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "lib"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, "lib", "main.dart"), []byte("void main() {}"), 0o600))
	millfile := `
defaultTarget: kernel_snapshot
targets:
  kernel_snapshot:
    inputs:
      - "{PROJECT_DIR}/lib/main.dart"
    outputs:
      - "{BUILD_DIR}/main.app.dill"
    command: ["cp", "{PROJECT_DIR}/lib/main.dart", "{BUILD_DIR}/main.app.dill"]
`
	require.NoError(t, os.WriteFile(filepath.Join(project, "mill.yaml"), []byte(millfile), 0o600))

	os.Args = []string{"mill", "build", "--project", project}
	assert.Equal(t, 0, run())
	assert.FileExists(t, filepath.Join(project, "build", "main.app.dill"))
}

func TestRun_Failure(t *testing.T) {
	t.Setenv("MILL_QUIET", "1")
	restoreArgs(t)

	os.Args = []string{"mill", "build", "--project", t.TempDir()}
	assert.Equal(t, 1, run())
}

func restoreArgs(t *testing.T) {
	t.Helper()
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })
}
