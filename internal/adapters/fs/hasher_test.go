package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mill/internal/adapters/fs"
)

func TestHasher_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.dart")
	require.NoError(t, os.WriteFile(path, []byte("void main() {}\n"), 0o600))

	h := fs.NewHasher()
	fp, err := h.Fingerprint(path)
	require.NoError(t, err)
	assert.Len(t, fp.Hash, 16)
	assert.Equal(t, int64(15), fp.Size)
	assert.False(t, fp.MTime.IsZero())

	// Same content hashes identically regardless of path or mtime.
	other := filepath.Join(dir, "copy.dart")
	require.NoError(t, os.WriteFile(other, []byte("void main() {}\n"), 0o600))
	fp2, err := h.Fingerprint(other)
	require.NoError(t, err)
	assert.True(t, fp.Equal(fp2))
}

func TestHasher_Fingerprint_ContentChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.dart")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	h := fs.NewHasher()
	before, err := h.Fingerprint(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o600))
	after, err := h.Fingerprint(path)
	require.NoError(t, err)

	assert.False(t, before.Equal(after))
}

func TestHasher_Fingerprint_Missing(t *testing.T) {
	h := fs.NewHasher()
	_, err := h.Fingerprint(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "main.dart"), "m")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "x")
	writeFile(t, filepath.Join(root, "README.md"), "r")

	w := fs.NewWalker()
	var files []string
	for path := range w.WalkFiles(root, nil) {
		files = append(files, path)
	}

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "lib", "main.dart"),
		filepath.Join(root, "README.md"),
	}, files)
}

func TestWalker_WalkFiles_Ignores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.dart"), "m")
	writeFile(t, filepath.Join(root, "main.dill"), "d")

	w := fs.NewWalker()
	var files []string
	for path := range w.WalkFiles(root, []string{"*.dill"}) {
		files = append(files, path)
	}
	assert.Equal(t, []string{filepath.Join(root, "main.dart")}, files)
}

func TestWalker_FilesWithSuffix(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	writeFile(t, filepath.Join(root, "lib", "main.dart"), "m")
	writeFile(t, filepath.Join(root, "lib", "util.dart"), "u")
	writeFile(t, filepath.Join(root, "pubspec.yaml"), "y")
	writeFile(t, filepath.Join(buildDir, "app.dill"), "out")

	w := fs.NewWalker()

	dart := w.FilesWithSuffix(root, buildDir, ".dart")
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "lib", "main.dart"),
		filepath.Join(root, "lib", "util.dart"),
	}, dart)

	all := w.FilesWithSuffix(root, buildDir, "")
	assert.NotContains(t, all, filepath.Join(buildDir, "app.dill"))
	assert.Contains(t, all, filepath.Join(root, "pubspec.yaml"))
}

func TestFunctionSources(t *testing.T) {
	reg := fs.NewFunctionSources(fs.NewWalker())

	src, err := reg.Lookup("project_sources")
	require.NoError(t, err)
	assert.Equal(t, "project_sources", src.FunctionName)

	env := testEnv(t)
	writeFile(t, filepath.Join(env.ProjectDir, "a.dart"), "a")
	paths, err := src.Function(env)
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(env.ProjectDir, "a.dart"))

	_, err = reg.Lookup("no_such_function")
	require.Error(t, err)
}
