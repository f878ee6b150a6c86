package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walker enumerates files under a directory tree. It backs the built-in
// function sources that cannot declare their file set statically.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// skipNames are directories never worth fingerprinting.
var skipNames = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// WalkFiles yields every file under root in walk order, skipping version
// control directories, hidden build output and any name matching ignores.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipNames[d.Name()] || matchesAny(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(d.Name(), ignores) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}

// FilesWithSuffix collects every file under root with the given suffix,
// skipping the build directory when it nests inside root.
func (w *Walker) FilesWithSuffix(root, buildDir, suffix string) []string {
	var files []string
	for path := range w.WalkFiles(root, nil) {
		if buildDir != "" && strings.HasPrefix(path, buildDir+string(filepath.Separator)) {
			continue
		}
		if suffix == "" || strings.HasSuffix(path, suffix) {
			files = append(files, path)
		}
	}
	return files
}
