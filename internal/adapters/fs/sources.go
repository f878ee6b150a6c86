package fs

import (
	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/zerr"
)

// FunctionSources is the registry of named file-list functions available to
// config files. The registry is built at construction, never mutated after.
type FunctionSources struct {
	walker *Walker
	funcs  map[string]domain.FileListFunc
}

// NewFunctionSources builds the registry of built-in function sources.
func NewFunctionSources(walker *Walker) *FunctionSources {
	fs := &FunctionSources{walker: walker, funcs: make(map[string]domain.FileListFunc)}
	fs.funcs["project_sources"] = fs.projectSources
	return fs
}

// Lookup returns the named function source, for config files that declare
// computed file sets.
func (f *FunctionSources) Lookup(name string) (domain.Source, error) {
	fn, ok := f.funcs[name]
	if !ok {
		return domain.Source{}, zerr.With(zerr.New("unknown function source"), "function", name)
	}
	return domain.FunctionSource(name, fn), nil
}

// projectSources enumerates every file under the project root, excluding the
// build output tree. It is the "every reachable source file" escape hatch for
// targets whose input set cannot be known statically.
func (f *FunctionSources) projectSources(env *domain.Environment) ([]string, error) {
	return f.walker.FilesWithSuffix(env.ProjectDir, env.BuildDir, ""), nil
}
