// Package fs provides the filesystem adapters: source resolution, content
// hashing and directory walking.
package fs

import (
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver expands source declarations against an environment. Artifact
// sources delegate to the injected artifact resolver; there is no global
// artifact registry.
type Resolver struct {
	artifacts ports.ArtifactResolver
}

// NewResolver creates a Resolver backed by the given artifact resolver.
func NewResolver(artifacts ports.ArtifactResolver) *Resolver {
	return &Resolver{artifacts: artifacts}
}

// ResolveAll expands srcs in order, concatenating results.
func (r *Resolver) ResolveAll(srcs []domain.Source, env *domain.Environment) ([]string, error) {
	var paths []string
	for _, src := range srcs {
		resolved, err := r.Resolve(src, env)
		if err != nil {
			return nil, err
		}
		paths = append(paths, resolved...)
	}
	return paths, nil
}

// Resolve expands one source into zero or more absolute paths.
func (r *Resolver) Resolve(src domain.Source, env *domain.Environment) ([]string, error) {
	switch src.Kind {
	case domain.SourcePattern:
		return r.resolvePattern(src.Pattern, env)
	case domain.SourceArtifact:
		return r.resolveArtifact(src, env)
	case domain.SourceFunction:
		return src.Function(env)
	default:
		return nil, zerr.With(zerr.New("unknown source kind"), "source", src.Describe())
	}
}

// resolvePattern substitutes {KEY} tokens and expands globs. A pattern
// without glob metacharacters resolves to its literal path whether or not the
// file exists yet, so outputs can be declared before the action creates them.
func (r *Resolver) resolvePattern(pattern string, env *domain.Environment) ([]string, error) {
	substituted, err := env.Expand(pattern)
	if err != nil {
		return nil, err
	}

	path := filepath.Clean(substituted)
	if !filepath.IsAbs(path) {
		path = filepath.Join(env.ProjectDir, path)
	}

	if !strings.ContainsAny(path, "*?[") {
		return []string{path}, nil
	}

	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob pattern"), "pattern", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

func (r *Resolver) resolveArtifact(src domain.Source, env *domain.Environment) ([]string, error) {
	platform := src.ArtifactPlatform
	if platform == "" {
		platform = env.Defines.Platform
	}
	mode := src.ArtifactMode
	if mode == "" {
		mode = env.Defines.Mode
	}

	path, err := r.artifacts.ResolveArtifact(src.ArtifactID, platform, mode)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

