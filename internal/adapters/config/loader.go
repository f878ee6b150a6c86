// Package config provides the mill.yaml configuration loader.
package config

import (
	"os"
	"sort"
	"strings"

	"go.trai.ch/mill/internal/adapters/fs"
	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// DefaultFilename is the config file looked for in the project root.
const DefaultFilename = "mill.yaml"

// Loader parses mill.yaml into a validated target graph. Function source
// references are bound against the built-in registry at load time so an
// unknown name fails before any action runs.
type Loader struct {
	functions *fs.FunctionSources
}

// NewLoader creates a Loader with the given function-source registry.
func NewLoader(functions *fs.FunctionSources) *Loader {
	return &Loader{functions: functions}
}

// Load reads and validates the configuration at path.
func (l *Loader) Load(path string) (*ports.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var millfile Millfile
	if err := yaml.Unmarshal(data, &millfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	graph := domain.NewGraph()
	for _, name := range sortedTargetNames(millfile.Targets) {
		target, err := l.buildTarget(name, millfile.Targets[name])
		if err != nil {
			return nil, err
		}
		if err := graph.AddTarget(target); err != nil {
			return nil, err
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	defaultTarget := millfile.DefaultTarget
	if defaultTarget != "" {
		if _, err := graph.Target(defaultTarget); err != nil {
			return nil, zerr.Wrap(err, "defaultTarget does not exist")
		}
	}

	return &ports.Manifest{
		Graph:         graph,
		Defines:       millfile.Defines,
		Artifacts:     millfile.Artifacts,
		DefaultTarget: defaultTarget,
	}, nil
}

func (l *Loader) buildTarget(name string, dto TargetDTO) (*domain.Target, error) {
	inputs, err := l.buildSources(name, dto.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := l.buildSources(name, dto.Outputs)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		// Output paths must be declarable before the action creates them, so
		// globs are meaningless there.
		if out.Kind == domain.SourcePattern && strings.ContainsAny(out.Pattern, "*?[") {
			err := zerr.With(zerr.New("output patterns must not glob"), "target", name)
			return nil, zerr.With(err, "pattern", out.Pattern)
		}
	}

	deps := make([]domain.InternedString, len(dto.DependsOn))
	for i, dep := range dto.DependsOn {
		deps[i] = domain.NewInternedString(dep)
	}

	action := domain.ExecAction(dto.Command...)
	action.WorkingDir = dto.WorkingDir
	action.Env = dto.Env

	return &domain.Target{
		Name:         domain.NewInternedString(name),
		Inputs:       inputs,
		Outputs:      outputs,
		Dependencies: deps,
		Action:       action,
	}, nil
}

func (l *Loader) buildSources(target string, dtos []SourceDTO) ([]domain.Source, error) {
	sources := make([]domain.Source, 0, len(dtos))
	for _, dto := range dtos {
		src, err := l.buildSource(dto)
		if err != nil {
			return nil, zerr.With(err, "target", target)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (l *Loader) buildSource(dto SourceDTO) (domain.Source, error) {
	switch {
	case dto.Function != "":
		return l.functions.Lookup(dto.Function)
	case dto.Artifact != "":
		return domain.ArtifactSource(
			dto.Artifact,
			domain.TargetPlatform(dto.Platform),
			domain.BuildMode(dto.Mode),
		), nil
	default:
		return domain.PatternSource(dto.Pattern), nil
	}
}

// sortedTargetNames keeps graph construction deterministic; YAML maps do not
// preserve order across parses.
func sortedTargetNames(targets map[string]TargetDTO) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
