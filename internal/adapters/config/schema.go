package config

import (
	"gopkg.in/yaml.v3"

	"go.trai.ch/zerr"
)

// Millfile is the structure of the mill.yaml configuration file.
type Millfile struct {
	Version       string               `yaml:"version"`
	DefaultTarget string               `yaml:"defaultTarget"`
	Defines       map[string]string    `yaml:"defines"`
	Artifacts     map[string]string    `yaml:"artifacts"`
	Targets       map[string]TargetDTO `yaml:"targets"`
}

// TargetDTO is one target definition in the configuration.
type TargetDTO struct {
	Inputs     []SourceDTO       `yaml:"inputs"`
	Outputs    []SourceDTO       `yaml:"outputs"`
	Command    []string          `yaml:"command"`
	DependsOn  []string          `yaml:"dependsOn"`
	WorkingDir string            `yaml:"workingDir"`
	Env        map[string]string `yaml:"env"`
}

// SourceDTO is one source declaration. A plain string is a pattern; a mapping
// selects the artifact or function variant:
//
//	inputs:
//	  - "{PROJECT_DIR}/lib/main.dart"
//	  - artifact: dart_compiler
//	    platform: linux-x64
//	  - function: project_sources
type SourceDTO struct {
	Pattern  string
	Artifact string
	Platform string
	Mode     string
	Function string
}

type sourceMapping struct {
	Artifact string `yaml:"artifact"`
	Platform string `yaml:"platform"`
	Mode     string `yaml:"mode"`
	Function string `yaml:"function"`
}

// UnmarshalYAML accepts either a scalar pattern or a variant mapping.
func (s *SourceDTO) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Pattern)
	case yaml.MappingNode:
		var m sourceMapping
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Artifact == "" && m.Function == "" {
			return zerr.New("source mapping needs an artifact or function key")
		}
		if m.Artifact != "" && m.Function != "" {
			return zerr.New("source mapping cannot be both artifact and function")
		}
		s.Artifact = m.Artifact
		s.Platform = m.Platform
		s.Mode = m.Mode
		s.Function = m.Function
		return nil
	default:
		return zerr.New("source must be a string pattern or a mapping")
	}
}
