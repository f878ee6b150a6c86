package ports

import "go.trai.ch/mill/internal/core/domain"

// Manifest is the loaded build configuration: the target graph plus the
// default defines declared in the config file. CLI flags layer on top.
type Manifest struct {
	Graph *domain.Graph
	// Defines are passthrough defaults from the config file's defines section.
	Defines map[string]string
	// Artifacts are the artifact table entries declared in the config file,
	// keyed "<id>", "<id>/<platform>" or "<id>/<platform>/<mode>".
	Artifacts map[string]string
	// DefaultTarget is built when the CLI names none.
	DefaultTarget string
}

// ConfigLoader loads the build configuration from disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path and returns the validated
	// manifest.
	Load(path string) (*Manifest, error)
}
