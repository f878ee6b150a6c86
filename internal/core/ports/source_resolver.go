package ports

import "go.trai.ch/mill/internal/core/domain"

// SourceResolver expands a source declaration into concrete absolute file
// paths for the given environment. Resolution preserves declaration order, is
// deterministic, and is side-effect-free apart from filesystem reads.
//
//go:generate go run go.uber.org/mock/mockgen -source=source_resolver.go -destination=mocks/mock_source_resolver.go -package=mocks
type SourceResolver interface {
	// Resolve expands one source. Pattern sources may glob; artifact sources
	// go through the artifact resolver; function sources run their file-list
	// function.
	Resolve(src domain.Source, env *domain.Environment) ([]string, error)

	// ResolveAll expands a list of sources in order, concatenating the results.
	ResolveAll(srcs []domain.Source, env *domain.Environment) ([]string, error)
}
