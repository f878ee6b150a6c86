// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/mill/internal/core/domain"

// ArtifactResolver maps a named toolchain artifact, qualified by platform and
// build mode, to an absolute path. An unresolved artifact is a fatal
// configuration error surfaced as domain.ErrUnknownArtifact.
//
//go:generate go run go.uber.org/mock/mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactResolver interface {
	// ResolveArtifact returns the absolute path of the artifact binary or SDK
	// file for the given platform and mode.
	ResolveArtifact(id string, platform domain.TargetPlatform, mode domain.BuildMode) (string, error)
}
