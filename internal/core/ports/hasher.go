package ports

import "go.trai.ch/mill/internal/core/domain"

// FileHasher computes content fingerprints for staleness comparison.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type FileHasher interface {
	// Fingerprint hashes the file content and captures size and mtime.
	Fingerprint(path string) (domain.Fingerprint, error)
}
