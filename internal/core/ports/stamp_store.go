package ports

import "go.trai.ch/mill/internal/core/domain"

// StampStore persists per-target stamps across build invocations. Only one
// build process writes the store at a time; concurrent builds against the
// same project are undefined behavior.
//
//go:generate go run go.uber.org/mock/mockgen -source=stamp_store.go -destination=mocks/mock_stamp_store.go -package=mocks
type StampStore interface {
	// Load returns the stamp for the named target, or nil if absent. A record
	// that cannot be parsed is reported as absent, never as an error, so a
	// crashed prior run degrades to a rebuild of that target only.
	Load(target string) (*domain.Stamp, error)

	// Save persists the stamp, replacing any prior record for the target.
	Save(stamp *domain.Stamp) error
}
