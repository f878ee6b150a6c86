package ports

import (
	"context"
	"iter"
)

// WatchEvent reports one filesystem change under the watched root.
type WatchEvent struct {
	// Path is the absolute path of the changed file.
	Path string
	// Removed is true when the file was deleted or renamed away.
	Removed bool
}

// Watcher observes a directory tree recursively and streams change events.
// The watch loop feeds events through the invalidator before rebuilding.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively until the context is canceled.
	Start(ctx context.Context, root string) error

	// Events returns an iterator over change events. The iterator ends when
	// the watcher stops.
	Events() iter.Seq[WatchEvent]

	// Stop releases watcher resources.
	Stop() error
}
