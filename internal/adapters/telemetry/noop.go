// Package telemetry provides the telemetry adapters and their selection.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/mill/internal/core/ports"
)

var (
	_ ports.Telemetry = (*Noop)(nil)
	_ ports.Vertex    = (*noopVertex)(nil)
)

// Noop discards all telemetry. Used in tests and quiet mode.
type Noop struct{}

// NewNoop creates a Noop telemetry.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns a vertex that discards everything.
func (n *Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	v := &noopVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close is a no-op.
func (n *Noop) Close() error {
	return nil
}

type noopVertex struct{}

func (v *noopVertex) Stdout() io.Writer  { return io.Discard }
func (v *noopVertex) Stderr() io.Writer  { return io.Discard }
func (v *noopVertex) Cached()            {}
func (v *noopVertex) Complete(err error) {}
