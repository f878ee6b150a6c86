package ports

import (
	"context"
	"io"
)

// Telemetry records per-target progress vertices.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a vertex for the named unit of work and attaches it to
	// the returned context so nested work can stream output into it.
	Record(ctx context.Context, name string) (context.Context, Vertex)

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is one unit of work in the progress display.
type Vertex interface {
	// Stdout returns a writer for the unit's standard output stream.
	Stdout() io.Writer
	// Stderr returns a writer for the unit's error output stream.
	Stderr() io.Writer
	// Cached marks the vertex as skipped because it was up to date.
	Cached()
	// Complete marks the vertex finished, successfully when err is nil.
	Complete(err error)
}

type vertexKey struct{}

// ContextWithVertex attaches a vertex to the context.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the attached vertex, or nil.
func VertexFromContext(ctx context.Context) Vertex {
	v, _ := ctx.Value(vertexKey{}).(Vertex)
	return v
}
