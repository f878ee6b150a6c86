package ports

import (
	"context"
	"io"
)

// ProcessSpec describes one external tool invocation.
type ProcessSpec struct {
	// Argv is the command line; Argv[0] is the executable.
	Argv []string
	// Dir is the working directory. Empty means the caller's.
	Dir string
	// Env carries extra KEY=VALUE pairs layered over the inherited environment.
	Env []string
	// Stdout and Stderr receive the streamed process output. Nil writers
	// discard the stream.
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessRunner runs a subprocess to completion. A non-zero exit is returned
// as an error carrying the exit code; the walker surfaces it as action
// failure. No retry or timeout policy is applied here — cancellation comes in
// through the context.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	Run(ctx context.Context, spec ProcessSpec) error
}
