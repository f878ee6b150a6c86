// Package main is the entry point for the mill CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/mill/cmd/mill/commands"
	"go.trai.ch/mill/internal/app"
	_ "go.trai.ch/mill/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, _, err := graft.ExecuteFor[*app.App](ctx)
	if err != nil {
		// Logger is not available if wiring failed; write straight to stderr.
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cli := commands.New(application)
	if err := cli.Execute(ctx); err != nil {
		// zerr prints the full report with metadata under %+v.
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		return 1
	}
	return 0
}
