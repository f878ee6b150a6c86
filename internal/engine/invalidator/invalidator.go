// Package invalidator decides which source files changed since the last
// successful compile, for the incremental recompilation path.
package invalidator

import (
	"context"
	"os"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Invalidator scans a set of files against a last-compile baseline. Workers
// above 1 fan the per-file stats out over an errgroup; parallel and
// sequential scans produce identical result sets, so parallelism is purely a
// performance knob.
type Invalidator struct {
	workers int
}

// New creates an Invalidator with the given worker count. Anything below 2
// scans sequentially.
func New(workers int) *Invalidator {
	return &Invalidator{workers: workers}
}

// FindInvalidated returns the subset of uris whose mtime is strictly after
// lastCompiled. A zero lastCompiled means there is no baseline yet: nothing
// is invalidated because the first compile covers everything. Files that no
// longer exist are silently skipped; deletion handling belongs to the caller.
// The result is semantically a set — order is not significant.
func (inv *Invalidator) FindInvalidated(ctx context.Context, lastCompiled time.Time, uris []string, packagesPath string) ([]string, error) {
	if lastCompiled.IsZero() {
		return nil, nil
	}

	scan := uris
	if packagesPath != "" {
		scan = append(append([]string{}, uris...), packagesPath)
	}

	if inv.workers > 1 {
		return inv.scanParallel(ctx, lastCompiled, scan)
	}
	return inv.scanSequential(ctx, lastCompiled, scan)
}

func (inv *Invalidator) scanSequential(ctx context.Context, lastCompiled time.Time, uris []string) ([]string, error) {
	var invalidated []string
	for _, uri := range uris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if changedSince(uri, lastCompiled) {
			invalidated = append(invalidated, uri)
		}
	}
	return invalidated, nil
}

func (inv *Invalidator) scanParallel(ctx context.Context, lastCompiled time.Time, uris []string) ([]string, error) {
	var (
		mu          sync.Mutex
		invalidated []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(inv.workers)

	for _, uri := range uris {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if changedSince(uri, lastCompiled) {
				mu.Lock()
				invalidated = append(invalidated, uri)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "invalidation scan failed")
	}
	return invalidated, nil
}

// changedSince reports whether the file exists and was modified strictly
// after the baseline. Missing files are not reported as invalidated.
func changedSince(uri string, baseline time.Time) bool {
	info, err := os.Stat(uri)
	if err != nil {
		return false
	}
	return info.ModTime().After(baseline)
}
