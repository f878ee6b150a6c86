package app

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/mill/internal/core/ports"
)

// debounceWindow batches bursts of filesystem events into one rebuild.
const debounceWindow = 250 * time.Millisecond

// Watch builds once, then rebuilds whenever watched files change. Raw watch
// events are confirmed through the invalidator against the last build time,
// so editor noise (chmod storms, swap files that vanish again) does not
// trigger rebuilds. Runs until the context is canceled.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	s, err := a.newSession(opts)
	if err != nil {
		return err
	}

	lastBuild := time.Now()
	if _, err := a.runBuild(ctx, s); err != nil {
		// Keep watching: the next change may fix the build.
		a.logger.Error(err)
	}

	if err := a.watcher.Start(ctx, s.env.ProjectDir); err != nil {
		return err
	}
	defer a.watcher.Stop() //nolint:errcheck // Best effort stop on the way out

	events := make(chan ports.WatchEvent)
	go func() {
		defer close(events)
		for event := range a.watcher.Events() {
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	pending := make(map[string]bool)
	removed := false
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Removed {
				removed = true
			} else {
				pending[event.Path] = true
			}
			flush = time.After(debounceWindow)

		case <-flush:
			flush = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			clear(pending)

			changed, err := a.invalidator.FindInvalidated(ctx, lastBuild, paths, "")
			if err != nil {
				return err
			}
			if !removed && len(changed) == 0 {
				continue
			}
			removed = false

			lastBuild = time.Now()
			if _, err := a.runBuild(ctx, s); err != nil {
				a.logger.Error(err)
			}
		}
	}
}
