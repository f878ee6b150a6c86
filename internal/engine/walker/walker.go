// Package walker implements the incremental build graph walk: dependency
// ordering, staleness decisions and action execution.
package walker

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

// Walker executes targets in dependency order, skipping targets whose stamps
// are still fresh. Execution is sequential: every dependency completes (or is
// skipped as up to date) strictly before its dependents, and the first
// failure halts the walk with no continuation to siblings.
type Walker struct {
	resolver  ports.SourceResolver
	hasher    ports.FileHasher
	store     ports.StampStore
	runner    ports.ProcessRunner
	telemetry ports.Telemetry
	logger    ports.Logger
}

// New creates a Walker.
func New(
	resolver ports.SourceResolver,
	hasher ports.FileHasher,
	store ports.StampStore,
	runner ports.ProcessRunner,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Walker {
	return &Walker{
		resolver:  resolver,
		hasher:    hasher,
		store:     store,
		runner:    runner,
		telemetry: telemetry,
		logger:    logger,
	}
}

// BuildResult summarizes one walk.
type BuildResult struct {
	// Executed lists targets whose actions ran, in execution order.
	Executed []string
	// Skipped lists targets that were up to date.
	Skipped []string
}

// Build walks the graph from root. Cycle detection and dependency ordering
// come from the graph's post-order traversal; an unknown root or a cycle
// fails before any action runs.
func (w *Walker) Build(ctx context.Context, graph *domain.Graph, root string, env *domain.Environment) (*BuildResult, error) {
	order, err := graph.ExecutionOrder(domain.NewInternedString(root))
	if err != nil {
		return nil, err
	}

	result := &BuildResult{}
	for i := range order {
		target := &order[i]
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		executed, err := w.buildTarget(ctx, target, env)
		if err != nil {
			return result, zerr.With(err, "target", target.Name.String())
		}
		if executed {
			result.Executed = append(result.Executed, target.Name.String())
		} else {
			result.Skipped = append(result.Skipped, target.Name.String())
		}
	}
	return result, nil
}

// buildTarget resolves, decides staleness, and runs the action if needed.
// Reports whether the action executed.
func (w *Walker) buildTarget(ctx context.Context, target *domain.Target, env *domain.Environment) (bool, error) {
	name := target.Name.String()

	inputs, err := w.resolver.ResolveAll(target.Inputs, env)
	if err != nil {
		return false, err
	}
	outputs, err := w.resolver.ResolveAll(target.Outputs, env)
	if err != nil {
		return false, err
	}

	prior, err := w.store.Load(name)
	if err != nil {
		return false, err
	}

	decision, err := w.decide(prior, inputs, outputs, env)
	if err != nil {
		return false, err
	}

	ctx, vertex := w.telemetry.Record(ctx, name)
	if !decision.stale {
		vertex.Cached()
		vertex.Complete(nil)
		return false, nil
	}

	if err := w.runAction(ctx, target, decision.change, env, vertex); err != nil {
		// Partial outputs stay on disk un-stamped so the next run retries.
		vertex.Complete(err)
		return false, err
	}

	if err := w.stampTarget(target, env); err != nil {
		vertex.Complete(err)
		return false, err
	}

	vertex.Complete(nil)
	return true, nil
}

// stampTarget re-resolves and re-fingerprints the target's sources after a
// successful action and persists the new stamp. An action that succeeded
// without producing every declared output is a failure, not a success.
func (w *Walker) stampTarget(target *domain.Target, env *domain.Environment) error {
	name := target.Name.String()

	// Re-resolve: output globs may match files that did not exist before the
	// action ran.
	inputs, err := w.resolver.ResolveAll(target.Inputs, env)
	if err != nil {
		return err
	}
	outputs, err := w.resolver.ResolveAll(target.Outputs, env)
	if err != nil {
		return err
	}

	record := domain.NewStamp(name)
	record.Defines = env.Defines.Flatten()
	record.BuildTime = time.Now()

	for _, path := range inputs {
		fp, err := w.hasher.Fingerprint(path)
		if err != nil {
			return zerr.Wrap(err, "failed to fingerprint input")
		}
		record.Inputs[path] = fp
	}
	for _, path := range outputs {
		fp, err := w.hasher.Fingerprint(path)
		if err != nil {
			missing := errors.Join(domain.ErrMissingOutput, err)
			return zerr.With(missing, "path", path)
		}
		record.Outputs[path] = fp
	}

	return w.store.Save(record)
}
