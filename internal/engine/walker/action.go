package walker

import (
	"context"
	"errors"
	"sort"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

// runAction dispatches on the action variant. Failures join ErrActionFailed
// so callers can classify without inspecting the underlying tool error.
func (w *Walker) runAction(ctx context.Context, target *domain.Target, change domain.ChangeSet, env *domain.Environment, vertex ports.Vertex) error {
	var err error
	switch target.Action.Kind {
	case domain.ActionExec:
		err = w.runExec(ctx, target, env, vertex)
	case domain.ActionFunc:
		err = target.Action.Func(ctx, change, env)
	default:
		err = zerr.New("target has no action")
	}
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrActionFailed, err), "action failed")
	}
	return nil
}

// runExec substitutes {KEY} tokens in the argv and hands the process to the
// runner, streaming output into the target's vertex.
func (w *Walker) runExec(ctx context.Context, target *domain.Target, env *domain.Environment, vertex ports.Vertex) error {
	if len(target.Action.Command) == 0 {
		return nil
	}

	argv := make([]string, len(target.Action.Command))
	for i, arg := range target.Action.Command {
		substituted, err := env.Expand(arg)
		if err != nil {
			return err
		}
		argv[i] = substituted
	}

	dir := env.ProjectDir
	if target.Action.WorkingDir != "" {
		substituted, err := env.Expand(target.Action.WorkingDir)
		if err != nil {
			return err
		}
		dir = substituted
	}

	return w.runner.Run(ctx, ports.ProcessSpec{
		Argv:   argv,
		Dir:    dir,
		Env:    flattenEnv(target.Action.Env),
		Stdout: vertex.Stdout(),
		Stderr: vertex.Stderr(),
	})
}

func flattenEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
