// Package shell implements the external process runner.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessRunner = (*Runner)(nil)

// Runner executes external tools via os/exec. The spec's environment is
// layered over the inherited one; PATH entries from the spec are prepended so
// configured toolchains win over host installs.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the process to completion. Non-zero exit is returned as an
// error carrying the exit code; no retry is attempted here.
func (r *Runner) Run(ctx context.Context, spec ports.ProcessSpec) error {
	if len(spec.Argv) == 0 {
		return zerr.New("empty command")
	}

	name := spec.Argv[0]
	env := mergeEnvironment(os.Environ(), spec.Env)

	executable := name
	if !filepath.IsAbs(name) {
		if located, err := lookPath(name, env); err == nil {
			executable = located
		}
	}

	cmd := exec.CommandContext(ctx, executable, spec.Argv[1:]...) //nolint:gosec // command comes from build config
	if len(cmd.Args) > 0 {
		// Preserve the name as invoked; CommandContext rewrites Args[0] to
		// the resolved path.
		cmd.Args[0] = name
	}
	cmd.Dir = spec.Dir
	cmd.Env = env
	cmd.Stdout = writerOrDiscard(spec.Stdout)
	cmd.Stderr = writerOrDiscard(spec.Stderr)

	r.logger.Info("exec: " + strings.Join(spec.Argv, " "))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		failed := zerr.With(zerr.Wrap(err, "command failed"), "command", name)
		return zerr.With(failed, "exit_code", exitCode)
	}
	return nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// mergeEnvironment layers extra KEY=VALUE pairs over base. PATH from extra is
// prepended to the base PATH instead of replacing it.
func mergeEnvironment(base, extra []string) []string {
	envMap := make(map[string]string, len(base)+len(extra))
	var order []string

	put := func(k, v string) {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			put(k, v)
		}
	}
	for _, entry := range extra {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" && envMap["PATH"] != "" {
			put(k, v+string(os.PathListSeparator)+envMap["PATH"])
			continue
		}
		put(k, v)
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches the merged environment's PATH rather than the parent
// process's, so spec-provided toolchain paths take effect.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func isExecutable(file string) bool {
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return !mode.IsDir() && mode&0o111 != 0
}
