// Package app implements the application layer for mill.
package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/mill/internal/adapters/artifacts"
	"go.trai.ch/mill/internal/adapters/fs"
	"go.trai.ch/mill/internal/adapters/stamp"
	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/mill/internal/engine/invalidator"
	"go.trai.ch/mill/internal/engine/walker"
	"go.trai.ch/zerr"
)

// App wires one build invocation together: it loads the manifest, constructs
// the environment and the per-invocation collaborators, and drives the walker.
type App struct {
	configLoader ports.ConfigLoader
	hasher       ports.FileHasher
	runner       ports.ProcessRunner
	telemetry    ports.Telemetry
	logger       ports.Logger
	invalidator  *invalidator.Invalidator
	watcher      ports.Watcher
}

// New creates an App.
func New(
	configLoader ports.ConfigLoader,
	hasher ports.FileHasher,
	runner ports.ProcessRunner,
	telemetry ports.Telemetry,
	logger ports.Logger,
	inv *invalidator.Invalidator,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: configLoader,
		hasher:       hasher,
		runner:       runner,
		telemetry:    telemetry,
		logger:       logger,
		invalidator:  inv,
		watcher:      watcher,
	}
}

// BuildOptions carry the CLI flags for one invocation.
type BuildOptions struct {
	// ConfigPath is the mill.yaml location. Empty means <project>/mill.yaml.
	ConfigPath string
	// ProjectDir is the project root. Empty means the working directory.
	ProjectDir string
	// BuildDir is the build output root. Empty means <project>/build.
	BuildDir string
	// OutputDir is the final output dir. Empty means BuildDir.
	OutputDir string
	// Target is the root target name. Empty falls back to the manifest's
	// defaultTarget.
	Target string
	// Mode, Platform and TargetFile become the typed defines.
	Mode       string
	Platform   string
	TargetFile string
	// Defines are extra KEY=VALUE pairs layered over the manifest's.
	Defines []string
}

// session is everything Build constructs per invocation from options plus the
// loaded manifest: spec-dependent collaborators never live in global state.
type session struct {
	env    *domain.Environment
	graph  *domain.Graph
	root   string
	walker *walker.Walker
}

// Build runs one incremental build and returns its result summary.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*walker.BuildResult, error) {
	s, err := a.newSession(opts)
	if err != nil {
		return nil, err
	}
	return a.runBuild(ctx, s)
}

func (a *App) runBuild(ctx context.Context, s *session) (*walker.BuildResult, error) {
	result, err := s.walker.Build(ctx, s.graph, s.root, s.env)
	if err != nil {
		return result, err
	}
	a.logger.Info("build succeeded: " +
		strconv.Itoa(len(result.Executed)) + " executed, " +
		strconv.Itoa(len(result.Skipped)) + " up to date")
	return result, nil
}

func (a *App) newSession(opts BuildOptions) (*session, error) {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to determine working directory")
		}
		projectDir = wd
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(projectDir, "mill.yaml")
	}

	manifest, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	defines, err := mergeDefines(manifest.Defines, opts)
	if err != nil {
		return nil, err
	}

	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join(projectDir, "build")
	}

	env, err := domain.NewEnvironment(projectDir, buildDir, opts.OutputDir, defines)
	if err != nil {
		return nil, err
	}

	// Actions write into {BUILD_DIR}; make sure it exists before the first one.
	if err := os.MkdirAll(env.BuildDir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create build directory")
	}

	root := opts.Target
	if root == "" {
		root = manifest.DefaultTarget
	}
	if root == "" {
		return nil, domain.ErrNoTargetSpecified
	}

	resolver := fs.NewResolver(artifacts.NewTable(manifest.Artifacts))
	store := stamp.NewStore(env.BuildDir, a.logger)
	w := walker.New(resolver, a.hasher, store, a.runner, a.telemetry, a.logger)

	return &session{env: env, graph: manifest.Graph, root: root, walker: w}, nil
}

// reservedDefineKeys maps keys that must not arrive through -d to the flag
// that sets them.
var reservedDefineKeys = map[string]string{
	domain.KeyProjectDir:     "--project",
	domain.KeyBuildDir:       "--build-dir",
	domain.KeyOutputDir:      "--output-dir",
	domain.KeyBuildMode:      "--mode",
	domain.KeyTargetPlatform: "--platform",
	domain.KeyTargetFile:     "--target-file",
}

// mergeDefines layers CLI defines over the manifest's and applies the typed
// flags, defaulting mode to debug and platform to host.
func mergeDefines(base map[string]string, opts BuildOptions) (domain.Defines, error) {
	extra := make(map[string]string, len(base)+len(opts.Defines))
	for k, v := range base {
		extra[k] = v
	}
	for _, pair := range opts.Defines {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return domain.Defines{}, zerr.With(zerr.Wrap(domain.ErrMissingDefine, "defines must be KEY=VALUE"), "define", pair)
		}
		// Typed and path keys have dedicated flags; an extra define with the
		// same name would be silently shadowed by them at lookup time.
		if flag, reserved := reservedDefineKeys[k]; reserved {
			err := zerr.Wrap(domain.ErrMissingDefine, "reserved define key, use "+flag)
			return domain.Defines{}, zerr.With(err, "define", k)
		}
		extra[k] = v
	}

	mode := domain.BuildMode(opts.Mode)
	if mode == "" {
		mode = domain.ModeDebug
	}
	platform := domain.TargetPlatform(opts.Platform)
	if platform == "" {
		platform = domain.PlatformHost
	}

	return domain.Defines{
		Mode:       mode,
		Platform:   platform,
		TargetFile: opts.TargetFile,
		Extra:      extra,
	}, nil
}
