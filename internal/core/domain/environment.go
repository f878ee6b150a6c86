// Package domain contains the core domain model for the incremental build graph.
package domain

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// BuildMode selects the optimization/assertion profile a build runs under.
type BuildMode string

const (
	// ModeDebug builds with assertions and without optimization.
	ModeDebug BuildMode = "debug"
	// ModeProfile builds optimized but with profiling instrumentation.
	ModeProfile BuildMode = "profile"
	// ModeRelease builds fully optimized.
	ModeRelease BuildMode = "release"
)

// TargetPlatform identifies the platform the build output is intended for.
type TargetPlatform string

const (
	PlatformHost    TargetPlatform = "host"
	PlatformLinux   TargetPlatform = "linux-x64"
	PlatformDarwin  TargetPlatform = "darwin-arm64"
	PlatformWindows TargetPlatform = "windows-x64"
)

// Defines is the fixed, typed set of build parameters plus an escape hatch for
// passthrough flags. It is validated once at environment construction, never
// at use sites.
type Defines struct {
	Mode       BuildMode
	Platform   TargetPlatform
	TargetFile string
	// Extra carries passthrough KEY=VALUE defines that do not map to a typed
	// field. Keys participate in pattern substitution and stamp comparison.
	Extra map[string]string
}

// Flatten returns every define as a sorted, deterministic key/value map,
// including the typed fields. Stamps record this map verbatim.
func (d Defines) Flatten() map[string]string {
	out := make(map[string]string, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	out[KeyBuildMode] = string(d.Mode)
	out[KeyTargetPlatform] = string(d.Platform)
	out[KeyTargetFile] = d.TargetFile
	return out
}

// Well-known substitution keys available to pattern sources.
const (
	KeyProjectDir     = "PROJECT_DIR"
	KeyBuildDir       = "BUILD_DIR"
	KeyOutputDir      = "OUTPUT_DIR"
	KeyBuildMode      = "BUILD_MODE"
	KeyTargetPlatform = "TARGET_PLATFORM"
	KeyTargetFile     = "TARGET_FILE"
)

// Environment is the immutable context one build invocation runs under. It is
// constructed once per CLI invocation and passed by reference to every
// resolution and action; there is no process-global fallback.
type Environment struct {
	// ProjectDir is the absolute root of the project being built.
	ProjectDir string
	// BuildDir is the absolute root for intermediate build outputs. The stamp
	// store lives underneath it.
	BuildDir string
	// OutputDir is the absolute directory final outputs are assembled into.
	OutputDir string
	// Defines are the validated build parameters.
	Defines Defines
}

// NewEnvironment validates and constructs an Environment. Paths are made
// absolute; an unset or unrecognized mode or platform is rejected with
// ErrMissingDefine before any action can run.
func NewEnvironment(projectDir, buildDir, outputDir string, defines Defines) (*Environment, error) {
	switch defines.Mode {
	case ModeDebug, ModeProfile, ModeRelease:
	case "":
		return nil, zerr.With(ErrMissingDefine, "define", KeyBuildMode)
	default:
		return nil, zerr.With(zerr.Wrap(ErrMissingDefine, "unrecognized build mode"), "value", string(defines.Mode))
	}

	switch defines.Platform {
	case PlatformHost, PlatformLinux, PlatformDarwin, PlatformWindows:
	case "":
		return nil, zerr.With(ErrMissingDefine, "define", KeyTargetPlatform)
	default:
		return nil, zerr.With(zerr.Wrap(ErrMissingDefine, "unrecognized target platform"), "value", string(defines.Platform))
	}

	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to absolutize project dir")
	}
	absBuild, err := filepath.Abs(buildDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to absolutize build dir")
	}
	absOutput := absBuild
	if outputDir != "" {
		absOutput, err = filepath.Abs(outputDir)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to absolutize output dir")
		}
	}

	return &Environment{
		ProjectDir: absProject,
		BuildDir:   absBuild,
		OutputDir:  absOutput,
		Defines:    defines,
	}, nil
}

// Lookup resolves a substitution key to its value. Well-known path keys come
// first, then typed defines, then passthrough extras.
func (e *Environment) Lookup(key string) (string, bool) {
	switch key {
	case KeyProjectDir:
		return e.ProjectDir, true
	case KeyBuildDir:
		return e.BuildDir, true
	case KeyOutputDir:
		return e.OutputDir, true
	case KeyBuildMode:
		return string(e.Defines.Mode), true
	case KeyTargetPlatform:
		return string(e.Defines.Platform), true
	case KeyTargetFile:
		if e.Defines.TargetFile == "" {
			return "", false
		}
		return e.Defines.TargetFile, true
	}
	v, ok := e.Defines.Extra[key]
	return v, ok
}

// tokenRe matches {KEY} substitution tokens in patterns and commands. Any
// braced identifier is a token; whether it resolves is Lookup's call, so a
// misspelled or unknown key fails instead of surviving as a literal path
// component.
var tokenRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces every {KEY} token in s with the environment's value for
// KEY. An unknown token fails with ErrUnresolvedPatternKey naming the token.
func (e *Environment) Expand(s string) (string, error) {
	var missing string
	out := tokenRe.ReplaceAllStringFunc(s, func(token string) string {
		key := token[1 : len(token)-1]
		if v, ok := e.Lookup(key); ok {
			return v
		}
		if missing == "" {
			missing = key
		}
		return token
	})
	if missing != "" {
		err := zerr.With(ErrUnresolvedPatternKey, "key", missing)
		err = zerr.With(err, "pattern", s)
		return "", zerr.With(err, "known_keys", strings.Join(e.SubstitutionKeys(), ","))
	}
	return out, nil
}

// SubstitutionKeys returns every key Lookup would answer, sorted. Used for
// diagnostics when a pattern token fails to resolve.
func (e *Environment) SubstitutionKeys() []string {
	keys := []string{KeyProjectDir, KeyBuildDir, KeyOutputDir, KeyBuildMode, KeyTargetPlatform}
	if e.Defines.TargetFile != "" {
		keys = append(keys, KeyTargetFile)
	}
	for k := range e.Defines.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
