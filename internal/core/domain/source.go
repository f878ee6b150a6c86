package domain

// SourceKind discriminates the source variants.
type SourceKind int

const (
	// SourcePattern is a path template with {KEY} substitution, optionally a glob.
	SourcePattern SourceKind = iota
	// SourceArtifact references a named toolchain artifact via the artifact resolver.
	SourceArtifact
	// SourceFunction computes the file list from the environment at resolve time.
	SourceFunction
)

// String returns the kind name for diagnostics.
func (k SourceKind) String() string {
	switch k {
	case SourcePattern:
		return "pattern"
	case SourceArtifact:
		return "artifact"
	case SourceFunction:
		return "function"
	default:
		return "unknown"
	}
}

// FileListFunc computes a list of concrete absolute paths from the
// environment. It may read the filesystem but must never mutate it, and must
// be deterministic for a given environment and filesystem state.
type FileListFunc func(env *Environment) ([]string, error)

// Source declares one or more files to be resolved against an Environment.
// Exactly one variant is populated, selected by Kind. Resolution is performed
// by the fs adapter; the domain type is pure data plus the function payload.
type Source struct {
	Kind SourceKind

	// Pattern is the path template for SourcePattern, e.g.
	// "{BUILD_DIR}/app.dill" or "{PROJECT_DIR}/lib/*.dart".
	Pattern string

	// ArtifactID names the toolchain artifact for SourceArtifact.
	ArtifactID string
	// ArtifactPlatform overrides the environment's target platform when set.
	ArtifactPlatform TargetPlatform
	// ArtifactMode overrides the environment's build mode when set.
	ArtifactMode BuildMode

	// FunctionName identifies the registered file-list function; it is what
	// config files reference and what diagnostics print.
	FunctionName string
	// Function is the computation for SourceFunction.
	Function FileListFunc
}

// PatternSource declares a path template source.
func PatternSource(pattern string) Source {
	return Source{Kind: SourcePattern, Pattern: pattern}
}

// ArtifactSource declares a toolchain artifact source. Platform and mode
// default to the environment's when left zero.
func ArtifactSource(id string, platform TargetPlatform, mode BuildMode) Source {
	return Source{
		Kind:             SourceArtifact,
		ArtifactID:       id,
		ArtifactPlatform: platform,
		ArtifactMode:     mode,
	}
}

// FunctionSource declares a computed file-list source.
func FunctionSource(name string, fn FileListFunc) Source {
	return Source{Kind: SourceFunction, FunctionName: name, Function: fn}
}

// Describe returns a short human-readable identifier for error metadata.
func (s Source) Describe() string {
	switch s.Kind {
	case SourcePattern:
		return "pattern:" + s.Pattern
	case SourceArtifact:
		return "artifact:" + s.ArtifactID
	case SourceFunction:
		return "function:" + s.FunctionName
	default:
		return "unknown"
	}
}
