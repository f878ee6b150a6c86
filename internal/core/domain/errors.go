package domain

import "go.trai.ch/zerr"

var (
	// ErrMissingDefine is returned when the environment is constructed without a
	// define that a target or source requires.
	ErrMissingDefine = zerr.New("missing define")

	// ErrUnresolvedPatternKey is returned when a pattern source contains a {KEY}
	// token with no matching define or well-known path.
	ErrUnresolvedPatternKey = zerr.New("unresolved pattern key")

	// ErrUnknownArtifact is returned when an artifact source names an artifact
	// the resolver has no entry for.
	ErrUnknownArtifact = zerr.New("unknown artifact")

	// ErrDuplicateTarget is returned when a target with the same name is added twice.
	ErrDuplicateTarget = zerr.New("target already exists")

	// ErrMissingDependency is returned when a target depends on a name that is
	// not present in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCyclicDependency is returned when the target graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrUnknownTarget is returned when a build is requested for a target name
	// that is not in the graph.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrActionFailed is returned when a target's action reports failure. The
	// walk halts immediately and the target is left un-stamped so the next run
	// retries it.
	ErrActionFailed = zerr.New("action failed")

	// ErrMissingOutput is returned when an action reported success but a
	// declared output file does not exist afterwards.
	ErrMissingOutput = zerr.New("declared output missing after action")

	// ErrCorruptStamp indicates an unreadable persisted stamp record. It is
	// never fatal: the store degrades to treating the record as absent.
	ErrCorruptStamp = zerr.New("corrupt stamp record")

	// ErrNoTargetSpecified is returned when a build is invoked without a root target.
	ErrNoTargetSpecified = zerr.New("no target specified")
)
