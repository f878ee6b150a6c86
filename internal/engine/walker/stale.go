package walker

import (
	"os"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/zerr"
)

// decision is the staleness verdict for one target.
type decision struct {
	stale bool
	// reason is a short diagnostic tag recorded in the log.
	reason string
	change domain.ChangeSet
}

// decide computes whether the target must re-run. Stale when: no prior stamp,
// the resolved path set differs from the record, any define differs, any
// input or output fingerprint differs, or a declared output is missing from
// disk. Fresh targets cost exactly the fingerprint comparison below.
func (w *Walker) decide(prior *domain.Stamp, inputs, outputs []string, env *domain.Environment) (decision, error) {
	if prior == nil {
		return decision{stale: true, reason: "no stamp", change: domain.ChangeSet{All: true}}, nil
	}

	currentInputs, err := w.fingerprintAll(inputs)
	if err != nil {
		return decision{}, err
	}

	changed := changedPaths(prior.Inputs, currentInputs, inputs)

	if !prior.SamePathSet(inputs, outputs) {
		return decision{stale: true, reason: "path set changed", change: domain.ChangeSet{Paths: changed}}, nil
	}
	if !prior.SameDefines(env.Defines.Flatten()) {
		return decision{stale: true, reason: "defines changed", change: domain.ChangeSet{Paths: changed}}, nil
	}
	if len(changed) > 0 {
		return decision{stale: true, reason: "inputs changed", change: domain.ChangeSet{Paths: changed}}, nil
	}

	for _, path := range outputs {
		recorded := prior.Outputs[path]
		info, err := os.Stat(path)
		if err != nil {
			return decision{stale: true, reason: "output missing", change: domain.ChangeSet{Paths: changed}}, nil //nolint:nilerr // Missing output means stale, not failure
		}
		// Size is a cheap first-pass check; only on a size match is the
		// content re-hashed.
		if info.Size() != recorded.Size {
			return decision{stale: true, reason: "output changed", change: domain.ChangeSet{Paths: changed}}, nil
		}
		fp, err := w.hasher.Fingerprint(path)
		if err != nil {
			return decision{}, zerr.Wrap(err, "failed to fingerprint output")
		}
		if !fp.Equal(recorded) {
			return decision{stale: true, reason: "output changed", change: domain.ChangeSet{Paths: changed}}, nil
		}
	}

	return decision{stale: false}, nil
}

// fingerprintAll hashes every input path. A missing input is a configuration
// or resolution error, fatal before the action runs.
func (w *Walker) fingerprintAll(paths []string) (map[string]domain.Fingerprint, error) {
	fps := make(map[string]domain.Fingerprint, len(paths))
	for _, path := range paths {
		fp, err := w.hasher.Fingerprint(path)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to fingerprint input")
		}
		fps[path] = fp
	}
	return fps, nil
}

// changedPaths lists inputs whose fingerprint differs from the record or that
// the record has never seen, preserving resolution order.
func changedPaths(recorded map[string]domain.Fingerprint, current map[string]domain.Fingerprint, order []string) []string {
	var changed []string
	for _, path := range order {
		prior, ok := recorded[path]
		if !ok || !current[path].Equal(prior) {
			changed = append(changed, path)
		}
	}
	return changed
}
