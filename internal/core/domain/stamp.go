package domain

import (
	"sort"
	"time"
)

// Fingerprint identifies one file's content at the time a target last ran
// successfully. Hash is the xxhash of the content; size and mtime ride along
// so callers can fall back to the weaker comparison for very large artifacts.
type Fingerprint struct {
	Hash  string    `json:"hash"`
	Size  int64     `json:"size"`
	MTime time.Time `json:"mtime"`
}

// Equal compares fingerprints by content hash. Size and mtime are carried for
// diagnostics only; hash comparison tolerates checkouts that reset timestamps.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Hash == other.Hash
}

// Stamp is the persisted record of a target's last successful run: the
// fingerprint of every resolved input and output, and the defines in force.
// A stamp is valid only for the exact path set and defines it records; any
// mismatch forces the target stale.
type Stamp struct {
	Target  string                 `json:"target"`
	Inputs  map[string]Fingerprint `json:"inputs"`
	Outputs map[string]Fingerprint `json:"outputs"`
	Defines map[string]string      `json:"defines"`
	// BuildTime is when the stamp was written; the watch loop uses it as the
	// invalidation baseline.
	BuildTime time.Time `json:"build_time"`
}

// NewStamp creates an empty stamp for the named target.
func NewStamp(target string) *Stamp {
	return &Stamp{
		Target:  target,
		Inputs:  make(map[string]Fingerprint),
		Outputs: make(map[string]Fingerprint),
		Defines: make(map[string]string),
	}
}

// InputPaths returns the recorded input paths, sorted.
func (s *Stamp) InputPaths() []string {
	return sortedKeys(s.Inputs)
}

// OutputPaths returns the recorded output paths, sorted.
func (s *Stamp) OutputPaths() []string {
	return sortedKeys(s.Outputs)
}

// SamePathSet reports whether the stamp records exactly the given resolved
// input and output paths.
func (s *Stamp) SamePathSet(inputs, outputs []string) bool {
	return samePaths(s.Inputs, inputs) && samePaths(s.Outputs, outputs)
}

// SameDefines reports whether the stamp's recorded defines match the given map.
func (s *Stamp) SameDefines(defines map[string]string) bool {
	if len(s.Defines) != len(defines) {
		return false
	}
	for k, v := range defines {
		if s.Defines[k] != v {
			return false
		}
	}
	return true
}

func samePaths(recorded map[string]Fingerprint, current []string) bool {
	if len(recorded) != len(current) {
		return false
	}
	for _, p := range current {
		if _, ok := recorded[p]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]Fingerprint) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
