// Package artifacts implements the toolchain artifact resolver.
package artifacts

import (
	"os/exec"
	"path/filepath"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactResolver = (*Table)(nil)

// Table resolves artifact ids from an explicit entry table built at
// construction. There is no process-global registry: each environment carries
// the table it was configured with, so tests can fabricate their own.
//
// Entries are keyed by most-specific-first lookup:
//
//	"<id>/<platform>/<mode>", then "<id>/<platform>", then "<id>".
//
// A value that is a bare executable name falls back to PATH lookup.
type Table struct {
	entries map[string]string
}

// NewTable creates a Table from the given entries.
func NewTable(entries map[string]string) *Table {
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Table{entries: entries}
}

// ResolveArtifact returns the absolute path for the artifact id under the
// given platform and mode.
func (t *Table) ResolveArtifact(id string, platform domain.TargetPlatform, mode domain.BuildMode) (string, error) {
	keys := []string{
		id + "/" + string(platform) + "/" + string(mode),
		id + "/" + string(platform),
		id,
	}

	for _, key := range keys {
		path, ok := t.entries[key]
		if !ok {
			continue
		}
		return t.absolutize(id, path)
	}

	err := zerr.With(domain.ErrUnknownArtifact, "artifact", id)
	err = zerr.With(err, "platform", string(platform))
	return "", zerr.With(err, "mode", string(mode))
}

func (t *Table) absolutize(id, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	// Bare names resolve through PATH so config files can reference host
	// toolchain binaries without hardcoding install locations.
	if filepath.Base(path) == path {
		located, err := exec.LookPath(path)
		if err != nil {
			lookupErr := zerr.With(zerr.Wrap(domain.ErrUnknownArtifact, "executable not on PATH"), "artifact", id)
			return "", zerr.With(lookupErr, "executable", path)
		}
		return located, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to absolutize artifact path"), "artifact", id)
	}
	return abs, nil
}
