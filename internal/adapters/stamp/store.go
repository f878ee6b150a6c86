// Package stamp implements the on-disk stamp store: one JSON record per
// target under the build directory.
package stamp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StampStore = (*Store)(nil)

// DirName is the stamp directory under the build output root. Outside
// consumers (CI caching) may inspect it but must not mutate it during a build.
const DirName = ".stamps"

// Store persists stamps as <build_dir>/.stamps/<target>.stamp.json. Writes go
// through a temp file and rename so a crashed run cannot leave a truncated
// record; unreadable records degrade to a rebuild of that target only.
type Store struct {
	dir    string
	logger ports.Logger
}

// NewStore creates a stamp store rooted under buildDir.
func NewStore(buildDir string, logger ports.Logger) *Store {
	return &Store{
		dir:    filepath.Join(filepath.Clean(buildDir), DirName),
		logger: logger,
	}
}

// Load returns the stamp for the named target, or nil if absent or corrupt.
func (s *Store) Load(target string) (*domain.Stamp, error) {
	path := s.recordPath(target)

	data, err := os.ReadFile(path) //nolint:gosec // Path derives from the build dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read stamp"), "target", target)
	}

	var record domain.Stamp
	if err := json.Unmarshal(data, &record); err != nil || record.Target != target {
		// Partial write or foreign content. Treat as absent so the target is
		// rebuilt rather than failing the build.
		corrupt := zerr.With(domain.ErrCorruptStamp, "target", target)
		s.logger.Warn(zerr.With(corrupt, "path", path).Error())
		return nil, nil
	}

	return &record, nil
}

// Save persists the stamp atomically.
func (s *Store) Save(record *domain.Stamp) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create stamp directory")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to marshal stamp"), "target", record.Target)
	}

	path := s.recordPath(record.Target)
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create stamp temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to write stamp"), "target", record.Target)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to close stamp temp file"), "target", record.Target)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to replace stamp"), "target", record.Target)
	}
	return nil
}

// recordPath maps a target name to its record file, flattening any path
// separators a name might carry.
func (s *Store) recordPath(target string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(target)
	return filepath.Join(s.dir, name+".stamp.json")
}
