package app

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Clean removes the build output directory, including the stamp store, so
// the next build starts cold.
func (a *App) Clean(opts BuildOptions) error {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return zerr.Wrap(err, "failed to determine working directory")
		}
		projectDir = wd
	}

	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join(projectDir, "build")
	}

	if err := os.RemoveAll(buildDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove build directory"), "path", buildDir)
	}
	a.logger.Info("removed " + buildDir)
	return nil
}
