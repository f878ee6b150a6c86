package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mill/cmd/mill/commands"
	"go.trai.ch/mill/internal/adapters/config"
	"go.trai.ch/mill/internal/adapters/fs"
	"go.trai.ch/mill/internal/adapters/shell"
	"go.trai.ch/mill/internal/adapters/telemetry"
	"go.trai.ch/mill/internal/app"
	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports/mocks"
	"go.trai.ch/mill/internal/engine/invalidator"
	"go.uber.org/mock/gomock"
)

func newCLI(t *testing.T) *commands.CLI {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	a := app.New(
		config.NewLoader(fs.NewFunctionSources(fs.NewWalker())),
		fs.NewHasher(),
		shell.NewRunner(logger),
		telemetry.NewNoop(),
		logger,
		invalidator.New(1),
		mocks.NewMockWatcher(ctrl),
	)
	return commands.New(a)
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "main.dart"), []byte("void main() {}"), 0o600))
	millfile := `
defaultTarget: kernel_snapshot
targets:
  kernel_snapshot:
    inputs:
      - "{PROJECT_DIR}/lib/main.dart"
    outputs:
      - "{BUILD_DIR}/main.app.dill"
    command: ["cp", "{PROJECT_DIR}/lib/main.dart", "{BUILD_DIR}/main.app.dill"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFilename), []byte(millfile), 0o600))
	return dir
}

func TestCommands_Build(t *testing.T) {
	project := newProject(t)

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "--project", project})
	require.NoError(t, cli.Execute(context.Background()))

	assert.FileExists(t, filepath.Join(project, "build", "main.app.dill"))
}

func TestCommands_Build_ExplicitTargetAndBuildDir(t *testing.T) {
	project := newProject(t)
	buildDir := t.TempDir()

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "kernel_snapshot", "--project", project, "--build-dir", buildDir})
	require.NoError(t, cli.Execute(context.Background()))

	assert.FileExists(t, filepath.Join(buildDir, "main.app.dill"))
}

func TestCommands_Build_UnknownTarget(t *testing.T) {
	project := newProject(t)

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "ghost", "--project", project})
	err := cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownTarget)
}

func TestCommands_Build_TooManyArgs(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"build", "a", "b"})
	require.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Build_InvalidMode(t *testing.T) {
	project := newProject(t)

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "--project", project, "--mode", "turbo"})
	err := cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingDefine)
}

func TestCommands_Clean(t *testing.T) {
	project := newProject(t)

	cli := newCLI(t)
	cli.SetArgs([]string{"build", "--project", project})
	require.NoError(t, cli.Execute(context.Background()))
	require.DirExists(t, filepath.Join(project, "build"))

	cli = newCLI(t)
	cli.SetArgs([]string{"clean", "--project", project})
	require.NoError(t, cli.Execute(context.Background()))
	assert.NoDirExists(t, filepath.Join(project, "build"))
}

func TestCommands_Version(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestCommands_UnknownCommand(t *testing.T) {
	cli := newCLI(t)
	cli.SetArgs([]string{"frobnicate"})
	require.Error(t, cli.Execute(context.Background()))
}
