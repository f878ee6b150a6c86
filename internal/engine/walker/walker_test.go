package walker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mill/internal/adapters/fs"
	"go.trai.ch/mill/internal/adapters/shell"
	"go.trai.ch/mill/internal/adapters/stamp"
	"go.trai.ch/mill/internal/adapters/telemetry"
	"go.trai.ch/mill/internal/core/domain"
	"go.trai.ch/mill/internal/core/ports/mocks"
	"go.trai.ch/mill/internal/engine/walker"
	"go.uber.org/mock/gomock"
)

// fixture wires a walker against real filesystem adapters in temp dirs, with
// in-process actions that copy inputs to outputs and count their runs.
type fixture struct {
	t      *testing.T
	env    *domain.Environment
	graph  *domain.Graph
	walker *walker.Walker
	runs   map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDefines(t, domain.Defines{
		Mode:     domain.ModeDebug,
		Platform: domain.PlatformHost,
	})
}

func newFixtureWithDefines(t *testing.T, defines domain.Defines) *fixture {
	t.Helper()
	env, err := domain.NewEnvironment(t.TempDir(), t.TempDir(), "", defines)
	require.NoError(t, err)

	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := walker.New(
		fs.NewResolver(nil),
		fs.NewHasher(),
		stamp.NewStore(env.BuildDir, logger),
		shell.NewRunner(logger),
		telemetry.NewNoop(),
		logger,
	)

	return &fixture{
		t:      t,
		env:    env,
		graph:  domain.NewGraph(),
		walker: w,
		runs:   make(map[string]int),
	}
}

func (f *fixture) writeInput(rel, content string) string {
	f.t.Helper()
	path := filepath.Join(f.env.ProjectDir, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// addCopyTarget declares a target whose action concatenates its resolved
// inputs into one output file under the build dir.
func (f *fixture) addCopyTarget(name string, inputs []domain.Source, output string, deps ...string) {
	f.t.Helper()
	resolver := fs.NewResolver(nil)
	outPath := filepath.Join(f.env.BuildDir, output)

	action := domain.FuncAction(func(_ context.Context, _ domain.ChangeSet, env *domain.Environment) error {
		f.runs[name]++
		var combined []byte
		paths, err := resolver.ResolveAll(inputs, env)
		if err != nil {
			return err
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			combined = append(combined, data...)
		}
		return os.WriteFile(outPath, combined, 0o600)
	})

	depNames := make([]domain.InternedString, len(deps))
	for i, d := range deps {
		depNames[i] = domain.NewInternedString(d)
	}
	require.NoError(f.t, f.graph.AddTarget(&domain.Target{
		Name:         domain.NewInternedString(name),
		Inputs:       inputs,
		Outputs:      []domain.Source{domain.PatternSource("{BUILD_DIR}/" + output)},
		Dependencies: depNames,
		Action:       action,
	}))
}

func (f *fixture) build(root string) (*walker.BuildResult, error) {
	return f.walker.Build(context.Background(), f.graph, root, f.env)
}

func TestWalker_Build_ColdStart(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")
	f.addCopyTarget("bundle", []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")}, "bundle.out", "compile")

	result, err := f.build("bundle")
	require.NoError(t, err)

	assert.Equal(t, []string{"compile", "bundle"}, result.Executed)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 1, f.runs["compile"])
	assert.Equal(t, 1, f.runs["bundle"])

	data, err := os.ReadFile(filepath.Join(f.env.BuildDir, "bundle.out"))
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", string(data))
}

func TestWalker_Build_SecondRunIsNoop(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")
	f.addCopyTarget("bundle", []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")}, "bundle.out", "compile")

	_, err := f.build("bundle")
	require.NoError(t, err)

	result, err := f.build("bundle")
	require.NoError(t, err)
	assert.Empty(t, result.Executed)
	assert.Equal(t, []string{"compile", "bundle"}, result.Skipped)
	assert.Equal(t, 1, f.runs["compile"])
	assert.Equal(t, 1, f.runs["bundle"])
}

func TestWalker_Build_InputChangePropagates(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")
	f.addCopyTarget("bundle", []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")}, "bundle.out", "compile")

	_, err := f.build("bundle")
	require.NoError(t, err)

	// A single changed byte in the leaf input re-executes the whole chain: the
	// leaf rewrites its output, which is the dependent's input.
	f.writeInput("lib/main.dart", "void main() { }")
	result, err := f.build("bundle")
	require.NoError(t, err)
	assert.Equal(t, []string{"compile", "bundle"}, result.Executed)
	assert.Equal(t, 2, f.runs["compile"])
	assert.Equal(t, 2, f.runs["bundle"])
}

func TestWalker_Build_OnlyDependentReruns(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.writeInput("assets/logo.png", "png")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")
	f.addCopyTarget("bundle", []domain.Source{
		domain.PatternSource("{BUILD_DIR}/app.dill"),
		domain.PatternSource("assets/logo.png"),
	}, "bundle.out", "compile")

	_, err := f.build("bundle")
	require.NoError(t, err)

	// Touching an asset only bundle consumes must not re-run compile.
	f.writeInput("assets/logo.png", "png2")
	result, err := f.build("bundle")
	require.NoError(t, err)
	assert.Equal(t, []string{"bundle"}, result.Executed)
	assert.Equal(t, []string{"compile"}, result.Skipped)
	assert.Equal(t, 1, f.runs["compile"])
	assert.Equal(t, 2, f.runs["bundle"])
}

func TestWalker_Build_DeletedOutputReruns(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")

	_, err := f.build("compile")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.env.BuildDir, "app.dill")))
	result, err := f.build("compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"compile"}, result.Executed)
}

func TestWalker_Build_TamperedOutputReruns(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")

	_, err := f.build("compile")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(f.env.BuildDir, "app.dill"), []byte("tampered"), 0o600))
	result, err := f.build("compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"compile"}, result.Executed)
}

func TestWalker_Build_NewFileInGlobReruns(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/*.dart")}, "app.dill")

	_, err := f.build("compile")
	require.NoError(t, err)

	// A new file widens the resolved path set, which invalidates the stamp
	// even though no recorded fingerprint changed.
	f.writeInput("lib/util.dart", "u")
	result, err := f.build("compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"compile"}, result.Executed)
}

func TestWalker_Build_ChangeSet(t *testing.T) {
	f := newFixture(t)
	mainPath := f.writeInput("lib/main.dart", "m")
	f.writeInput("lib/util.dart", "u")

	var got []domain.ChangeSet
	outPath := filepath.Join(f.env.BuildDir, "app.dill")
	require.NoError(t, f.graph.AddTarget(&domain.Target{
		Name:   domain.NewInternedString("compile"),
		Inputs: []domain.Source{domain.PatternSource("lib/*.dart")},
		Outputs: []domain.Source{
			domain.PatternSource("{BUILD_DIR}/app.dill"),
		},
		Action: domain.FuncAction(func(_ context.Context, change domain.ChangeSet, _ *domain.Environment) error {
			got = append(got, change)
			return os.WriteFile(outPath, []byte("out"), 0o600)
		}),
	}))

	_, err := f.build("compile")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].All)

	f.writeInput("lib/main.dart", "m2")
	_, err = f.build("compile")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[1].All)
	assert.Equal(t, []string{mainPath}, got[1].Paths)
}

func TestWalker_Build_DefinesChangeReruns(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")

	_, err := f.build("compile")
	require.NoError(t, err)

	releaseDefines := f.env.Defines
	releaseDefines.Mode = domain.ModeRelease
	releaseEnv, err := domain.NewEnvironment(f.env.ProjectDir, f.env.BuildDir, "", releaseDefines)
	require.NoError(t, err)

	result, err := f.walker.Build(context.Background(), f.graph, "compile", releaseEnv)
	require.NoError(t, err)
	assert.Equal(t, []string{"compile"}, result.Executed)
}

func TestWalker_Build_ActionFailureHaltsWalk(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")

	require.NoError(t, f.graph.AddTarget(&domain.Target{
		Name:    Name("compile"),
		Inputs:  []domain.Source{domain.PatternSource("lib/main.dart")},
		Outputs: []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")},
		Action: domain.FuncAction(func(context.Context, domain.ChangeSet, *domain.Environment) error {
			f.runs["compile"]++
			return assert.AnError
		}),
	}))
	f.addCopyTarget("bundle", []domain.Source{domain.PatternSource("lib/main.dart")}, "bundle.out", "compile")

	_, err := f.build("bundle")
	require.ErrorIs(t, err, domain.ErrActionFailed)
	assert.Zero(t, f.runs["bundle"])

	// The failed target was never stamped, so the next run retries it.
	_, err = f.build("bundle")
	require.ErrorIs(t, err, domain.ErrActionFailed)
	assert.Equal(t, 2, f.runs["compile"])
}

func TestWalker_Build_MissingDeclaredOutput(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")

	require.NoError(t, f.graph.AddTarget(&domain.Target{
		Name:    Name("compile"),
		Inputs:  []domain.Source{domain.PatternSource("lib/main.dart")},
		Outputs: []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")},
		Action: domain.FuncAction(func(context.Context, domain.ChangeSet, *domain.Environment) error {
			return nil
		}),
	}))

	_, err := f.build("compile")
	require.ErrorIs(t, err, domain.ErrMissingOutput)
}

func TestWalker_Build_CycleFailsBeforeActions(t *testing.T) {
	f := newFixture(t)
	f.addCopyTarget("a", nil, "a.out", "b")
	f.addCopyTarget("b", nil, "b.out", "a")

	_, err := f.build("a")
	require.ErrorIs(t, err, domain.ErrCyclicDependency)
	assert.Zero(t, f.runs["a"])
	assert.Zero(t, f.runs["b"])
}

func TestWalker_Build_UnknownRoot(t *testing.T) {
	f := newFixture(t)
	_, err := f.build("ghost")
	require.ErrorIs(t, err, domain.ErrUnknownTarget)
}

func TestWalker_Build_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")
	f.addCopyTarget("compile", []domain.Source{domain.PatternSource("lib/main.dart")}, "app.dill")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.walker.Build(ctx, f.graph, "compile", f.env)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.runs["compile"])
}

func TestWalker_Build_ExecAction(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "void main() {}")

	require.NoError(t, f.graph.AddTarget(&domain.Target{
		Name:    Name("kernel_snapshot"),
		Inputs:  []domain.Source{domain.PatternSource("{PROJECT_DIR}/lib/main.dart")},
		Outputs: []domain.Source{domain.PatternSource("{BUILD_DIR}/main.app.dill")},
		Action:  domain.ExecAction("cp", "{PROJECT_DIR}/lib/main.dart", "{BUILD_DIR}/main.app.dill"),
	}))

	// First build executes, second is a no-op, and a single-byte edit
	// re-executes.
	result, err := f.build("kernel_snapshot")
	require.NoError(t, err)
	assert.Equal(t, []string{"kernel_snapshot"}, result.Executed)

	result, err = f.build("kernel_snapshot")
	require.NoError(t, err)
	assert.Empty(t, result.Executed)
	assert.Equal(t, []string{"kernel_snapshot"}, result.Skipped)

	f.writeInput("lib/main.dart", "void main() { }")
	result, err = f.build("kernel_snapshot")
	require.NoError(t, err)
	assert.Equal(t, []string{"kernel_snapshot"}, result.Executed)

	data, err := os.ReadFile(filepath.Join(f.env.BuildDir, "main.app.dill"))
	require.NoError(t, err)
	assert.Equal(t, "void main() { }", string(data))
}

func TestWalker_Build_ExecActionFailure(t *testing.T) {
	f := newFixture(t)
	f.writeInput("lib/main.dart", "m")

	require.NoError(t, f.graph.AddTarget(&domain.Target{
		Name:    Name("compile"),
		Inputs:  []domain.Source{domain.PatternSource("lib/main.dart")},
		Outputs: []domain.Source{domain.PatternSource("{BUILD_DIR}/app.dill")},
		Action:  domain.ExecAction("sh", "-c", "exit 1"),
	}))

	_, err := f.build("compile")
	require.ErrorIs(t, err, domain.ErrActionFailed)
}

func TestWalker_Build_DiamondBuildsSharedDependencyOnce(t *testing.T) {
	f := newFixture(t)
	f.writeInput("base.txt", "base")
	f.addCopyTarget("base", []domain.Source{domain.PatternSource("base.txt")}, "base.out")
	f.addCopyTarget("left", []domain.Source{domain.PatternSource("{BUILD_DIR}/base.out")}, "left.out", "base")
	f.addCopyTarget("right", []domain.Source{domain.PatternSource("{BUILD_DIR}/base.out")}, "right.out", "base")
	f.addCopyTarget("top", []domain.Source{
		domain.PatternSource("{BUILD_DIR}/left.out"),
		domain.PatternSource("{BUILD_DIR}/right.out"),
	}, "top.out", "left", "right")

	result, err := f.build("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left", "right", "top"}, result.Executed)
	assert.Equal(t, 1, f.runs["base"])
}

// Name interns a target name; shorthand for table-heavy tests.
func Name(s string) domain.InternedString {
	return domain.NewInternedString(s)
}
