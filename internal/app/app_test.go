package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/telemetry"
	"go.trai.ch/shade/internal/adapters/wgslgen"
	"go.trai.ch/shade/internal/app"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const configPath = "shade.yaml"

type fixture struct {
	cfg      domain.Config
	loader   *mocks.MockConfigLoader
	compiler *mocks.MockCompiler
	logger   *mocks.MockLogger
	tracers  *mocks.MockTracerFactory
	watcher  *mocks.MockSceneWatcher
	app      *app.App
}

func newFixture(t *testing.T, dir string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := domain.DefaultConfig()
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.DumpDir = filepath.Join(dir, "dumps")
	cfg.Workers = 2

	f := &fixture{
		cfg:      cfg,
		loader:   mocks.NewMockConfigLoader(ctrl),
		compiler: mocks.NewMockCompiler(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		tracers:  mocks.NewMockTracerFactory(ctrl),
		watcher:  mocks.NewMockSceneWatcher(ctrl),
	}
	f.app = app.New(f.loader, wgslgen.New(), f.compiler, f.logger, f.tracers, f.watcher)

	f.loader.EXPECT().Load(configPath).DoAndReturn(func(string) (domain.Config, error) {
		return f.cfg, nil
	}).AnyTimes()
	f.tracers.EXPECT().New(domain.TelemetryNone).Return(
		telemetry.NewNoOpTracer(), func(context.Context) error { return nil }, nil,
	).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return f
}

func (f *fixture) compileOK() {
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte("spirv"), nil).AnyTimes()
}

func (f *fixture) scene(path string, states ...domain.RenderState) {
	f.loader.EXPECT().LoadScene(path).Return(&domain.Scene{Name: filepath.Base(path), States: states}, nil).AnyTimes()
}

var (
	triangles = domain.RenderState{
		Topology:   domain.TopologyTriangles,
		Components: domain.ComponentPosition | domain.ComponentColor0,
	}
	lines = domain.RenderState{
		Topology:   domain.TopologyLines,
		Components: domain.ComponentPosition | domain.ComponentNormal,
		LineWidth:  32,
	}
	foggy = domain.RenderState{
		Topology:   domain.TopologyTriangles,
		Components: domain.ComponentPosition | domain.TexCoord(0),
		Fog:        domain.FogLinear,
		AlphaTest:  domain.AlphaTestGreaterEqual,
		AlphaRef:   128,
	}
)

func TestApp_Warm(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, dir)
	f.compileOK()
	f.scene("a.scene.yaml", triangles, lines)
	f.scene("b.scene.yaml", foggy)

	rep, err := f.app.Warm(context.Background(), app.WarmOptions{
		ConfigPath: configPath,
		Scenes:     []string{"a.scene.yaml", "b.scene.yaml"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Frames)
	assert.Zero(t, rep.Failed())
	assert.Positive(t, rep.Created())
	assert.Positive(t, rep.Stats.Stage(domain.StageVertex).Created)
	assert.Positive(t, rep.Stats.Stage(domain.StagePixel).Created)
}

func TestApp_Warm_ReplaysMirrorOnRestart(t *testing.T) {
	dir := t.TempDir()

	first := newFixture(t, dir)
	first.compileOK()
	first.scene("a.scene.yaml", triangles, lines)
	rep, err := first.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.NoError(t, err)
	created := rep.Created()
	require.Positive(t, created)

	second := newFixture(t, dir)
	second.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Times(0)
	second.scene("a.scene.yaml", triangles, lines)
	rep, err = second.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.NoError(t, err)

	assert.Zero(t, rep.Created())
	var replayed int64
	for _, st := range rep.Stats.Stages {
		replayed += st.Replayed
	}
	assert.Equal(t, created, replayed)
}

func TestApp_Warm_NoScenes(t *testing.T) {
	f := newFixture(t, t.TempDir())

	_, err := f.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath})
	assert.ErrorIs(t, err, domain.ErrNoScenes)
}

func TestApp_Warm_SceneError(t *testing.T) {
	f := newFixture(t, t.TempDir())
	f.loader.EXPECT().LoadScene("bad.scene.yaml").Return(nil, domain.ErrSceneParseFailed)

	_, err := f.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"bad.scene.yaml"}})
	assert.ErrorIs(t, err, domain.ErrSceneParseFailed)
}

func TestApp_Warm_CompileFailure(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, dir)
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil, errors.New("syntax error")).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()
	f.scene("a.scene.yaml", triangles)

	rep, err := f.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCompileFailed.Error())
	assert.Positive(t, rep.Failed())

	dumps, err := os.ReadDir(f.cfg.DumpDir)
	require.NoError(t, err)
	assert.Len(t, dumps, int(rep.Failed()))
}

func TestApp_Play(t *testing.T) {
	f := newFixture(t, t.TempDir())
	f.compileOK()
	f.scene("a.scene.yaml", triangles, lines, foggy, triangles)

	rep, err := f.app.Play(context.Background(), app.PlayOptions{
		ConfigPath: configPath,
		Scenes:     []string{"a.scene.yaml"},
		Lookahead:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Frames)
	assert.Equal(t, 4, rep.Drawn)
	assert.Zero(t, rep.Skipped)
	assert.Equal(t, 4, rep.PipelineChanges)
	assert.Zero(t, rep.Failed())
}

func TestApp_Play_RepeatedStateKeepsPipeline(t *testing.T) {
	f := newFixture(t, t.TempDir())
	f.compileOK()
	f.scene("a.scene.yaml", triangles, triangles, triangles)

	rep, err := f.app.Play(context.Background(), app.PlayOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Frames)
	assert.Equal(t, 1, rep.PipelineChanges)
}

func TestApp_Inspect(t *testing.T) {
	f := newFixture(t, t.TempDir())
	f.compileOK()
	f.scene("a.scene.yaml", triangles, lines)

	rep, err := f.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.NoError(t, err)

	reports, err := f.app.Inspect(context.Background(), configPath)
	require.NoError(t, err)
	require.Len(t, reports, domain.StageCount)

	for _, r := range reports {
		assert.True(t, r.Exists, r.Stage.String())
		assert.True(t, r.Compatible, r.Stage.String())
		assert.Equal(t, f.cfg.Profiles[r.Stage].Target, r.Target)
		assert.Equal(t, domain.MirrorPath(f.cfg.CacheDir, f.cfg.ContentID, r.Stage), r.Path)
		assert.EqualValues(t, rep.Stats.Stage(r.Stage).Created, r.Records, r.Stage.String())
		assert.Zero(t, r.Trailing)
	}
}

func TestApp_Inspect_Empty(t *testing.T) {
	f := newFixture(t, t.TempDir())

	reports, err := f.app.Inspect(context.Background(), configPath)
	require.NoError(t, err)
	for _, r := range reports {
		assert.False(t, r.Exists)
	}
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t, t.TempDir())
	f.compileOK()
	f.scene("a.scene.yaml", triangles)

	_, err := f.app.Warm(context.Background(), app.WarmOptions{ConfigPath: configPath, Scenes: []string{"a.scene.yaml"}})
	require.NoError(t, err)

	other := filepath.Join(f.cfg.CacheDir, "keep.bin")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))

	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{ConfigPath: configPath}))

	for _, s := range domain.Stages {
		assert.NoFileExists(t, domain.MirrorPath(f.cfg.CacheDir, f.cfg.ContentID, s))
	}
	assert.FileExists(t, other)
}

func TestApp_Clean_All(t *testing.T) {
	f := newFixture(t, t.TempDir())
	require.NoError(t, os.MkdirAll(f.cfg.CacheDir, 0o750))
	require.NoError(t, os.MkdirAll(f.cfg.DumpDir, 0o750))

	err := f.app.Clean(context.Background(), app.CleanOptions{ConfigPath: configPath, All: true, Dumps: true})
	require.NoError(t, err)

	assert.NoDirExists(t, f.cfg.CacheDir)
	assert.NoDirExists(t, f.cfg.DumpDir)
}

func TestApp_Clean_Missing(t *testing.T) {
	f := newFixture(t, t.TempDir())

	assert.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{ConfigPath: configPath}))
}

func TestApp_Watch(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, dir)
	f.compileOK()

	scenes := filepath.Join(dir, "scenes")
	require.NoError(t, os.MkdirAll(scenes, 0o750))
	initial := filepath.Join(scenes, "a.scene.yaml")
	changed := filepath.Join(scenes, "b.scene.yaml")
	removed := filepath.Join(scenes, "gone.scene.yaml")
	require.NoError(t, os.WriteFile(initial, nil, 0o600))
	require.NoError(t, os.WriteFile(changed, nil, 0o600))

	f.scene(initial, triangles)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rewarmed := make(chan struct{})
	f.loader.EXPECT().LoadScene(changed).Return(&domain.Scene{States: []domain.RenderState{lines}}, nil).Times(1)
	f.loader.EXPECT().LoadScene(changed).DoAndReturn(func(string) (*domain.Scene, error) {
		close(rewarmed)
		return &domain.Scene{States: []domain.RenderState{foggy}}, nil
	}).Times(1)

	f.watcher.EXPECT().Start(gomock.Any(), scenes, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, onChange func([]string)) error {
			go onChange([]string{removed, changed})
			return nil
		})
	f.watcher.EXPECT().Stop().Return(nil)

	go func() {
		<-rewarmed
		cancel()
	}()

	require.NoError(t, f.app.Watch(ctx, app.WatchOptions{ConfigPath: configPath, Dir: scenes}))
}

func TestApp_Watch_StartError(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, dir)

	f.watcher.EXPECT().Start(gomock.Any(), dir, gomock.Any()).Return(domain.ErrWatchFailed)

	err := f.app.Watch(context.Background(), app.WatchOptions{ConfigPath: configPath, Dir: dir})
	assert.ErrorIs(t, err, domain.ErrWatchFailed)
}

func TestFindScenes(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		"b.scene.yaml",
		"nested/a.scene.yaml",
		"notes.yaml",
		".shade/cache/x.scene.yaml",
	} {
		path := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	got, err := app.FindScenes(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.scene.yaml"),
		filepath.Join(dir, "nested", "a.scene.yaml"),
	}, got)
}

func TestFindScenes_MissingDir(t *testing.T) {
	_, err := app.FindScenes(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, domain.ErrSceneReadFailed.Error())
}

type levelLogger struct {
	*mocks.MockLogger
	json, debug bool
}

func (l *levelLogger) SetJSON(v bool)  { l.json = v }
func (l *levelLogger) SetDebug(v bool) { l.debug = v }

func TestApp_ConfigureLogging(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := &levelLogger{MockLogger: mocks.NewMockLogger(ctrl)}
	a := app.New(nil, nil, nil, l, nil, nil)

	a.ConfigureLogging(true, true)
	assert.True(t, l.json)
	assert.True(t, l.debug)

	a.ConfigureLogging(false, false)
	assert.False(t, l.json)
	assert.False(t, l.debug)
}
