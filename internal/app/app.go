// Package app implements the application layer for shade.
package app

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"time"

	"go.trai.ch/shade/internal/adapters/dump"   //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/mirror" //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/engine/shadercache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultLookahead is how many frames the preparation context runs ahead of submission.
const DefaultLookahead = 4

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	generator    ports.Generator
	compiler     ports.Compiler
	logger       ports.Logger
	tracers      ports.TracerFactory
	watcher      ports.SceneWatcher
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	generator ports.Generator,
	compiler ports.Compiler,
	log ports.Logger,
	tracers ports.TracerFactory,
	watcher ports.SceneWatcher,
) *App {
	return &App{
		configLoader: loader,
		generator:    generator,
		compiler:     compiler,
		logger:       log,
		tracers:      tracers,
		watcher:      watcher,
	}
}

// ConfigureLogging switches the logger to JSON output or debug level when it supports it.
func (a *App) ConfigureLogging(jsonOutput, verbose bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonOutput)
	}
	if l, ok := a.logger.(interface{ SetDebug(bool) }); ok {
		l.SetDebug(verbose)
	}
}

// session is one opened cache with its tracer.
type session struct {
	cache       *shadercache.Cache
	closeTracer func(context.Context) error
	closed      bool
}

func (a *App) open(ctx context.Context, configPath string) (*session, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	tracer, closeTracer, err := a.tracers.New(cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	cache := shadercache.New(cfg, a.generator, a.compiler, tracer, a.logger, dump.NewWriter(cfg.DumpDir))
	if err := cache.Init(ctx); err != nil {
		_ = cache.Shutdown()
		_ = closeTracer(context.WithoutCancel(ctx))
		return nil, err
	}
	return &session{cache: cache, closeTracer: closeTracer}, nil
}

func (s *session) close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.cache.Shutdown(), s.closeTracer(context.WithoutCancel(ctx)))
}

func (a *App) loadScenes(paths []string) ([]*domain.Scene, error) {
	if len(paths) == 0 {
		return nil, domain.ErrNoScenes
	}
	scenes := make([]*domain.Scene, 0, len(paths))
	for _, p := range paths {
		scene, err := a.configLoader.LoadScene(p)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

// WarmOptions configuration for the Warm method.
type WarmOptions struct {
	ConfigPath string
	Scenes     []string
}

// Warm resolves every state of the given scenes in the preparation context and waits until
// every compile finished. Compile failures are reported after all jobs ran.
func (a *App) Warm(ctx context.Context, opts WarmOptions) (Report, error) {
	scenes, err := a.loadScenes(opts.Scenes)
	if err != nil {
		return Report{}, err
	}

	s, err := a.open(ctx, opts.ConfigPath)
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = s.close(ctx) }()

	start := time.Now()
	rep := Report{}
	for _, scene := range scenes {
		for _, state := range scene.States {
			if ctx.Err() != nil {
				break
			}
			s.cache.Prepare(state, domain.ContextPreparation)
			rep.Frames++
		}
	}
	s.cache.Flush()
	rep.Stats = s.cache.Stats()
	rep.Elapsed = time.Since(start)

	a.logger.Info(fmt.Sprintf("warmed %d states in %s", rep.Frames, rep.Elapsed.Round(time.Millisecond)))
	a.logStats(rep.Stats)

	if err := s.close(ctx); err != nil {
		return rep, err
	}
	if failed := rep.Failed(); failed > 0 {
		return rep, zerr.With(zerr.Wrap(domain.ErrCompileFailed, "warm incomplete"), "failed_jobs", failed)
	}
	return rep, ctx.Err()
}

// PlayOptions configuration for the Play method.
type PlayOptions struct {
	ConfigPath string
	Scenes     []string
	// Lookahead bounds how many frames preparation may run ahead of submission.
	Lookahead int
}

// Play replays the scenes as a frame sequence. A preparation goroutine resolves upcoming
// states while the submission goroutine activates each frame and waits for its artifacts.
func (a *App) Play(ctx context.Context, opts PlayOptions) (Report, error) {
	scenes, err := a.loadScenes(opts.Scenes)
	if err != nil {
		return Report{}, err
	}
	var states []domain.RenderState
	for _, scene := range scenes {
		states = append(states, scene.States...)
	}

	s, err := a.open(ctx, opts.ConfigPath)
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = s.close(ctx) }()

	lookahead := opts.Lookahead
	if lookahead < 0 {
		lookahead = 0
	}

	start := time.Now()
	rep := Report{}
	frames := make(chan int, lookahead)
	g, gctx := errgroup.WithContext(ctx)

	// Preparation context
	g.Go(func() error {
		defer close(frames)
		for i, state := range states {
			s.cache.Prepare(state, domain.ContextPreparation)
			select {
			case frames <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Submission context
	g.Go(func() error {
		for i := range frames {
			s.cache.Prepare(states[i], domain.ContextSubmission)
			s.cache.TestShaders(gctx)
			if s.cache.TakePipelineDirty() {
				rep.PipelineChanges++
			}
			if s.cache.ActiveReady() {
				rep.Drawn++
			} else {
				rep.Skipped++
			}
			rep.Frames++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return rep, err
	}
	s.cache.Flush()
	rep.Stats = s.cache.Stats()
	rep.Elapsed = time.Since(start)

	a.logger.Info(fmt.Sprintf("played %d frames in %s: %d drawn, %d skipped, %d pipeline changes",
		rep.Frames, rep.Elapsed.Round(time.Millisecond), rep.Drawn, rep.Skipped, rep.PipelineChanges))
	a.logStats(rep.Stats)

	return rep, s.close(ctx)
}

// MirrorReport describes one persisted mirror file.
type MirrorReport struct {
	Stage  domain.Stage
	Path   string
	Target string
	mirror.ScanResult
}

// Inspect reports the persisted mirror files of the configured content id without
// modifying them.
func (a *App) Inspect(_ context.Context, configPath string) ([]MirrorReport, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	reports := make([]MirrorReport, 0, domain.StageCount)
	for _, stage := range domain.Stages {
		path := domain.MirrorPath(cfg.CacheDir, cfg.ContentID, stage)
		target := cfg.Profiles[stage].Target
		res, err := mirror.Scan[domain.UID](path, target, domain.StageCodec{Stage: stage}, nil)
		if err != nil {
			return nil, err
		}
		reports = append(reports, MirrorReport{Stage: stage, Path: path, Target: target, ScanResult: res})
	}
	return reports, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	// All removes the whole cache directory instead of the content id's files.
	All bool
	// Dumps also removes the dump directory.
	Dumps bool
}

// Clean removes persisted artifacts based on the provided options.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	remove := func(path, name string, fn func(string) error) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := fn(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.All {
		remove(cfg.CacheDir, "cache directory", os.RemoveAll)
	} else {
		for _, stage := range domain.Stages {
			remove(domain.MirrorPath(cfg.CacheDir, cfg.ContentID, stage), stage.String()+" mirror", os.Remove)
		}
	}
	if opts.Dumps {
		remove(cfg.DumpDir, "dump directory", os.RemoveAll)
	}
	return errs
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	ConfigPath string
	// Dir is searched recursively for scene files.
	Dir string
}

// Watch warms every scene below Dir, then re-warms scenes as they change until ctx is done.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.open(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.close(ctx) }()

	initial, err := FindScenes(opts.Dir)
	if err != nil {
		return err
	}
	a.rewarm(s, initial)

	changes := make(chan []string, 1)
	err = a.watcher.Start(ctx, opts.Dir, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	a.logger.Info("watching " + opts.Dir + " for scene changes")

	for {
		select {
		case <-ctx.Done():
			return errors.Join(a.watcher.Stop(), s.close(ctx))
		case paths := <-changes:
			a.rewarm(s, paths)
		}
	}
}

// rewarm loads each scene and prepares its states. Removed or invalid scenes are skipped.
func (a *App) rewarm(s *session, paths []string) {
	frames := 0
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		scene, err := a.configLoader.LoadScene(p)
		if err != nil {
			a.logger.Error(err)
			continue
		}
		for _, state := range scene.States {
			s.cache.Prepare(state, domain.ContextPreparation)
			frames++
		}
	}
	s.cache.Flush()
	a.logger.Info(fmt.Sprintf("warmed %d states from %d scene files", frames, len(paths)))
	a.logStats(s.cache.Stats())
}

// FindScenes returns every scene file below dir in lexical order.
func FindScenes(dir string) ([]string, error) {
	return fs.NewWalker().FindScenes(dir)
}

func (a *App) logStats(stats domain.Stats) {
	for _, stage := range domain.Stages {
		st := stats.Stage(stage)
		a.logger.Info(fmt.Sprintf("%-8s %d alive, %d compiled, %d loaded, %d failed",
			stage.String()+":", st.Alive, st.Created, st.Replayed, st.Failed))
	}
}
