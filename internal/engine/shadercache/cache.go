// Package shadercache resolves compiled program artifacts for the current render state.
//
// A Cache owns one artifact store, one persistent mirror and one collision auditor per stage,
// plus the compile pipeline that fills them. Two execution contexts drive it: the submission
// context consumes the resolved artifacts, the preparation context only warms the cache.
// Each context must be driven by a single goroutine.
package shadercache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"go.trai.ch/shade/internal/adapters/mirror"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/engine/artifact"
	"go.trai.ch/shade/internal/engine/compile"
	"go.trai.ch/zerr"
)

const (
	spinYields = 64
	spinSleep  = 200 * time.Microsecond
)

type tracker struct {
	last   [domain.StageCount]domain.UID
	primed [domain.StageCount]bool
}

type counters struct {
	replayed   atomic.Int64
	created    atomic.Int64
	submitted  atomic.Int64
	failed     atomic.Int64
	collisions atomic.Int64
}

// Cache is the shader artifact cache service.
type Cache struct {
	cfg       domain.Config
	generator ports.Generator
	logger    ports.Logger
	dumper    ports.Dumper
	pipeline  *compile.Pipeline

	stores   [domain.StageCount]*artifact.Store[domain.UID]
	auditors [domain.StageCount]*Auditor[domain.UID]
	mirrors  [domain.StageCount]*mirror.Log[domain.UID]
	counters [domain.StageCount]counters

	trackers [2]tracker
	active   [domain.StageCount]atomic.Pointer[domain.Entry]
	activeID [domain.StageCount]atomic.Pointer[domain.UID]
	topology atomic.Uint32
	dirty    atomic.Bool

	initialized bool
}

// New creates a cache. Init must be called before artifacts are persisted.
func New(
	cfg domain.Config,
	generator ports.Generator,
	compiler ports.Compiler,
	tracer ports.Tracer,
	logger ports.Logger,
	dumper ports.Dumper,
) *Cache {
	c := &Cache{
		cfg:       cfg,
		generator: generator,
		logger:    logger,
		dumper:    dumper,
		pipeline:  compile.New(compiler, tracer, cfg.Workers),
	}
	for _, s := range domain.Stages {
		c.stores[s] = artifact.NewStore[domain.UID]()
		c.auditors[s] = NewAuditor[domain.UID]()
	}
	return c
}

// Config returns the configuration the cache was created with.
func (c *Cache) Config() domain.Config {
	return c.cfg
}

// Init creates the cache directory, replays the three mirrors and starts the compile workers.
func (c *Cache) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := os.MkdirAll(c.cfg.CacheDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error()), "dir", c.cfg.CacheDir)
	}

	for _, s := range domain.Stages {
		if err := c.openMirror(s); err != nil {
			c.closeMirrors()
			return err
		}
	}

	c.pipeline.Start(ctx)
	c.initialized = true
	return nil
}

func (c *Cache) openMirror(s domain.Stage) error {
	path := domain.MirrorPath(c.cfg.CacheDir, c.cfg.ContentID, s)
	store := c.stores[s]
	cnt := &c.counters[s]

	log, n, err := mirror.OpenAndReplay(path, c.cfg.Profiles[s].Target, domain.StageCodec{Stage: s},
		func(uid domain.UID, code []byte) {
			if store.Install(uid, code) {
				cnt.replayed.Add(1)
			}
		})
	if err != nil {
		return zerr.With(err, "stage", s.String())
	}

	if log.WasReset() {
		c.logger.Warn(fmt.Sprintf("%s cache %s was written for another target, starting cold", s, path))
	} else if d := log.Dropped(); d > 0 {
		c.logger.Warn(fmt.Sprintf("%s cache %s had %d unreadable trailing bytes, discarded", s, path, d))
	}

	// Debugging wants every program rebuilt from fresh text.
	if c.cfg.ShaderDebugging {
		store.Clear()
	}

	c.mirrors[s] = log
	c.logger.Info(fmt.Sprintf("loaded %d %s artifacts from %s", n, s, path))
	return nil
}

// Prepare resolves the artifacts of every stage whose UID changed since the last call in ec.
//
// In the submission context it first applies finished compiles, raises the pipeline-dirty
// signal when anything changed and updates the active artifacts. Prepare never returns an
// error; failures surface through the logger.
func (c *Cache) Prepare(state domain.RenderState, ec domain.ExecutionContext) {
	submission := ec == domain.ContextSubmission
	if submission {
		c.Drain()
		c.topology.Store(uint32(state.Topology))
	}

	t := &c.trackers[ec]
	var uids [domain.StageCount]domain.UID
	var changed [domain.StageCount]bool
	anyChanged := false
	for _, s := range domain.Stages {
		uids[s] = c.generator.UID(s, state)
		changed[s] = !t.primed[s] || uids[s] != t.last[s]
		anyChanged = anyChanged || changed[s]
	}
	if !anyChanged {
		return
	}

	for _, s := range domain.Stages {
		if changed[s] {
			t.last[s] = uids[s]
			t.primed[s] = true
		}
	}
	if submission {
		c.dirty.Store(true)
	}

	for _, s := range domain.Stages {
		if !changed[s] {
			continue
		}
		e := c.resolve(s, uids[s], state)
		if submission {
			uid := uids[s]
			c.activeID[s].Store(&uid)
			c.active[s].Store(e)
		}
	}
}

// Resolve returns the entry for stage under state, submitting a compile when this is the first
// request for its UID. It is safe for concurrent use and touches no per-context state.
func (c *Cache) Resolve(stage domain.Stage, state domain.RenderState) *domain.Entry {
	return c.resolve(stage, c.generator.UID(stage, state), state)
}

func (c *Cache) resolve(stage domain.Stage, uid domain.UID, state domain.RenderState) *domain.Entry {
	if stage == domain.StageGeometry && uid.IsPassthrough() {
		return domain.Passthrough()
	}

	store := c.stores[stage]
	e := store.GetOrCreate(uid)
	issued := store.MarkIssued(e)
	if !issued && !c.cfg.AuditCollisions {
		return e
	}

	source := c.generator.Source(stage, state)
	if c.cfg.AuditCollisions {
		c.audit(stage, uid, source, state)
	}
	if !issued {
		return e
	}

	profile := c.cfg.Profiles[stage]
	err := c.pipeline.Submit(compile.Job{
		Stage:      stage,
		UID:        uid,
		Source:     source,
		Target:     profile.Target,
		EntryPoint: profile.EntryPoint,
		Flags:      profile.Flags,
		Entry:      e,
	})
	if err != nil {
		c.logger.Error(err)
		return e
	}
	c.counters[stage].submitted.Add(1)
	return e
}

func (c *Cache) audit(stage domain.Stage, uid domain.UID, source string, state domain.RenderState) {
	col := c.auditors[stage].AddToIndexAndCheck(source, uid, fmt.Sprintf("%+v", state))
	if col == nil {
		return
	}
	c.counters[stage].collisions.Add(1)

	path, err := c.dumper.DumpCollision(stage, uid, col.First, col.Second)
	if err != nil {
		c.logger.Error(err)
		path = "(not written)"
	}
	c.logger.Warn(fmt.Sprintf("%s uid %s maps to two different programs: %s and %s, dumped to %s",
		stage, uid, col.FirstLabel, col.SecondLabel, path))
}

// Drain applies every finished compile and returns how many were applied.
func (c *Cache) Drain() int {
	return c.pipeline.Drain(c.complete)
}

// Flush blocks until every outstanding compile has finished, then applies the results.
// Before Init it only drains.
func (c *Cache) Flush() int {
	if c.initialized {
		c.pipeline.WaitForAll()
	}
	return c.Drain()
}

func (c *Cache) complete(r compile.Result) {
	cnt := &c.counters[r.Stage]
	if r.Err != nil {
		r.Entry.Fail()
		cnt.failed.Add(1)
		c.reportFailure(r)
		return
	}

	if m := c.mirrors[r.Stage]; m != nil {
		if err := m.Append(r.UID, r.Bytecode); err != nil {
			c.logger.Error(err)
		}
	}

	var source string
	if c.cfg.ShaderDebugging {
		source = r.Source
	}
	if r.Entry.Install(r.Bytecode, source) {
		cnt.created.Add(1)
	}
}

func (c *Cache) reportFailure(r compile.Result) {
	err := zerr.Wrap(r.Err, domain.ErrCompileFailed.Error())
	err = zerr.With(err, "stage", r.Stage.String())
	err = zerr.With(err, "target", r.Target)
	err = zerr.With(err, "uid", r.UID.String())

	path, dumpErr := c.dumper.DumpFailure(r.Stage, r.Source, r.Err)
	if dumpErr != nil {
		c.logger.Error(dumpErr)
	} else {
		err = zerr.With(err, "dump", path)
	}
	c.logger.Error(err)
}

// Active returns the artifact bound to stage in the submission context. The slice is owned by
// the cache. It is nil until the artifact is ready.
func (c *Cache) Active(stage domain.Stage) []byte {
	e := c.active[stage].Load()
	if e == nil {
		return nil
	}
	return e.Bytes()
}

// ActiveEntry returns the entry bound to stage in the submission context, if any.
func (c *Cache) ActiveEntry(stage domain.Stage) *domain.Entry {
	return c.active[stage].Load()
}

// ActiveUID returns the UID last resolved for stage in the submission context. It may be
// called from any goroutine.
func (c *Cache) ActiveUID(stage domain.Stage) domain.UID {
	if uid := c.activeID[stage].Load(); uid != nil {
		return *uid
	}
	return domain.UID{}
}

// ActiveReady reports whether all three active artifacts are ready.
func (c *Cache) ActiveReady() bool {
	for _, s := range domain.Stages {
		e := c.active[s].Load()
		if e == nil || !e.Ready() {
			return false
		}
	}
	return true
}

// TestShaders spins until the active artifacts are ready and reports whether they are.
//
// It drains finished compiles on every iteration. It gives up at once when a stage has no
// active entry or an active compile failed, and otherwise when the cache runs fully
// asynchronous, when ctx is done, or when nothing is left compiling. Compiles that no active
// entry waits on never extend the spin beyond those.
func (c *Cache) TestShaders(ctx context.Context) bool {
	for spins := 0; ; spins++ {
		outstanding := c.pipeline.Pending()
		c.Drain()
		ready, hopeless := c.activeStatus()
		if ready {
			return true
		}
		if hopeless || c.cfg.FullAsync || outstanding == 0 || ctx.Err() != nil {
			return false
		}
		if spins < spinYields {
			runtime.Gosched()
		} else {
			time.Sleep(spinSleep)
		}
	}
}

// activeStatus reports whether every active entry is ready, and whether some stage can never
// become ready because it has no active entry or its compile failed.
func (c *Cache) activeStatus() (ready, hopeless bool) {
	ready = true
	for _, s := range domain.Stages {
		e := c.active[s].Load()
		switch {
		case e == nil, e.Failed():
			return false, true
		case !e.Ready():
			ready = false
		}
	}
	return ready, false
}

// TakePipelineDirty reports whether the active artifacts changed since the last call and
// clears the signal.
func (c *Cache) TakePipelineDirty() bool {
	return c.dirty.Swap(false)
}

// Lookup returns the entry of uid without creating one.
func (c *Cache) Lookup(stage domain.Stage, uid domain.UID) (*domain.Entry, bool) {
	if stage == domain.StageGeometry && uid.IsPassthrough() {
		return domain.Passthrough(), true
	}
	return c.stores[stage].Lookup(uid)
}

// Topology returns the primitive topology of the last submitted state.
func (c *Cache) Topology() domain.Topology {
	return domain.Topology(c.topology.Load())
}

// Pending returns the number of compiles not yet finished.
func (c *Cache) Pending() int {
	return c.pipeline.Pending()
}

// Stats returns a snapshot of the per-stage counters.
func (c *Cache) Stats() domain.Stats {
	var st domain.Stats
	for _, s := range domain.Stages {
		cnt := &c.counters[s]
		st.Stages[s] = domain.StageStats{
			Alive:      c.stores[s].Len(),
			Created:    cnt.created.Load(),
			Replayed:   cnt.replayed.Load(),
			Submitted:  cnt.submitted.Load(),
			Failed:     cnt.failed.Load(),
			Collisions: cnt.collisions.Load(),
		}
	}
	return st
}

// Clear drops every in-memory entry and forgets what both contexts last resolved.
// The persistent mirrors are left untouched.
func (c *Cache) Clear() {
	for _, s := range domain.Stages {
		c.stores[s].Clear()
		c.active[s].Store(nil)
		c.activeID[s].Store(nil)
	}
	c.trackers = [2]tracker{}
	c.dirty.Store(true)
}

// Shutdown waits for outstanding compiles, applies them and releases every resource.
// The cache cannot be initialized again afterwards.
func (c *Cache) Shutdown() error {
	if c.initialized {
		c.pipeline.WaitForAll()
		c.Drain()
	}
	err := c.pipeline.Close()

	for _, s := range domain.Stages {
		c.stores[s].Clear()
		c.auditors[s].Invalidate()
		c.active[s].Store(nil)
		c.activeID[s].Store(nil)
	}
	err = errors.Join(err, c.closeMirrors())
	c.initialized = false
	return err
}

func (c *Cache) closeMirrors() error {
	var errs error
	for i, m := range c.mirrors {
		if m == nil {
			continue
		}
		errs = errors.Join(errs, m.Close())
		c.mirrors[i] = nil
	}
	return errs
}
