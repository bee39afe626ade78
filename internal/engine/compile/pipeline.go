// Package compile runs program compilation off the calling goroutine.
//
// Jobs go into an unbounded queue and are compiled by a bounded set of workers. Finished
// results wait in a mailbox until the owner calls Drain, so every side effect of a completion
// runs on the draining goroutine.
package compile

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Job is one compile request. It is owned by the pipeline once submitted.
type Job struct {
	Stage      domain.Stage
	UID        domain.UID
	Source     string
	Target     string
	EntryPoint string
	Flags      domain.CompileFlags
	// Entry is the cache slot the result belongs to.
	Entry *domain.Entry
}

// Result is a finished job.
type Result struct {
	Job
	Bytecode []byte
	Err      error
	Duration time.Duration
}

// Pipeline is the asynchronous compile service.
type Pipeline struct {
	compiler ports.Compiler
	tracer   ports.Tracer
	workers  int

	mu          sync.Mutex
	idle        *sync.Cond
	queue       []Job
	outstanding int
	closed      bool
	started     bool
	wake        chan struct{}
	done        chan struct{}

	resultsMu sync.Mutex
	results   []Result

	drainMu sync.Mutex
}

// New creates a pipeline with the given number of workers. A non-positive count uses one
// worker per CPU.
func New(compiler ports.Compiler, tracer ports.Tracer, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pipeline{
		compiler: compiler,
		tracer:   tracer,
		workers:  workers,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Workers returns the size of the worker pool.
func (p *Pipeline) Workers() int {
	return p.workers
}

// Start launches the dispatcher. Cancellation of ctx does not stop running or queued jobs;
// only Close does.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.dispatch(context.WithoutCancel(ctx))
}

// Submit queues a job and returns immediately.
func (p *Pipeline) Submit(job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zerr.With(domain.ErrPipelineClosed, "uid", job.UID.String())
	}
	p.queue = append(p.queue, job)
	p.outstanding++
	p.mu.Unlock()

	p.signal()
	return nil
}

// Pending returns the number of submitted jobs whose result has not reached the mailbox.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Drain hands every finished result to handle on the calling goroutine and returns how many
// were handled. Concurrent calls are serialized.
func (p *Pipeline) Drain(handle func(Result)) int {
	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	p.resultsMu.Lock()
	batch := p.results
	p.results = nil
	p.resultsMu.Unlock()

	for _, r := range batch {
		handle(r)
	}
	return len(batch)
}

// WaitForAll blocks until every submitted job has finished compiling.
func (p *Pipeline) WaitForAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.outstanding > 0 {
		p.idle.Wait()
	}
}

// Close stops accepting jobs, lets queued jobs finish and waits for the workers to exit.
// Results still in the mailbox remain available to Drain.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}
	p.signal()
	<-p.done
	return nil
}

func (p *Pipeline) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pipeline) dispatch(ctx context.Context) {
	defer close(p.done)

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for {
		job, ok := p.next()
		if !ok {
			break
		}
		g.Go(func() error {
			p.finish(p.run(ctx, job))
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) next() (Job, bool) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			job := p.queue[0]
			p.queue[0] = Job{}
			p.queue = p.queue[1:]
			p.mu.Unlock()
			return job, true
		}
		closed := p.closed
		p.mu.Unlock()

		if closed {
			return Job{}, false
		}
		<-p.wake
	}
}

func (p *Pipeline) run(ctx context.Context, job Job) Result {
	ctx, span := p.tracer.Start(ctx, job.UID.String())
	defer span.End()

	span.SetAttribute("shade.stage", job.Stage.String())
	span.SetAttribute("shade.target", job.Target)

	start := time.Now()
	code, err := p.compiler.Compile(ctx, ports.CompileRequest{
		Stage:      job.Stage,
		Source:     job.Source,
		Target:     job.Target,
		EntryPoint: job.EntryPoint,
		Flags:      job.Flags,
	})
	if err != nil {
		span.RecordError(err)
		code = nil
	} else {
		span.SetAttribute("shade.bytes", len(code))
	}

	return Result{Job: job, Bytecode: code, Err: err, Duration: time.Since(start)}
}

func (p *Pipeline) finish(r Result) {
	p.resultsMu.Lock()
	p.results = append(p.results, r)
	p.resultsMu.Unlock()

	p.mu.Lock()
	p.outstanding--
	if p.outstanding == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}
