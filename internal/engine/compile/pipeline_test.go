package compile_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/core/ports/mocks"
	"go.trai.ch/shade/internal/engine/compile"
	"go.uber.org/mock/gomock"
)

type pipelineTestMocks struct {
	compiler *mocks.MockCompiler
	tracer   *mocks.MockTracer
	span     *mocks.MockSpan
}

func setupPipelineTest(t *testing.T, workers int) (*compile.Pipeline, pipelineTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := pipelineTestMocks{
		compiler: mocks.NewMockCompiler(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		span:     mocks.NewMockSpan(ctrl),
	}

	m.span.EXPECT().End().AnyTimes()
	m.span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	m.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	// Start has variadic signature: Start(ctx, name, ...opts).
	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, m.span
		},
	).AnyTimes()

	return compile.New(m.compiler, m.tracer, workers), m
}

func job(i int) compile.Job {
	return compile.Job{
		Stage:      domain.StageVertex,
		UID:        domain.UID{Stage: domain.StageVertex, Fixed: [4]uint32{uint32(i)}},
		Source:     "src",
		Target:     "spv_1_3",
		EntryPoint: "main",
		Entry:      &domain.Entry{},
	}
}

func TestPipeline_CompilesAndDrains(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 4)
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req ports.CompileRequest) ([]byte, error) {
				return []byte(req.Source + "-bin"), nil
			},
		).Times(10)

		p.Start(t.Context())
		for i := range 10 {
			require.NoError(t, p.Submit(job(i)))
		}
		p.WaitForAll()
		assert.Zero(t, p.Pending())

		// The handler runs on this goroutine, so no locking is needed.
		seen := make(map[domain.UID]bool)
		n := p.Drain(func(r compile.Result) {
			require.NoError(t, r.Err)
			assert.Equal(t, []byte("src-bin"), r.Bytecode)
			seen[r.UID] = true
		})
		assert.Equal(t, 10, n)
		assert.Len(t, seen, 10)
		assert.Zero(t, p.Drain(func(compile.Result) { t.Fatal("unexpected result") }))

		require.NoError(t, p.Close())
	})
}

func TestPipeline_FailureIsReported(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 1)
		diag := errors.New("error: expected ';'")
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte("partial"), diag)

		p.Start(t.Context())
		require.NoError(t, p.Submit(job(1)))
		p.WaitForAll()

		var got compile.Result
		require.Equal(t, 1, p.Drain(func(r compile.Result) { got = r }))
		require.ErrorIs(t, got.Err, diag)
		assert.Nil(t, got.Bytecode)
		assert.Equal(t, "src", got.Source)

		require.NoError(t, p.Close())
	})
}

func TestPipeline_RespectsWorkerLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 2)
		release := make(chan struct{})
		var inFlight, peak atomic.Int32
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, ports.CompileRequest) ([]byte, error) {
				n := inFlight.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				<-release
				inFlight.Add(-1)
				return []byte{1}, nil
			},
		).Times(6)

		p.Start(t.Context())
		for i := range 6 {
			require.NoError(t, p.Submit(job(i)))
		}

		synctest.Wait()
		assert.Equal(t, int32(2), inFlight.Load())
		assert.Equal(t, 6, p.Pending())

		close(release)
		p.WaitForAll()
		assert.Equal(t, int32(2), peak.Load())
		assert.Equal(t, 6, p.Drain(func(compile.Result) {}))

		require.NoError(t, p.Close())
	})
}

func TestPipeline_DrainIsNonBlocking(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 1)
		release := make(chan struct{})
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, ports.CompileRequest) ([]byte, error) {
				<-release
				return []byte{1}, nil
			},
		)

		p.Start(t.Context())
		require.NoError(t, p.Submit(job(1)))
		synctest.Wait()

		assert.Zero(t, p.Drain(func(compile.Result) {}))

		close(release)
		p.WaitForAll()
		assert.Equal(t, 1, p.Drain(func(compile.Result) {}))
		require.NoError(t, p.Close())
	})
}

func TestPipeline_CloseFinishesQueuedJobs(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 1)
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte{1}, nil).Times(3)

		p.Start(t.Context())
		for i := range 3 {
			require.NoError(t, p.Submit(job(i)))
		}
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())

		assert.Equal(t, 3, p.Drain(func(compile.Result) {}))

		err := p.Submit(job(9))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrPipelineClosed.Error())
	})
}

func TestPipeline_SubmitBeforeStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := setupPipelineTest(t, 0)
		m.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte{1}, nil)

		require.NoError(t, p.Submit(job(1)))
		assert.Equal(t, 1, p.Pending())
		assert.Positive(t, p.Workers())

		p.Start(t.Context())
		p.WaitForAll()
		assert.Equal(t, 1, p.Drain(func(compile.Result) {}))
		require.NoError(t, p.Close())
	})
}
