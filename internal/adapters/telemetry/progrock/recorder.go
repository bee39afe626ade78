// Package progrock provides the Progrock implementation of the tracer port.
package progrock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/shade/internal/core/ports"
)

var (
	_ ports.Tracer = (*Tracer)(nil)
	_ ports.Span   = (*Span)(nil)
)

// Tracer records one progrock vertex per span.
type Tracer struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Tracer recording to an in-memory tape.
func New() *Tracer {
	return NewTracer(progrock.NewTape())
}

// NewTracer creates a new Tracer with the given writer.
func NewTracer(w progrock.Writer) *Tracer {
	return &Tracer{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start records a new vertex named after the span.
func (t *Tracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	v := t.rec.Vertex(digest.FromString(name), name)
	if cfg.Cached {
		v.Cached()
	}
	return ctx, &Span{vertex: v}
}

// Close flushes and closes the recording session.
func (t *Tracer) Close() error {
	if c, ok := t.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder

	mu  sync.Mutex
	err error
}

// End marks the vertex done with any recorded error.
func (s *Span) End() {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	s.vertex.Done(err)
}

// RecordError remembers err for End.
func (s *Span) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = errors.Join(s.err, err)
}

// SetAttribute writes the pair to the vertex output.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// Write appends p to the vertex output.
func (s *Span) Write(p []byte) (int, error) {
	return s.Stdout().Write(p)
}

// Stdout returns the vertex's standard output stream.
func (s *Span) Stdout() io.Writer {
	return s.vertex.Stdout()
}
