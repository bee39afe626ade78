package ports

import (
	"context"
	"io"

	"go.trai.ch/shade/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
}

// TracerFactory builds the tracer selected by the configuration.
type TracerFactory interface {
	// New returns the tracer for mode and a function that flushes and releases it.
	New(mode domain.TelemetryMode) (Tracer, func(context.Context) error, error)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Cached marks work that was satisfied without running.
	Cached bool
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithCached marks the span as satisfied from a cache.
func WithCached() SpanOption {
	return func(c *SpanConfig) {
		c.Cached = true
	}
}
