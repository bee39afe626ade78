package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ sdktrace.SpanProcessor = (*LogBridge)(nil)

// DebugLogger receives one line per finished span.
type DebugLogger interface {
	Debug(msg string, args ...any)
}

// LogBridge implements sdktrace.SpanProcessor by logging every finished span at debug level.
type LogBridge struct {
	logger DebugLogger
}

// NewLogBridge returns a new LogBridge. A nil logger discards spans.
func NewLogBridge(logger DebugLogger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart does nothing.
func (b *LogBridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration, status and attributes.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	attrs := s.Attributes()
	args := make([]any, 0, 2*len(attrs)+4)
	args = append(args, "duration", s.EndTime().Sub(s.StartTime()))
	if status := s.Status(); status.Code == codes.Error {
		args = append(args, "error", status.Description)
	}
	for _, kv := range attrs {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	b.logger.Debug(s.Name(), args...)
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(_ context.Context) error {
	return nil
}
