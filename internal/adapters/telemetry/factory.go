package telemetry

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/shade/internal/adapters/telemetry/progrock"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TracerFactory = (*Factory)(nil)

// Factory builds the tracer selected by the configuration.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory. Finished OTel spans are logged through logger when it
// supports debug output.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// New returns the tracer for mode together with its shutdown function.
func (f *Factory) New(mode domain.TelemetryMode) (ports.Tracer, func(context.Context) error, error) {
	switch mode {
	case domain.TelemetryNone, "":
		return NewNoOpTracer(), func(context.Context) error { return nil }, nil
	case domain.TelemetryOTel:
		var bridge *LogBridge
		if dl, ok := f.logger.(DebugLogger); ok {
			bridge = NewLogBridge(dl)
		} else {
			bridge = NewLogBridge(nil)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
		return NewOTelTracer(tp), tp.Shutdown, nil
	case domain.TelemetryProgrock:
		tracer := progrock.New()
		return tracer, func(context.Context) error { return tracer.Close() }, nil
	default:
		return nil, nil, zerr.With(domain.ErrInvalidConfig, "telemetry", string(mode))
	}
}
