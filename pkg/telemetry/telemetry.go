// Package telemetry wires OpenTelemetry tracing for the orchestration core.
// Without an exporter endpoint the manager is a no-op, so library code can
// always call through it unconditionally.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/dynamaic/assistant-core"

// Config controls trace export.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP/HTTP collector host:port. Empty disables export.
	Endpoint string
	Insecure bool
}

// Manager owns the tracer provider lifecycle.
type Manager struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewManager builds a Manager. With an empty endpoint every span is a no-op.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Endpoint == "" {
		return &Manager{tracer: noop.NewTracerProvider().Tracer(tracerName)}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.Merge(sdkresource.Default(), sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &Manager{provider: provider, tracer: provider.Tracer(tracerName)}, nil
}

// StartSpan opens a span under the manager's tracer.
func (m *Manager) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if m == nil {
		return noop.NewTracerProvider().Tracer(tracerName).Start(ctx, name)
	}
	return m.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan closes the span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Shutdown flushes and stops the provider.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
