// Package observability wires OpenTelemetry tracing.
package observability

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// TracingOptions configures Setup.
type TracingOptions struct {
	Enabled     bool
	ServiceName string
	Version     string
	// Output receives pretty-printed spans. Nil means stdout.
	Output io.Writer
}

// Setup installs a global tracer provider and returns it with a shutdown
// func that flushes pending spans. When tracing is disabled a no-op
// provider is returned and shutdown does nothing.
func Setup(ctx context.Context, opts TracingOptions, log *zap.Logger) (trace.TracerProvider, func(context.Context) error, error) {
	if !opts.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	exportOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if opts.Output != nil {
		exportOpts = append(exportOpts, stdouttrace.WithWriter(opts.Output))
	}
	exporter, err := stdouttrace.New(exportOpts...)
	if err != nil {
		return nil, nil, err
	}

	name := opts.ServiceName
	if name == "" {
		name = "qgen"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(name),
		semconv.ServiceVersionKey.String(opts.Version),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("otel tracing initialized", zap.String("service", name))

	return tp, tp.Shutdown, nil
}
