// Package telemetry wires the OpenTelemetry trace and metric SDKs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Providers holds the SDK providers installed by Setup.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource
}

// Option adds extra SDK configuration, mostly for tests.
type Option func(*settings)

type settings struct {
	spanProcessors []sdktrace.SpanProcessor
	readers        []sdkmetric.Reader
}

// WithSpanProcessor registers an additional span processor.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(s *settings) { s.spanProcessors = append(s.spanProcessors, sp) }
}

// WithReader registers an additional metric reader.
func WithReader(r sdkmetric.Reader) Option {
	return func(s *settings) { s.readers = append(s.readers, r) }
}

// Setup builds the tracer and meter providers for cfg and installs them as
// the otel globals. Spans are exported over OTLP/HTTP only when
// cfg.OTLPEndpoint is set.
func Setup(ctx context.Context, cfg config.Config, opts ...Option) (*Providers, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}
	for _, sp := range s.spanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(sp))
	}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range s.readers {
		meterOpts = append(meterOpts, sdkmetric.WithReader(r))
	}

	p := &Providers{
		TracerProvider: sdktrace.NewTracerProvider(traceOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(meterOpts...),
		Resource:       res,
	}

	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return p, nil
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
