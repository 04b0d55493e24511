// Package otelx installs the process-wide tracer provider and propagators.
package otelx

import (
	"context"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// TracerName is the instrumentation scope used by packages in this module.
const TracerName = "github.com/pranavnadakkal/portfolio"

type Options struct {
	Enabled   bool
	Endpoint  string
	Insecure  bool
	Sample    float64
	Service   string
	Component string
	Version   string
}

// ShutdownFunc flushes and stops the provider installed by Init.
type ShutdownFunc func(context.Context) error

// serviceName joins service and component, skipping empty parts.
func (o Options) serviceName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{o.Service, o.Component} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "portfolio"
	}
	return strings.Join(parts, ".")
}

// sampleRatio clamps the configured ratio into [0,1]; NaN samples nothing.
func (o Options) sampleRatio() float64 {
	if math.IsNaN(o.Sample) {
		return 0
	}
	return min(max(o.Sample, 0), 1)
}

func setPropagators() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
}

// Init installs a tracer provider. When tracing is disabled an SDK provider
// without exporters is installed so span contexts still propagate through
// the request logger and response headers.
func Init(ctx context.Context, o Options) (ShutdownFunc, error) {
	setPropagators()
	if !o.Enabled {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}
	if strings.TrimSpace(o.Endpoint) == "" {
		return nil, xerrors.New("otelx: tracing enabled without an endpoint")
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(o.Endpoint)}
	if o.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	// the exporter dial has no deadline of its own
	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	exp, err := otlptracegrpc.New(dialCtx, opts...)
	if err != nil {
		return nil, xerrors.Wrapf(err, "otelx: create exporter for %s", o.Endpoint)
	}

	// partial resources are still usable, detector errors are not fatal
	res, _ := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(o.serviceName()),
			semconv.ServiceVersionKey.String(o.Version),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.sampleRatio()))),
		sdktrace.WithBatcher(exp,
			sdktrace.WithMaxQueueSize(2048),
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
