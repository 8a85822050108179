package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	callCounter    otelmetric.Int64Counter
	callDuration   otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	callCounter, _ := meter.Int64Counter(
		"provider.calls",
		otelmetric.WithDescription("Number of external provider calls"),
	)

	callDuration, _ := meter.Float64Histogram(
		"provider.call.duration",
		otelmetric.WithDescription("External provider call duration"),
		otelmetric.WithUnit("ms"),
	)

	o := &Observability{
		meterProvider: provider,
		meter:         meter,
		callCounter:   callCounter,
		callDuration:  callDuration,
	}

	if traceExp, err := jaeger.New(jaeger.WithCollectorEndpoint()); err != nil {
		log.Printf("Failed to create Jaeger exporter: %v", err)
	} else {
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))
		otel.SetTracerProvider(tp)
		o.tracerProvider = tp
		o.tracer = tp.Tracer(serviceName)
	}

	return o
}

// StartSpan opens a span around one unit of work; callers must End it.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name)
}

func (o *Observability) RecordProviderCall(ctx context.Context, provider, status string) {
	if o.callCounter != nil {
		o.callCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordCallDuration(ctx context.Context, provider string, duration time.Duration) {
	if o.callDuration != nil {
		o.callDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("provider", provider),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
}
