package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	initOnce       sync.Once
	initErr        error
	tracerProvider *sdktrace.TracerProvider
	providerMu     sync.RWMutex
)

// InitOpenTelemetry installs the tracer provider behind the agent, queue, and
// MCP session spans. Repeated calls return the first result.
func InitOpenTelemetry(serviceName string) error {
	initOnce.Do(func() {
		res, err := resource.New(
			context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
			),
		)
		if err != nil {
			initErr = err
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1))),
			sdktrace.WithResource(res),
		)

		providerMu.Lock()
		tracerProvider = tp
		providerMu.Unlock()

		otel.SetTracerProvider(tp)
	})

	return initErr
}

// ShutdownOpenTelemetry flushes pending spans. A no-op when InitOpenTelemetry
// never ran or failed.
func ShutdownOpenTelemetry(ctx context.Context) error {
	providerMu.RLock()
	tp := tracerProvider
	providerMu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// StartSpan opens a span and, for a root span, copies its trace ID into the
// context so log lines and child spans agree on one ID per user turn.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))

	if GetTraceID(ctx) == "" {
		sc := span.SpanContext()
		if sc.IsValid() {
			ctx = WithTraceID(ctx, sc.TraceID().String())
		}
	}

	return ctx, span
}
