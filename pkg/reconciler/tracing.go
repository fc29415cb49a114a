package reconciler

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used until SetTracer is called.
const DefaultTracerName = "lumina"

var tracer trace.Tracer

// SetTracer sets the tracer used for mount spans. nil restores the tracer
// named DefaultTracerName from the global provider.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// SetTracerName resolves the tracer from the global provider by name.
func SetTracerName(name string) {
	tracer = otel.Tracer(name)
}

func currentTracer() trace.Tracer {
	if tracer != nil {
		return tracer
	}
	return otel.Tracer(DefaultTracerName)
}

// startSpan opens a span for one reconciler entry point. The returned
// function records err and the mounted fiber count, then ends the span.
func startSpan(name string, attrs ...attribute.KeyValue) func(f *Fiber, err error) {
	_, span := currentTracer().Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return func(f *Fiber, err error) {
		if f != nil {
			span.SetAttributes(attribute.Int("lumina.fibers", f.Count()))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
