package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer sets the tracer used by StartSpan. Nil disables tracing.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// GetActiveSpan returns the recording span in ctx, or nil.
func GetActiveSpan(ctx context.Context) trace.Span {
	if tracer == nil {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	// no-op spans carry an invalid span context
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}

// StartSpan starts a child span. Without a tracer the returned span is a no-op.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName)
}

// Annotate sets string attributes on the active span.
func Annotate(ctx context.Context, attrs map[string]string) {
	span := GetActiveSpan(ctx)
	if span == nil {
		return
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	span.SetAttributes(kvs...)
}

// AddEvent records a named event with a message on the active span.
func AddEvent(ctx context.Context, name, message string) {
	span := GetActiveSpan(ctx)
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attribute.String("message", message)))
}

// RecordError marks the active span as failed.
func RecordError(ctx context.Context, err error) {
	span := GetActiveSpan(ctx)
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := GetActiveSpan(ctx)
	if span == nil {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// GetSpanID returns the span ID from the context.
func GetSpanID(ctx context.Context) string {
	span := GetActiveSpan(ctx)
	if span == nil {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
