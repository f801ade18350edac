// Package mopentelemetry wraps go.opentelemetry.io/otel the way the
// teacher's common/mopentelemetry package does: a small Telemetry bootstrap
// plus span-error helpers used from every command, query, relay batch and
// job execution.
package mopentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry names the service for span attribution. A full SDK exporter
// pipeline (OTLP, batching, resource detection) is the operator's concern;
// this wrapper only standardizes how call sites obtain a tracer and record
// span errors, matching the surface common/mopentelemetry/otel.go exposes to
// business code.
type Telemetry struct {
	ServiceName string
}

// Tracer returns a named tracer for the configured service.
func (t *Telemetry) Tracer() trace.Tracer {
	return otel.Tracer(t.ServiceName)
}

// Start starts a span named spanName under the service's tracer.
func (t *Telemetry) Start(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return t.Tracer().Start(ctx, spanName)
}

// HandleSpanError records err on span and marks it as failed.
func HandleSpanError(span *trace.Span, message string, err error) {
	(*span).SetStatus(codes.Error, message+": "+err.Error())
	(*span).RecordError(err)
}
