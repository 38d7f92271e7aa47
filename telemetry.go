package typeorm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/phonghoang2k/typeorm"
	instrumentationVersion = "v0.1.0"
)

var tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))

// telemetry wraps query execution with OpenTelemetry spans. Disabled by
// default; all methods are nil-safe so the executor can call through
// unconditionally.
type telemetry struct {
	enabled bool
}

// startSpan creates a span with the common database attributes.
func (t *telemetry) startSpan(ctx context.Context, operation, query string) (context.Context, trace.Span) {
	if t == nil || !t.enabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := tracer.Start(ctx, "typeorm."+operation)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
	)
	if query != "" {
		span.SetAttributes(attribute.String("db.statement", query))
	}
	return ctx, span
}

// finishSpan completes a span with error handling.
func (t *telemetry) finishSpan(span trace.Span, err error) {
	if t == nil || !t.enabled {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// EnableTelemetry turns OpenTelemetry tracing of query execution on or off.
func (d *Driver) EnableTelemetry(enabled bool) {
	if d == nil {
		return
	}
	d.exec.telemetry.enabled = enabled
}
