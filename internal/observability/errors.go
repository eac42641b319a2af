package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"circuit-calculator/internal/handlers"
)

// Failure describes a request that could not be served.
type Failure struct {
	Operation string
	Kind      string // stable error tag, e.g. "over_current"; empty for generic failures
	Msg       string // client-facing message
	Err       error
	Status    int
}

// RecordError is the single failure path for handlers. It marks the span,
// counts the failure by operation and kind, logs it with trace context and
// writes the JSON error body.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, f Failure, w http.ResponseWriter) {
	span.RecordError(f.Err)
	span.SetStatus(codes.Error, f.Msg)

	kind := f.Kind
	if kind == "" {
		kind = "request"
	}
	span.SetAttributes(attribute.String("error.kind", kind))

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", f.Operation),
		attribute.String("kind", kind),
	))

	log := logger.Warn
	if f.Status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log(f.Msg,
		zap.String("operation", f.Operation),
		zap.String("kind", kind),
		zap.Error(f.Err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	handlers.WriteError(w, f.Status, f.Msg, f.Kind)
}
