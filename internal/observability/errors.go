package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"rpn-calculator/internal/handlers"
)

// Failure describes an error to be recorded and returned to the client.
type Failure struct {
	Op       string // operation name, used as metric attribute
	Kind     string // error kind, e.g. "invalid_token" or "bad_request"
	Msg      string // client-facing message
	Err      error
	Status   int
	Position int // token position, 0 when not applicable
}

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, f Failure, w http.ResponseWriter) {
	span.RecordError(f.Err)
	span.SetStatus(codes.Error, f.Msg)

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", f.Op),
		attribute.String("kind", f.Kind),
	))

	logger.Error(f.Msg,
		zap.String("operation", f.Op),
		zap.String("kind", f.Kind),
		zap.Error(f.Err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, f.Status, handlers.ErrorResponse{
		Error:    f.Msg,
		Kind:     f.Kind,
		Position: f.Position,
	})
}
