package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rpn-calculator/internal/handlers"
	"rpn-calculator/internal/observability"
	"rpn-calculator/internal/rpn"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator endpoints.
type Handler struct {
	maxBatchLines int
}

// NewHandler returns a Handler that accepts at most maxBatchLines lines per
// batch request.
func NewHandler(maxBatchLines int) *Handler {
	return &Handler{maxBatchLines: maxBatchLines}
}

// ---------------------------------------------------------------------------
// Handler: single formula
// ---------------------------------------------------------------------------

// Eval handles POST /calculator/rpn.
func (h *Handler) Eval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.rpn",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Op:     "rpn",
			Kind:   "bad_request",
			Msg:    "invalid request body",
			Err:    err,
			Status: http.StatusBadRequest,
		}, w)
		return
	}

	var steps []rpn.Trace
	evaluator := rpn.New(req.Verbose, rpn.WithTraceHook(func(t rpn.Trace) {
		steps = append(steps, t)
	}))

	tokens := len(rpn.Tokens(req.Formula))
	span.SetAttributes(
		attribute.String("rpn.formula", req.Formula),
		attribute.Int("rpn.tokens", tokens),
		attribute.Bool("rpn.verbose", req.Verbose),
	)

	result, elapsed, err := evaluate(ctx, evaluator, req.Formula, tokens)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Op:       "rpn",
			Kind:     rpn.KindName(err),
			Msg:      err.Error(),
			Err:      err,
			Status:   http.StatusUnprocessableEntity,
			Position: rpn.PositionOf(err),
		}, w)
		return
	}

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Int("result", int(result)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Int("rpn.result", int(result)))
	span.SetStatus(codes.Ok, "")

	logger.Info("formula evaluated",
		zap.String("formula", req.Formula),
		zap.Int32("result", result),
		zap.Int("tokens", tokens),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvalResponse{
		Formula: req.Formula,
		Result:  result,
		Tokens:  tokens,
		Trace:   steps,
	})
}

// ---------------------------------------------------------------------------
// Handler: batch (one formula per line, failures isolated per line)
// ---------------------------------------------------------------------------

// Batch handles POST /calculator/batch. Every line gets its own child span
// so a batch renders as a multi-level trace.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.batch",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Op:     "batch",
			Kind:   "bad_request",
			Msg:    "invalid request body",
			Err:    err,
			Status: http.StatusBadRequest,
		}, w)
		return
	}

	if len(req.Lines) > h.maxBatchLines {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Op:     "batch",
			Kind:   "too_many_lines",
			Msg:    fmt.Sprintf("batch exceeds %d lines", h.maxBatchLines),
			Err:    fmt.Errorf("got %d lines, limit %d", len(req.Lines), h.maxBatchLines),
			Status: http.StatusRequestEntityTooLarge,
		}, w)
		return
	}

	span.SetAttributes(attribute.Int("batch.lines", len(req.Lines)))

	evaluator := rpn.New(false)
	resp := BatchResponse{Results: make([]LineResult, 0, len(req.Lines))}

	for i, line := range req.Lines {
		tokens := len(rpn.Tokens(line))

		lineCtx, lineSpan := tracer.Start(ctx, fmt.Sprintf("calculator.batch.line.%d", i+1),
			trace.WithAttributes(
				attribute.Int("batch.line", i+1),
				attribute.String("rpn.formula", line),
				attribute.Int("rpn.tokens", tokens),
			),
		)

		result, elapsed, err := evaluate(lineCtx, evaluator, line, tokens)
		if err != nil {
			kind := rpn.KindName(err)

			lineSpan.RecordError(err)
			lineSpan.SetStatus(codes.Error, err.Error())
			lineSpan.End()

			errorCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", "batch"),
				attribute.String("kind", kind),
			))

			logger.Info("batch line rejected",
				zap.Int("line", i+1),
				zap.String("kind", kind),
				zap.Error(err),
				zap.String("request_id", requestID),
			)

			resp.Failed++
			resp.Results = append(resp.Results, LineResult{
				Line:     i + 1,
				Error:    err.Error(),
				Kind:     kind,
				Position: rpn.PositionOf(err),
			})
			continue
		}

		lineSpan.SetAttributes(attribute.Int("rpn.result", int(result)))
		lineSpan.SetAttributes(attribute.Float64("duration_ms", elapsed))
		lineSpan.SetStatus(codes.Ok, "")
		lineSpan.End()

		resp.Succeeded++
		resp.Results = append(resp.Results, LineResult{
			Line:   i + 1,
			Result: &result,
		})
	}

	if resp.Failed > 0 {
		span.AddEvent("batch.partial_failure", trace.WithAttributes(
			attribute.Int("failed", resp.Failed),
		))
	}
	span.SetAttributes(
		attribute.Int("batch.succeeded", resp.Succeeded),
		attribute.Int("batch.failed", resp.Failed),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("batch evaluated",
		zap.Int("lines", len(req.Lines)),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("failed", resp.Failed),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// evaluate runs one formula and records success metrics. It returns the
// elapsed time in milliseconds.
func evaluate(ctx context.Context, e *rpn.Evaluator, formula string, tokens int) (int32, float64, error) {
	start := time.Now()
	result, err := e.Eval(formula)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		return 0, elapsed, err
	}

	attrs := metric.WithAttributes(attribute.Bool("verbose", e.Verbose()))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	tokenCounter.Add(ctx, int64(tokens), attrs)
	resultGauge.Record(ctx, int64(result), attrs)

	return result, elapsed, nil
}
