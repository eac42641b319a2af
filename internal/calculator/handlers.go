package calculator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"circuit-calculator/internal/circuit"
	"circuit-calculator/internal/form"
	"circuit-calculator/internal/handlers"
	"circuit-calculator/internal/observability"
	"circuit-calculator/internal/report"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// ---------------------------------------------------------------------------
// Handlers: single circuit
// ---------------------------------------------------------------------------

// Solve handles POST /circuit/solve
func Solve(w http.ResponseWriter, r *http.Request) {
	handleCircuit(w, r, "solve", func(w http.ResponseWriter, req SolveRequest, res circuit.Result) error {
		handlers.WriteJSON(w, http.StatusOK, SolveResponse{Name: req.Name, Result: res})
		return nil
	})
}

// Report handles POST /circuit/report/{view} and answers with one of the
// plain-text report views.
func Report(w http.ResponseWriter, r *http.Request) {
	view, err := report.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		rejectRequest(w, r, "report", err.Error(), err, http.StatusBadRequest)
		return
	}

	handleCircuit(w, r, "report."+string(view), func(w http.ResponseWriter, _ SolveRequest, res circuit.Result) error {
		var buf bytes.Buffer
		if err := report.Render(&buf, view, res); err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return nil
	})
}

// Chart handles POST /circuit/chart?quantity=power&format=svg
func Chart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quantity, err := report.ParseQuantity(q.Get("quantity"))
	if err != nil {
		rejectRequest(w, r, "chart", err.Error(), err, http.StatusBadRequest)
		return
	}
	format, err := report.ParseChartFormat(q.Get("format"))
	if err != nil {
		rejectRequest(w, r, "chart", err.Error(), err, http.StatusBadRequest)
		return
	}

	handleCircuit(w, r, "chart", func(w http.ResponseWriter, _ SolveRequest, res circuit.Result) error {
		var buf bytes.Buffer
		if err := report.Chart(&buf, report.ChartSpec{Quantity: quantity, Format: format}, res); err != nil {
			return err
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return nil
	})
}

// handleCircuit is the shared implementation for every single-circuit
// endpoint: decode, parse, solve, then hand the result to respond.
func handleCircuit(w http.ResponseWriter, r *http.Request, opName string, respond func(http.ResponseWriter, SolveRequest, circuit.Result) error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("circuit.%s", opName),
		trace.WithAttributes(
			attribute.String("circuit.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	req, err := handlers.Decode[SolveRequest](w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Operation: opName,
			Msg:       "invalid request body",
			Err:       err,
			Status:    http.StatusBadRequest,
		}, w)
		return
	}

	res, err := solve(ctx, req.Name, req.Fields)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, failureFor(opName, err), w)
		return
	}

	if err := respond(w, req, res); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Operation: opName,
			Msg:       "rendering response failed",
			Err:       err,
			Status:    http.StatusInternalServerError,
		}, w)
		return
	}

	span.SetStatus(codes.Ok, "")
}

// ---------------------------------------------------------------------------
// Handler: batch, one child span per circuit
// ---------------------------------------------------------------------------

// Batch handles POST /circuit/batch. Every circuit is solved independently
// in its own child span; a rejected circuit does not fail the batch.
func Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "circuit.batch",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	req, err := handlers.Decode[BatchRequest](w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Operation: "batch",
			Msg:       "invalid request body",
			Err:       err,
			Status:    http.StatusBadRequest,
		}, w)
		return
	}

	if n := len(req.Circuits); n == 0 || n > maxBatchSize {
		msg := fmt.Sprintf("batch must contain between 1 and %d circuits", maxBatchSize)
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Operation: "batch",
			Msg:       msg,
			Err:       fmt.Errorf("got %d circuits", n),
			Status:    http.StatusBadRequest,
		}, w)
		return
	}

	span.SetAttributes(attribute.Int("batch.size", len(req.Circuits)))

	resp := BatchResponse{Items: make([]BatchItem, 0, len(req.Circuits))}
	for i, c := range req.Circuits {
		item := BatchItem{Index: i, Name: c.Name}

		res, err := solve(ctx, c.Name, c.Fields)
		if err != nil {
			f := failureFor("batch", err)
			errorCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", "batch"),
				attribute.String("kind", f.Kind),
			))
			item.Error, item.Kind = f.Msg, f.Kind
			resp.Failed++

			logger.Info("batch circuit rejected",
				zap.Int("index", i),
				zap.String("name", c.Name),
				zap.String("kind", f.Kind),
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		} else {
			item.Result = &res
			resp.Solved++
		}

		resp.Items = append(resp.Items, item)
	}

	span.AddEvent("batch.complete", trace.WithAttributes(
		attribute.Int("batch.solved", resp.Solved),
		attribute.Int("batch.failed", resp.Failed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("batch completed",
		zap.Int("circuits", len(req.Circuits)),
		zap.Int("solved", resp.Solved),
		zap.Int("failed", resp.Failed),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Shared solving
// ---------------------------------------------------------------------------

// solve parses and solves one circuit inside a circuit.solve span, recording
// metrics and a trace-correlated log line on success.
func solve(ctx context.Context, name string, fields form.Fields) (circuit.Result, error) {
	ctx, span := tracer.Start(ctx, "circuit.solve")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if name != "" {
		span.SetAttributes(attribute.String("circuit.name", name))
	}

	in, err := form.Parse(fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return circuit.Result{}, err
	}

	span.SetAttributes(
		attribute.String("circuit.topology", in.Topology.String()),
		attribute.String("circuit.input_mode", in.Mode.String()),
		attribute.Int("circuit.resistors", len(in.Resistors)),
	)

	start := time.Now()
	res, err := circuit.Solve(in)
	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6 // ms

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return circuit.Result{}, err
	}

	attrs := metric.WithAttributes(
		attribute.String("topology", res.Topology.String()),
		attribute.String("input_mode", res.InputMode.String()),
	)
	solveCounter.Add(ctx, 1, attrs)
	solveHistogram.Record(ctx, elapsed, attrs)
	currentHistogram.Record(ctx, res.TotalCurrent, attrs)
	powerGauge.Record(ctx, res.TotalPower, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("equivalent_resistance", res.EquivalentResistance),
		attribute.Float64("total_current", res.TotalCurrent),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(
		attribute.Float64("circuit.total_voltage", res.TotalVoltage),
		attribute.Float64("circuit.total_current", res.TotalCurrent),
		attribute.Float64("circuit.total_power", res.TotalPower),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("circuit solved",
		zap.String("name", name),
		zap.String("topology", res.Topology.String()),
		zap.String("input_mode", res.InputMode.String()),
		zap.Int("resistors", len(res.Resistors)),
		zap.Float64("equivalent_resistance", res.EquivalentResistance),
		zap.Float64("total_voltage", res.TotalVoltage),
		zap.Float64("total_current", res.TotalCurrent),
		zap.Float64("total_power", res.TotalPower),
		zap.Float64("duration_ms", elapsed),
	)

	return res, nil
}

// failureFor maps parse and validation errors to their HTTP shape.
func failureFor(opName string, err error) observability.Failure {
	var perr *form.ParseError
	var verr *circuit.ValidationError

	switch {
	case errors.As(err, &perr):
		return observability.Failure{
			Operation: opName,
			Kind:      "parse_error",
			Msg:       perr.Error(),
			Err:       err,
			Status:    http.StatusBadRequest,
		}
	case errors.As(err, &verr):
		return observability.Failure{
			Operation: opName,
			Kind:      verr.Code(),
			Msg:       verr.Error(),
			Err:       err,
			Status:    http.StatusUnprocessableEntity,
		}
	default:
		return observability.Failure{
			Operation: opName,
			Msg:       "internal error",
			Err:       err,
			Status:    http.StatusInternalServerError,
		}
	}
}

// rejectRequest records a failure detected before any span-worthy work, such
// as an unknown report view in the URL.
func rejectRequest(w http.ResponseWriter, r *http.Request, opName, msg string, err error, status int) {
	ctx := r.Context()
	observability.RecordError(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), errorCounter, observability.Failure{
		Operation: opName,
		Msg:       msg,
		Err:       err,
		Status:    status,
	}, w)
}
