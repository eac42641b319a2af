package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs.
var (
	solveCounter     metric.Int64Counter     = noop.Int64Counter{}
	solveHistogram   metric.Float64Histogram = noop.Float64Histogram{}
	errorCounter     metric.Int64Counter     = noop.Int64Counter{}
	currentHistogram metric.Float64Histogram = noop.Float64Histogram{}
	powerGauge       metric.Float64Gauge     = noop.Float64Gauge{}
)

// InitMetrics registers the circuit instruments on the global meter provider.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	solveCounter, err = meter.Int64Counter("circuit.solves.total",
		metric.WithDescription("Total number of circuits solved"),
		metric.WithUnit("{circuit}"),
	)
	if err != nil {
		return fmt.Errorf("creating solve counter: %w", err)
	}

	solveHistogram, err = meter.Float64Histogram("circuit.solve.duration",
		metric.WithDescription("Duration of circuit computations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return fmt.Errorf("creating solve histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("circuit.errors.total",
		metric.WithDescription("Total number of rejected circuit requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	currentHistogram, err = meter.Float64Histogram("circuit.total_current",
		metric.WithDescription("Total current of solved circuits"),
		metric.WithUnit("A"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating current histogram: %w", err)
	}

	powerGauge, err = meter.Float64Gauge("circuit.total_power",
		metric.WithDescription("Total power of the last solved circuit"),
		metric.WithUnit("W"),
	)
	if err != nil {
		return fmt.Errorf("creating power gauge: %w", err)
	}

	return nil
}
