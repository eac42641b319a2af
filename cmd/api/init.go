package main

import (
	"context"

	"circuit-calculator/internal/calculator"
	"circuit-calculator/internal/observability"
)

// initMetrics initialises the meter provider and every domain's metric
// instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context, cfg config) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, cfg.OTLPEnabled)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initTelemetry starts tracing and OTLP log export when enabled. The
// returned func shuts both down.
func initTelemetry(ctx context.Context, cfg config) (func(context.Context) error, error) {
	if !cfg.OTLPEnabled {
		return func(context.Context) error { return nil }, nil
	}

	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		return nil, err
	}

	logShutdown, err := observability.InitLogging(ctx)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		logErr := logShutdown(ctx)
		if err := traceShutdown(ctx); err != nil {
			return err
		}
		return logErr
	}, nil
}
