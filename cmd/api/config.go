package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// config is read from the environment once at startup.
type config struct {
	Addr            string
	ShutdownTimeout time.Duration
	LogLevel        string
	OTLPEnabled     bool
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		OTLPEnabled:     true,
	}

	if v := strings.TrimSpace(getenv("CIRCUIT_HTTP_ADDR")); v != "" {
		cfg.Addr = v
	}

	if v := strings.TrimSpace(getenv("CIRCUIT_SHUTDOWN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return config{}, fmt.Errorf("CIRCUIT_SHUTDOWN_TIMEOUT: invalid duration %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	if v := strings.TrimSpace(getenv("CIRCUIT_LOG_LEVEL")); v != "" {
		switch v = strings.ToLower(v); v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return config{}, fmt.Errorf("CIRCUIT_LOG_LEVEL: must be debug, info, warn or error, got %q", v)
		}
	}

	if v := strings.TrimSpace(getenv("CIRCUIT_OTLP_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, fmt.Errorf("CIRCUIT_OTLP_ENABLED: %w", err)
		}
		cfg.OTLPEnabled = b
	}

	return cfg, nil
}

func loadConfigFromEnv() (config, error) {
	return loadConfig(os.Getenv)
}
