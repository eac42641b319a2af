package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadDotEnv loads environment variables from CIRCUIT_ENV_FILE, or .env,
// when the file exists. Variables already set in the process win.
func loadDotEnv() error {
	path := os.Getenv("CIRCUIT_ENV_FILE")
	if path == "" {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) && path == defaultEnvFile {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
