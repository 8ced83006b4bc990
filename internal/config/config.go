// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	envServiceName  = "LIBRARY_SERVICE_NAME"
	envLogLevel     = "LIBRARY_LOG_LEVEL"
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config holds the settings shared by the library commands.
type Config struct {
	ServiceName  string
	LogLevel     slog.Level
	OTLPEndpoint string
}

// Load builds a Config from the environment, falling back to defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:  getEnv(envServiceName, "mini-library"),
		OTLPEndpoint: strings.TrimSpace(os.Getenv(envOTLPEndpoint)),
	}

	level := getEnv(envLogLevel, "info")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", envLogLevel, level, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
