// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Budget windows accepted by BUDGET_WINDOW.
const (
	BudgetWindowAllTime = "all-time"
	BudgetWindowMonth   = "month"
)

// Telemetry exporters accepted by OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL          string
	ListenAddr           string
	LogLevel             string
	LogFormat            string
	SecureCookie         bool
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	Timezone             string
	Location             *time.Location
	BudgetWindow         string
	OTelExporter         string
	ServiceName          string

	// parseErrs holds values that were set but could not be parsed.
	parseErrs []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
		SecureCookie: os.Getenv("SECURE_COOKIE") == "true",
		Timezone:     getEnv("TIMEZONE", "Local"),
		BudgetWindow: getEnv("BUDGET_WINDOW", BudgetWindowAllTime),
		OTelExporter: getEnv("OTEL_EXPORTER", ExporterNone),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "expense-web"),
	}
	cfg.SessionTTL = cfg.envDuration("SESSION_TTL", 30*24*time.Hour)
	cfg.SessionSweepInterval = cfg.envDuration("SESSION_SWEEP_INTERVAL", time.Hour)

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and resolves
// the timezone.
func (c *Config) validate() error {
	errs := slices.Clone(c.parseErrs)

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEZONE %q: %v", c.Timezone, err))
	} else {
		c.Location = loc
	}

	if !slices.Contains([]string{BudgetWindowAllTime, BudgetWindowMonth}, c.BudgetWindow) {
		errs = append(errs, fmt.Sprintf("invalid BUDGET_WINDOW %q: must be %q or %q",
			c.BudgetWindow, BudgetWindowAllTime, BudgetWindowMonth))
	}

	validExporters := []string{ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP}
	if !slices.Contains(validExporters, c.OTelExporter) {
		errs = append(errs, fmt.Sprintf("invalid OTEL_EXPORTER %q: must be one of %v", c.OTelExporter, validExporters))
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT %q: must be console or json", c.LogFormat))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid SESSION_TTL %v: must be at least 1m", c.SessionTTL))
	}

	if c.SessionSweepInterval <= 0 {
		errs = append(errs, "SESSION_SWEEP_INTERVAL must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) envDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Sprintf("invalid %s %q: %v", key, value, err))
		return defaultValue
	}
	return d
}
