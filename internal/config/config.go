// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Signal collector settings.
	CollectorURL    string // Base URL of the signal collector; empty disables delivery.
	CollectorAPIKey string // Bearer token for the collector; empty sends no Authorization header.
	SignalQueueSize int    // Capacity of the in-memory signal queue.

	// Engine settings.
	LatencyBudget time.Duration // Per-run budget for each evaluation engine.
	CheckTimeout  time.Duration // Default per-adapter probe timeout.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64 // Maximum request body size in bytes.
}

// Load reads configuration from environment variables with sensible
// defaults. Malformed values are collected and reported together so one bad
// variable does not hide another.
func Load() (Config, error) {
	var errs []error
	track := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	port, err := envInt("KANSA_PORT", 8080)
	track(err)
	readTimeout, err := envDuration("KANSA_READ_TIMEOUT", 30*time.Second)
	track(err)
	writeTimeout, err := envDuration("KANSA_WRITE_TIMEOUT", 30*time.Second)
	track(err)
	queueSize, err := envInt("KANSA_SIGNAL_QUEUE_SIZE", 100)
	track(err)
	latencyBudget, err := envDuration("KANSA_LATENCY_BUDGET", 1500*time.Millisecond)
	track(err)
	checkTimeout, err := envDuration("KANSA_CHECK_TIMEOUT", 500*time.Millisecond)
	track(err)
	otelInsecure, err := envBool("KANSA_OTEL_INSECURE", false)
	track(err)
	maxBody, err := envInt("KANSA_MAX_REQUEST_BODY_BYTES", 1*1024*1024)
	track(err)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	cfg := Config{
		Port:                port,
		ReadTimeout:         readTimeout,
		WriteTimeout:        writeTimeout,
		CollectorURL:        envStr("KANSA_COLLECTOR_URL", ""),
		CollectorAPIKey:     envStr("KANSA_COLLECTOR_API_KEY", ""),
		SignalQueueSize:     queueSize,
		LatencyBudget:       latencyBudget,
		CheckTimeout:        checkTimeout,
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        otelInsecure,
		ServiceName:         envStr("OTEL_SERVICE_NAME", "kansa"),
		LogLevel:            envStr("KANSA_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(maxBody),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: KANSA_PORT must be between 1 and 65535")
	}
	if c.SignalQueueSize <= 0 {
		return fmt.Errorf("config: KANSA_SIGNAL_QUEUE_SIZE must be positive")
	}
	if c.LatencyBudget <= 0 {
		return fmt.Errorf("config: KANSA_LATENCY_BUDGET must be positive")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("config: KANSA_CHECK_TIMEOUT must be positive")
	}
	if c.CheckTimeout > c.LatencyBudget {
		return fmt.Errorf("config: KANSA_CHECK_TIMEOUT must not exceed KANSA_LATENCY_BUDGET")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: KANSA_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
