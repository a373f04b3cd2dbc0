// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads prover configuration from defaults, a YAML or JSON
// file and PROVER_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/telemetry"
)

// Config contains all prover configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Search bounds the automated tactics.
	Search SearchConfig `json:"search" yaml:"search"`

	// Registry configures theorem persistence.
	Registry RegistryConfig `json:"registry" yaml:"registry"`

	// Observability contains logging, tracing and metrics settings.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`

	// Server configures the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`
}

// SearchConfig contains bounds for macros and parallel expansion.
type SearchConfig struct {
	SimplifySteps  int `json:"simplify_steps" yaml:"simplify_steps"`
	AutoDepth      int `json:"auto_depth" yaml:"auto_depth"`
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
}

// RegistryConfig contains theorem registry settings.
type RegistryConfig struct {
	// Path is the BadgerDB directory. Empty keeps theorems in memory only.
	Path       string `json:"path" yaml:"path"`
	SyncWrites bool   `json:"sync_writes" yaml:"sync_writes"`
}

// ObservabilityConfig contains observability settings.
type ObservabilityConfig struct {
	TracingEnabled bool   `json:"tracing_enabled" yaml:"tracing_enabled"`
	MetricsEnabled bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
	LogJSON        bool   `json:"log_json" yaml:"log_json"`

	// LogDir adds a daily JSON log file in this directory. Empty disables it.
	LogDir string `json:"log_dir" yaml:"log_dir"`

	// LogQuiet drops console logging; records still reach LogDir.
	LogQuiet bool `json:"log_quiet" yaml:"log_quiet"`

	ServiceName    string `json:"service_name" yaml:"service_name"`
	Environment    string `json:"environment" yaml:"environment"`

	// TraceExporter is "otlp" or "stdout"; used when tracing is enabled.
	TraceExporter string `json:"trace_exporter" yaml:"trace_exporter"`

	// MetricExporter is "prometheus" or "stdout"; used when metrics are
	// enabled.
	MetricExporter string `json:"metric_exporter" yaml:"metric_exporter"`

	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure bool   `json:"otlp_insecure" yaml:"otlp_insecure"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	RateLimit       float64       `json:"rate_limit" yaml:"rate_limit"`
	RateBurst       int           `json:"rate_burst" yaml:"rate_burst"`
	MaxSessions     int           `json:"max_sessions" yaml:"max_sessions"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns the default configuration.
//
// Outputs:
//   - Config: Default configuration with sensible values.
func Default() Config {
	opts := dispatch.DefaultOptions()
	return Config{
		Search: SearchConfig{
			SimplifySteps:  opts.SimplifySteps,
			AutoDepth:      opts.AutoDepth,
			MaxConcurrency: 4,
		},
		Registry: RegistryConfig{
			SyncWrites: true,
		},
		Observability: ObservabilityConfig{
			TracingEnabled: false,
			MetricsEnabled: true,
			LogLevel:       "info",
			ServiceName:    "prover",
			Environment:    "development",
			TraceExporter:  "otlp",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
		Server: ServerConfig{
			Addr:            ":8090",
			RateLimit:       50,
			RateBurst:       100,
			MaxSessions:     256,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - configPath: Path to YAML/JSON config file (optional, can be empty).
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if file exists but is invalid, or validation fails.
func Load(configPath string) (Config, error) {
	config := Default()

	if configPath != "" {
		if err := loadFile(configPath, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadFromEnv(config *Config) {
	// Search
	if v := os.Getenv("PROVER_SIMPLIFY_STEPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.SimplifySteps = i
		}
	}
	if v := os.Getenv("PROVER_AUTO_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.AutoDepth = i
		}
	}
	if v := os.Getenv("PROVER_MAX_CONCURRENCY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.MaxConcurrency = i
		}
	}

	// Registry
	if v := os.Getenv("PROVER_REGISTRY_PATH"); v != "" {
		config.Registry.Path = v
	}
	if v := os.Getenv("PROVER_REGISTRY_SYNC_WRITES"); v != "" {
		config.Registry.SyncWrites = v == "true" || v == "1"
	}

	// Observability
	if v := os.Getenv("PROVER_TRACING_ENABLED"); v != "" {
		config.Observability.TracingEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PROVER_METRICS_ENABLED"); v != "" {
		config.Observability.MetricsEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PROVER_LOG_LEVEL"); v != "" {
		config.Observability.LogLevel = v
	}
	if v := os.Getenv("PROVER_LOG_JSON"); v != "" {
		config.Observability.LogJSON = v == "true" || v == "1"
	}
	if v := os.Getenv("PROVER_LOG_DIR"); v != "" {
		config.Observability.LogDir = v
	}
	if v := os.Getenv("PROVER_LOG_QUIET"); v != "" {
		config.Observability.LogQuiet = v == "true" || v == "1"
	}
	if v := os.Getenv("PROVER_ENVIRONMENT"); v != "" {
		config.Observability.Environment = v
	}
	if v := os.Getenv("PROVER_TRACE_EXPORTER"); v != "" {
		config.Observability.TraceExporter = v
	}
	if v := os.Getenv("PROVER_METRIC_EXPORTER"); v != "" {
		config.Observability.MetricExporter = v
	}
	if v := os.Getenv("PROVER_OTLP_ENDPOINT"); v != "" {
		config.Observability.OTLPEndpoint = v
	}

	// Server
	if v := os.Getenv("PROVER_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("PROVER_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Server.RateLimit = f
		}
	}
	if v := os.Getenv("PROVER_RATE_BURST"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Server.RateBurst = i
		}
	}
	if v := os.Getenv("PROVER_MAX_SESSIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Server.MaxSessions = i
		}
	}
}

// Validate checks that the configuration is valid.
//
// Outputs:
//   - error: Non-nil if configuration is invalid.
func (c Config) Validate() error {
	if c.Search.SimplifySteps < 1 {
		return fmt.Errorf("simplify_steps must be >= 1")
	}
	if c.Search.AutoDepth < 1 {
		return fmt.Errorf("auto_depth must be >= 1")
	}
	if c.Search.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1")
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	switch c.Observability.TraceExporter {
	case "otlp", "stdout":
	default:
		return fmt.Errorf("trace_exporter must be otlp or stdout")
	}
	switch c.Observability.MetricExporter {
	case "prometheus", "stdout":
	default:
		return fmt.Errorf("metric_exporter must be prometheus or stdout")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be > 0")
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be >= 1")
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be >= 1")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DispatchOptions converts the configuration to dispatcher options.
//
// Inputs:
//   - logger: Logger for the dispatcher.
//   - reg: Metrics registerer. Ignored when metrics are disabled.
//
// Outputs:
//   - dispatch.Options: The dispatcher options.
func (c Config) DispatchOptions(logger *slog.Logger, reg prometheus.Registerer) dispatch.Options {
	if !c.Observability.MetricsEnabled {
		reg = nil
	}
	return dispatch.Options{
		Logger:         logger,
		TracingEnabled: c.Observability.TracingEnabled,
		Registerer:     reg,
		SimplifySteps:  c.Search.SimplifySteps,
		AutoDepth:      c.Search.AutoDepth,
	}
}

// Telemetry converts the observability settings to a telemetry
// configuration. Disabled signals get the "none" exporter.
//
// Inputs:
//   - version: The service version reported in the resource.
//   - reg: Registerer for the Prometheus metric exporter.
//   - w: Destination of stdout exporters. Nil means os.Stdout.
func (c Config) Telemetry(version string, reg prometheus.Registerer, w io.Writer) telemetry.Config {
	o := c.Observability
	cfg := telemetry.Config{
		ServiceName:    o.ServiceName,
		ServiceVersion: version,
		Environment:    o.Environment,
		TraceExporter:  "none",
		MetricExporter: "none",
		OTLPEndpoint:   o.OTLPEndpoint,
		OTLPInsecure:   o.OTLPInsecure,
		Registerer:     reg,
		Writer:         w,
	}
	if o.TracingEnabled {
		cfg.TraceExporter = o.TraceExporter
	}
	if o.MetricsEnabled {
		cfg.MetricExporter = o.MetricExporter
	}
	return cfg
}

// BadgerConfig converts the registry settings to a BadgerDB configuration.
// An empty path yields an in-memory database.
func (c RegistryConfig) BadgerConfig(logger *slog.Logger) registry.BadgerConfig {
	if c.Path == "" {
		cfg := registry.InMemoryBadgerConfig()
		cfg.Logger = logger
		return cfg
	}
	return registry.BadgerConfig{Path: c.Path, SyncWrites: c.SyncWrites, Logger: logger}
}
