// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prover.yaml")
	data := []byte(`
search:
  auto_depth: 5
registry:
  path: /var/lib/prover
observability:
  log_level: debug
server:
  shutdown_timeout: 3s
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.AutoDepth)
	assert.Equal(t, Default().Search.SimplifySteps, cfg.Search.SimplifySteps)
	assert.Equal(t, "/var/lib/prover", cfg.Registry.Path)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.SlogLevel())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prover.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"search": {"simplify_steps": 7}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.SimplifySteps)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prover.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  auto_depth: 5\n"), 0o600))
	t.Setenv("PROVER_AUTO_DEPTH", "9")
	t.Setenv("PROVER_TRACING_ENABLED", "true")
	t.Setenv("PROVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Search.AutoDepth)
	assert.True(t, cfg.Observability.TracingEnabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Empty(t, cfg.Observability.LogDir)
	assert.False(t, cfg.Observability.LogQuiet)

	t.Run("log destinations", func(t *testing.T) {
		t.Setenv("PROVER_LOG_DIR", "/var/log/prover")
		t.Setenv("PROVER_LOG_QUIET", "1")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/log/prover", cfg.Observability.LogDir)
		assert.True(t, cfg.Observability.LogQuiet)
	})
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PROVER_AUTO_DEPTH", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "auto_depth")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"simplify steps", func(c *Config) { c.Search.SimplifySteps = 0 }, "simplify_steps"},
		{"concurrency", func(c *Config) { c.Search.MaxConcurrency = 0 }, "max_concurrency"},
		{"log level", func(c *Config) { c.Observability.LogLevel = "loud" }, "log_level"},
		{"rate limit", func(c *Config) { c.Server.RateLimit = 0 }, "rate_limit"},
		{"rate burst", func(c *Config) { c.Server.RateBurst = 0 }, "rate_burst"},
		{"max sessions", func(c *Config) { c.Server.MaxSessions = 0 }, "max_sessions"},
		{"trace exporter", func(c *Config) { c.Observability.TraceExporter = "zipkin" }, "trace_exporter"},
		{"metric exporter", func(c *Config) { c.Observability.MetricExporter = "statsd" }, "metric_exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestDispatchOptions(t *testing.T) {
	cfg := Default()
	reg := prometheus.NewRegistry()

	opts := cfg.DispatchOptions(nil, reg)
	assert.Equal(t, cfg.Search.AutoDepth, opts.AutoDepth)
	assert.Equal(t, reg, opts.Registerer)

	cfg.Observability.MetricsEnabled = false
	assert.Nil(t, cfg.DispatchOptions(nil, reg).Registerer)
}

func TestRegistryBadgerConfig(t *testing.T) {
	assert.True(t, RegistryConfig{}.BadgerConfig(nil).InMemory)

	bc := RegistryConfig{Path: "/tmp/x", SyncWrites: true}.BadgerConfig(nil)
	assert.False(t, bc.InMemory)
	assert.Equal(t, "/tmp/x", bc.Path)
	assert.True(t, bc.SyncWrites)
}

func TestTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()

	t.Run("defaults disable tracing", func(t *testing.T) {
		tc := Default().Telemetry("1.2.3", reg, nil)
		assert.Equal(t, "none", tc.TraceExporter)
		assert.Equal(t, "prometheus", tc.MetricExporter)
		assert.Equal(t, "1.2.3", tc.ServiceVersion)
		assert.Equal(t, reg, tc.Registerer)
	})

	t.Run("env selects exporters", func(t *testing.T) {
		t.Setenv("PROVER_TRACING_ENABLED", "1")
		t.Setenv("PROVER_TRACE_EXPORTER", "stdout")
		t.Setenv("PROVER_METRICS_ENABLED", "false")
		t.Setenv("PROVER_OTLP_ENDPOINT", "collector:4317")
		cfg, err := Load("")
		require.NoError(t, err)

		tc := cfg.Telemetry("dev", reg, nil)
		assert.Equal(t, "stdout", tc.TraceExporter)
		assert.Equal(t, "none", tc.MetricExporter)
		assert.Equal(t, "collector:4317", tc.OTLPEndpoint)
	})
}
