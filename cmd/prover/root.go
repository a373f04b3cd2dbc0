// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Turnersoft/turn-formal-sub002/pkg/logging"
	"github.com/Turnersoft/turn-formal-sub002/services/prover"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/config"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/telemetry"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonLogs   bool
	logDir     string
	trace      bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "prover",
		Short: "Check proof scripts and serve interactive proof sessions",
		Long: `prover replays tactic proof scripts against a theorem registry and
exposes proof sessions over an HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Write logs as JSON")
	flags.StringVar(&opts.logDir, "log-dir", "", "Also write JSON logs to a daily file in this directory")
	flags.BoolVar(&opts.trace, "trace", false, "Enable tracing with the configured exporter")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")

	cmd.AddCommand(newCheckCmd(opts), newWatchCmd(opts), newServeCmd(opts))
	return cmd
}

// app is the process-wide state assembled from configuration.
type app struct {
	cfg    config.Config
	logs   *logging.Logger
	logger *slog.Logger
	reg    *prometheus.Registry

	lib        prover.Library
	dispatcher *dispatch.Dispatcher

	closers []func(context.Context) error
}

// bootstrap loads configuration and wires logging, telemetry, the theorem
// registry and the dispatcher.
//
// Inputs:
//   - ctx: Context for exporter start-up.
//   - opts: Persistent flags; they override file and environment values.
//   - logOut: Console destination for logs and stdout exporters.
//   - persistent: Open the configured BadgerDB registry instead of an
//     in-memory store.
//
// Outputs:
//   - *app: Must be closed with close.
//   - error: Non-nil if configuration or any component fails.
func bootstrap(ctx context.Context, opts *rootOptions, logOut io.Writer, persistent bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Observability.LogLevel = opts.logLevel
	}
	if opts.jsonLogs {
		cfg.Observability.LogJSON = true
	}
	if opts.logDir != "" {
		cfg.Observability.LogDir = opts.logDir
	}
	if opts.trace {
		cfg.Observability.TracingEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return nil, err
	}
	logs := logging.New(logging.Config{
		Level:   level,
		Service: cfg.Observability.ServiceName,
		JSON:    cfg.Observability.LogJSON,
		LogDir:  cfg.Observability.LogDir,
		Quiet:   cfg.Observability.LogQuiet,
		Writer:  logOut,
	})
	a := &app{
		cfg:    cfg,
		logs:   logs,
		logger: logs.Slog(),
		reg:    prometheus.NewRegistry(),
	}
	a.closers = append(a.closers, func(context.Context) error { return logs.Close() })
	slog.SetDefault(a.logger)
	if dir := cfg.Observability.LogDir; dir != "" {
		if path := logs.FilePath(); path != "" {
			a.logger.Debug("logging to file", slog.String("path", path))
		} else {
			a.logger.Warn("log directory unavailable, file logging disabled", slog.String("dir", dir))
		}
	}

	a.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry(prover.ServiceVersion, a.reg, logOut))
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	if persistent {
		store, err := registry.OpenBadger(cfg.Registry.BadgerConfig(a.logger))
		if err != nil {
			_ = a.close(ctx)
			return nil, fmt.Errorf("open registry: %w", err)
		}
		a.lib = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	} else {
		a.lib = registry.NewStore()
	}

	a.dispatcher = dispatch.New(a.lib, cfg.DispatchOptions(a.logger, a.reg))
	a.logger.Debug("prover initialized",
		slog.String("registry_path", cfg.Registry.Path),
		slog.Bool("persistent", persistent),
		slog.Int("theorems", a.lib.Len()))
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
