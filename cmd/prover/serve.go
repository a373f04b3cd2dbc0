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
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Turnersoft/turn-formal-sub002/services/prover"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve proof sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, opts, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding the configured one")
	return cmd
}

// newServer builds the HTTP server for the prover API.
func newServer(a *app) *http.Server {
	if a.cfg.Observability.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := prover.NewService(a.lib, a.dispatcher, prover.ServiceConfig{
		MaxSessions:    a.cfg.Server.MaxSessions,
		MaxConcurrency: a.cfg.Search.MaxConcurrency,
		Logger:         a.logger,
	})
	rc := prover.RouterConfig{
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
		Logger:    a.logger,
	}
	if a.cfg.Observability.MetricsEnabled {
		rc.Gatherer = a.reg
	}
	if a.cfg.Observability.TracingEnabled {
		rc.ServiceName = a.cfg.Observability.ServiceName
	}

	return &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: prover.NewRouter(prover.NewHandlers(svc), rc),
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func serve(ctx context.Context, a *app) error {
	srv := newServer(a)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting prover server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down prover server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
