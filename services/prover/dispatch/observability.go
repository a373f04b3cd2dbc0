// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/unify"
)

const dispatchTracerName = "prover.dispatch"

// dispatchTracer provides OpenTelemetry tracing for tactic applications.
//
// Thread Safety: Safe for concurrent use.
type dispatchTracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

func newDispatchTracer(logger *slog.Logger, enabled bool) *dispatchTracer {
	return &dispatchTracer{
		tracer:  otel.Tracer(dispatchTracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// startApply starts a span for one top-level tactic application.
func (t *dispatchTracer) startApply(ctx context.Context, g goal.Goal, tac tactic.Tactic) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "prover.apply",
		trace.WithAttributes(
			attribute.String("prover.tactic.kind", string(tac.Kind())),
			attribute.String("prover.tactic", truncateForObs(tac.String(), 100)),
			attribute.String("prover.goal", truncateForObs(g.Statement.String(), 100)),
			attribute.Int("prover.goal.context_size", len(g.Context)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// endApply completes the span with the result.
func (t *dispatchTracer) endApply(span trace.Span, res tactic.Result) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.String("prover.result.kind", string(res.Kind)),
		attribute.String("prover.result.outcome", string(res.Outcome)),
		attribute.Int("prover.result.goals", len(res.Goals)),
		attribute.Int("prover.result.steps", len(res.Steps)),
	)
	if res.Kind == tactic.Error {
		span.SetStatus(codes.Error, res.Message)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// truncateForObs truncates a string for use in span attributes.
func truncateForObs(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// LoggerWithTrace returns a logger with trace context.
//
// Inputs:
//   - ctx: Context that may contain trace information.
//   - logger: Base logger.
//
// Outputs:
//   - *slog.Logger: Logger with trace_id and span_id if available.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

// metrics holds the dispatcher's Prometheus collectors.
type metrics struct {
	applications *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	unifyFailure *prometheus.CounterVec
}

// newMetrics registers the collectors against reg. A nil reg uses a
// private registry so nothing leaks into the process default.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &metrics{
		applications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prover_tactic_applications_total",
			Help: "Total tactic applications by tactic kind and result kind",
		}, []string{"tactic", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prover_tactic_duration_seconds",
			Help:    "Tactic application latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"tactic"}),
		unifyFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prover_unification_failures_total",
			Help: "Unification failures during rule application by failure kind",
		}, []string{"kind"}),
	}
}

func (m *metrics) recordApply(kind tactic.Kind, res tactic.Result, elapsed time.Duration) {
	m.applications.WithLabelValues(string(kind), string(res.Kind)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (m *metrics) recordUnifyFailure(err error) {
	kind := "other"
	switch {
	case errors.Is(err, unify.ErrOccursCheckFailed):
		kind = "occurs_check"
	case errors.Is(err, unify.ErrRelationMismatch):
		kind = "relation_mismatch"
	case errors.Is(err, unify.ErrMismatch):
		kind = "mismatch"
	}
	m.unifyFailure.WithLabelValues(kind).Inc()
}
