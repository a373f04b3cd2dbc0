// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// sessionMetrics records session activity as OpenTelemetry instruments.
type sessionMetrics struct {
	steps    metric.Int64Counter
	expanded metric.Int64Histogram
	complete metric.Int64Counter
}

func newSessionMetrics(mp metric.MeterProvider) sessionMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter("prover.session")
	// Instrument errors only occur for invalid names; fall back to no-op
	// instruments returned alongside the error.
	steps, _ := m.Int64Counter("prover.session.steps",
		metric.WithDescription("Tactic results handled by sessions"))
	expanded, _ := m.Int64Histogram("prover.session.expanded_leaves",
		metric.WithDescription("Open leaves evaluated per expansion"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64))
	complete, _ := m.Int64Counter("prover.session.completed",
		metric.WithDescription("Sessions whose root became complete"))
	return sessionMetrics{steps: steps, expanded: expanded, complete: complete}
}

func (m sessionMetrics) recordStep(ctx context.Context, kind string, committed bool) {
	m.steps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", kind),
		attribute.Bool("committed", committed),
	))
}

func (m sessionMetrics) recordExpansion(ctx context.Context, leaves int) {
	m.expanded.Record(ctx, int64(leaves))
}

func (m sessionMetrics) recordComplete(ctx context.Context) {
	m.complete.Add(ctx, 1)
}
