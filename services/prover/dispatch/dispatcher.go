// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dispatch applies tactics to goals.
//
// Every application returns a tactic.Result value and never mutates the
// input goal. A tactic whose expected goal shape is absent answers
// NoChange; a tactic given missing rules, hypotheses or invalid indices
// answers Error with a message naming what was missing. Completion tactics
// close a goal by replacing its statement with ⊤.
//
// The dispatcher holds no proof state. Theorems are read through the
// narrow TheoremSource interface and copied out before any nested tactic
// work, so a registry lock is never held across applications.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// TheoremSource looks up registered theorems.
//
// registry.Store and registry.BadgerStore implement it.
type TheoremSource interface {
	GetTheorem(id string) (registry.Theorem, bool)
	IDs() []string
}

// Options configures a Dispatcher.
type Options struct {
	// Logger for structured logging. nil uses slog.Default().
	Logger *slog.Logger

	// TracingEnabled starts one span per top-level application.
	TracingEnabled bool

	// Registerer receives the dispatcher metrics. nil keeps them private.
	Registerer prometheus.Registerer

	// SimplifySteps bounds Simplify when the tactic sets no MaxSteps.
	SimplifySteps int

	// AutoDepth bounds Auto when the tactic sets no MaxDepth.
	AutoDepth int
}

// DefaultOptions returns the dispatcher defaults.
func DefaultOptions() Options {
	return Options{SimplifySteps: 64, AutoDepth: 3}
}

// Dispatcher maps (goal, tactic) pairs to results.
//
// Thread Safety: Safe for concurrent use. The dispatcher keeps no mutable
// state besides its metrics.
type Dispatcher struct {
	theorems TheoremSource
	opts     Options
	logger   *slog.Logger
	tracer   *dispatchTracer
	metrics  *metrics
}

// New creates a dispatcher.
//
// Inputs:
//   - theorems: Theorem lookup for rule-citing tactics. May be nil, in
//     which case citing a theorem yields an Error result.
//   - opts: Dispatcher options. Zero bounds fall back to DefaultOptions.
//
// Outputs:
//   - *Dispatcher: The dispatcher.
func New(theorems TheoremSource, opts Options) *Dispatcher {
	defaults := DefaultOptions()
	if opts.SimplifySteps <= 0 {
		opts.SimplifySteps = defaults.SimplifySteps
	}
	if opts.AutoDepth <= 0 {
		opts.AutoDepth = defaults.AutoDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		theorems: theorems,
		opts:     opts,
		logger:   logger,
		tracer:   newDispatchTracer(logger, opts.TracingEnabled),
		metrics:  newMetrics(opts.Registerer),
	}
}

// Apply applies t to g.
//
// Description:
//
//	Dispatches on the tactic kind. Macros (search, simplify, auto) run
//	their primitive steps through the same dispatch and only return a
//	result when a full chain succeeded; the primitive steps are listed in
//	Result.Steps.
//
// Inputs:
//   - ctx: Context for tracing.
//   - g: The goal. Not modified.
//   - t: The tactic.
//
// Outputs:
//   - tactic.Result: Always non-zero. For NoChange and Error, Goals holds
//     the input goal.
//
// Thread Safety: Safe for concurrent use.
func (d *Dispatcher) Apply(ctx context.Context, g goal.Goal, t tactic.Tactic) tactic.Result {
	if t == nil {
		return tactic.Failed(g, "%v", ErrUnknownTactic)
	}

	start := time.Now()
	ctx, span := d.tracer.startApply(ctx, g, t)
	res := d.apply(ctx, g, t)
	d.tracer.endApply(span, res)
	d.metrics.recordApply(t.Kind(), res, time.Since(start))

	logger := LoggerWithTrace(ctx, d.logger)
	switch res.Kind {
	case tactic.Error:
		logger.Debug("tactic failed",
			slog.String("tactic", t.String()),
			slog.String("message", res.Message),
		)
	default:
		logger.Debug("tactic applied",
			slog.String("tactic", t.String()),
			slog.String("result", string(res.Kind)),
			slog.Int("goals", len(res.Goals)),
			slog.String("outcome", string(res.Outcome)),
		)
	}
	return res
}

func (d *Dispatcher) apply(ctx context.Context, g goal.Goal, t tactic.Tactic) tactic.Result {
	switch x := t.(type) {
	case tactic.AssumeAntecedent:
		return d.assumeAntecedent(g, x)
	case tactic.IntroduceVariable:
		return d.introduceVariable(g, x)
	case tactic.SplitConjunction:
		return d.splitConjunction(g, x)
	case tactic.SplitDisjunction:
		return d.splitDisjunction(g, x)
	case tactic.ProvideWitness:
		return d.provideWitness(g, x)
	case tactic.CaseAnalysis:
		return d.caseAnalysis(g, x)
	case tactic.Induction:
		return d.induction(g, x)
	case tactic.SplitHypothesisConjunction:
		return d.splitHypothesisConjunction(g, x)
	case tactic.SplitHypothesisDisjunction:
		return d.splitHypothesisDisjunction(g, x)
	case tactic.ExactHypothesis:
		return d.exactHypothesis(g, x)
	case tactic.Reflexivity:
		return d.reflexivity(g, x)
	case tactic.Contradiction:
		return d.contradiction(g, x)
	case tactic.ContradictHypothesis:
		return d.contradictHypothesis(g, x)
	case tactic.Rewrite:
		return d.rewrite(g, x)
	case tactic.UnfoldDefinition:
		return d.unfoldDefinition(g, x)
	case tactic.IntroduceLet:
		return d.introduceLet(g, x)
	case tactic.RenameBound:
		return d.renameBound(g, x)
	case tactic.RevertHypothesis:
		return d.revertHypothesis(g, x)
	case tactic.SearchAssumptions:
		return d.searchAssumptions(ctx, g)
	case tactic.SearchTheorems:
		return d.searchTheorems(g, x)
	case tactic.Search:
		return d.search(ctx, g, x)
	case tactic.Simplify:
		return d.simplify(ctx, g, x)
	case tactic.Auto:
		return d.auto(ctx, g, x)
	case tactic.DisproveByTheorem:
		return d.disproveByTheorem(g, x)
	}
	return d.fail(g, t.Kind(), "dispatch", fmt.Errorf("%w: %T", ErrUnknownTactic, t))
}

// fail builds an Error result for a failed operation of kind.
func (d *Dispatcher) fail(g goal.Goal, kind tactic.Kind, op string, err error) tactic.Result {
	terr := newTacticError(kind, op, err)
	return tactic.Failed(g, "%s", terr.Error())
}

// -----------------------------------------------------------------------------
// Shared helpers
// -----------------------------------------------------------------------------

// closed returns g with its statement replaced by ⊤ in the same slot.
func closed(g goal.Goal) goal.Goal {
	return g.WithStatement(term.At[term.Relation](g.Statement.Addr, term.True{}))
}

// statementAs returns the statement's payload as type T.
func statementAs[T term.Relation](g goal.Goal) (T, bool) {
	var zero T
	v, ok := g.Statement.ConcreteValue()
	if !ok {
		return zero, false
	}
	x, ok := v.(T)
	if !ok {
		return zero, false
	}
	return x, true
}

// relationAs returns r's payload as type T.
func relationAs[T term.Relation](r term.Rel) (T, bool) {
	var zero T
	v, ok := r.ConcreteValue()
	if !ok {
		return zero, false
	}
	x, ok := v.(T)
	return x, ok
}

// hypothesis looks up the relation of the named hypothesis.
func hypothesis(g goal.Goal, id term.Identifier) (term.Rel, int, error) {
	e, i, ok := g.Context.Lookup(id)
	if !ok {
		return term.Rel{}, -1, fmt.Errorf("%w: %s", ErrHypothesisNotFound, id)
	}
	r, ok := e.Relation()
	if !ok {
		return term.Rel{}, -1, fmt.Errorf("%w: %s", ErrNotHypothesis, id)
	}
	return r, i, nil
}

// nameFor returns the identifier for a new context entry: the requested
// name when given and free, otherwise a fresh name based on base.
func nameFor(g goal.Goal, requested, base string, reserved ...term.Identifier) (term.Identifier, error) {
	if requested == "" {
		return g.Context.FreshName(base, append(reserved, quantified(g)...)...), nil
	}
	id := term.Ident(requested)
	if g.Binds(id) {
		return id, fmt.Errorf("%w: %s", goal.ErrDuplicateName, id)
	}
	for _, r := range reserved {
		if r == id {
			return id, fmt.Errorf("%w: %s", goal.ErrDuplicateName, id)
		}
	}
	return id, nil
}

func quantified(g goal.Goal) []term.Identifier {
	out := make([]term.Identifier, len(g.Quantifiers))
	for i, q := range g.Quantifiers {
		out[i] = q.Variable
	}
	return out
}

// checkBound verifies every free identifier of e is bound in g.
func checkBound(g goal.Goal, e term.Expr) error {
	for _, id := range term.CollectExpr(e).Vars {
		if !g.Binds(id) {
			return fmt.Errorf("%w: %s", goal.ErrUnboundIdentifier, id)
		}
	}
	return nil
}

var errCancelled = errors.New("search cancelled")
