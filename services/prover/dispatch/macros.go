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
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/unify"
)

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

func (d *Dispatcher) searchAssumptions(ctx context.Context, g goal.Goal) tactic.Result {
	for _, e := range g.Context {
		if _, ok := e.Relation(); !ok {
			continue
		}
		step := tactic.ExactHypothesis{Hypothesis: e.Name}
		if res := d.apply(ctx, g, step); res.Succeeded() {
			res.Steps = []tactic.Tactic{step}
			return res
		}
	}
	return tactic.Unchanged(g, "no hypothesis matches the goal")
}

func (d *Dispatcher) searchTheorems(g goal.Goal, t tactic.SearchTheorems) tactic.Result {
	ids := t.TheoremIDs
	if len(ids) == 0 {
		if d.theorems == nil {
			return tactic.Unchanged(g, "no theorem registry configured")
		}
		ids = d.theorems.IDs()
	}

	for _, id := range ids {
		r, err := d.resolveRule(g, tactic.FromTheorem(id), nil)
		if err != nil {
			if len(t.TheoremIDs) > 0 {
				return d.fail(g, t.Kind(), "resolve rule", err)
			}
			continue
		}
		m := unify.NewMapping()
		if err := unify.UnifyRelations(r.statement, g.Statement, m); err != nil {
			d.metrics.recordUnifyFailure(err)
			continue
		}
		if !d.conditionsHold(g, r, m) {
			continue
		}
		res := tactic.Single(closed(g), fmt.Sprintf("by %s", r.source))
		res.Steps = []tactic.Tactic{tactic.SearchTheorems{TheoremIDs: []string{id}}}
		return res
	}
	return tactic.Unchanged(g, "no theorem matches the goal")
}

// conditionsHold reports whether every side condition of r, instantiated
// by m, is a hypothesis of g.
func (d *Dispatcher) conditionsHold(g goal.Goal, r rule, m *unify.Mapping) bool {
	conditions, err := r.instantiateConditions(m.Resolve())
	if err != nil {
		return false
	}
	for _, c := range conditions {
		found := false
		for _, e := range g.Context {
			if h, ok := e.Relation(); ok && term.EqualRel(h, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (d *Dispatcher) search(ctx context.Context, g goal.Goal, t tactic.Search) tactic.Result {
	if res := d.searchAssumptions(ctx, g); res.Succeeded() {
		return res
	}
	if res := d.searchTheorems(g, tactic.SearchTheorems{TheoremIDs: t.TheoremIDs}); res.Kind != tactic.NoChange {
		return res
	}
	return tactic.Unchanged(g, "search found nothing")
}

// -----------------------------------------------------------------------------
// Simplify
// -----------------------------------------------------------------------------

func (d *Dispatcher) simplify(ctx context.Context, g goal.Goal, t tactic.Simplify) tactic.Result {
	if len(t.Rules) == 0 {
		return d.fail(g, t.Kind(), "arguments", fmt.Errorf("%w: no rules", ErrInvalidArgument))
	}
	limit := t.MaxSteps
	if limit <= 0 {
		limit = d.opts.SimplifySteps
	}

	current := g
	var steps []tactic.Tactic
	for len(steps) < limit && !current.IsClosed() {
		progressed := false
		for _, src := range t.Rules {
			step := tactic.Rewrite{Rule: src, Direction: tactic.Forward, Target: goal.StatementTarget()}
			res := d.apply(ctx, current, step)
			if res.Kind != tactic.SingleGoal {
				continue
			}
			current = res.Goal()
			steps = append(steps, step)
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}

	if eq, ok := statementAs[term.Equal](current); ok && term.EqualExpr(eq.Left, eq.Right) {
		current = closed(current)
		steps = append(steps, tactic.Reflexivity{})
	}
	if len(steps) == 0 {
		return tactic.Unchanged(g, "no rule applies")
	}
	res := tactic.Single(current, fmt.Sprintf("simplify in %d steps", len(steps)))
	res.Steps = steps
	return res
}

// -----------------------------------------------------------------------------
// Auto
// -----------------------------------------------------------------------------

func (d *Dispatcher) auto(ctx context.Context, g goal.Goal, t tactic.Auto) tactic.Result {
	if g.IsClosed() {
		return tactic.Unchanged(g, "goal is already closed")
	}
	depth := t.MaxDepth
	if depth <= 0 {
		depth = d.opts.AutoDepth
	}

	steps, ok := d.prove(ctx, g, t.Tactics, depth)
	if !ok {
		if ctx.Err() != nil {
			return tactic.Unchanged(g, "%v: %v", errCancelled, ctx.Err())
		}
		return tactic.Unchanged(g, "no proof within depth %d", depth)
	}
	res := tactic.Single(closed(g), fmt.Sprintf("auto in %d steps", len(steps)))
	res.Steps = steps
	return res
}

// prove searches depth-first for a chain of steps closing g. Every goal
// produced by a step must be closed in turn.
func (d *Dispatcher) prove(ctx context.Context, g goal.Goal, tactics []tactic.Tactic, depth int) ([]tactic.Tactic, bool) {
	if g.IsClosed() {
		return nil, true
	}
	if depth == 0 || ctx.Err() != nil {
		return nil, false
	}

	candidates := tactics
	if len(candidates) == 0 {
		candidates = d.defaultAutoTactics(g)
	}
	for _, tac := range candidates {
		if tac.Kind() == tactic.KindAuto {
			continue
		}
		res := d.apply(ctx, g, tac)
		if !res.Succeeded() || res.Outcome == tactic.Disproved {
			continue
		}

		steps := []tactic.Tactic{tac}
		if len(res.Steps) > 0 {
			steps = res.Steps
		}
		ok := true
		for _, child := range res.Goals {
			sub, proved := d.prove(ctx, child, tactics, depth-1)
			if !proved {
				ok = false
				break
			}
			steps = append(steps, sub...)
		}
		if ok {
			return steps, true
		}
	}
	return nil, false
}

// defaultAutoTactics returns the candidate steps for g, cheapest first.
func (d *Dispatcher) defaultAutoTactics(g goal.Goal) []tactic.Tactic {
	out := []tactic.Tactic{
		tactic.Reflexivity{},
		tactic.SearchAssumptions{},
	}
	for _, e := range g.Context {
		if _, ok := e.Relation(); ok {
			out = append(out, tactic.ContradictHypothesis{Hypothesis: e.Name})
		}
	}
	if d.theorems != nil {
		out = append(out, tactic.SearchTheorems{})
	}
	out = append(out,
		tactic.AssumeAntecedent{},
		tactic.IntroduceVariable{},
		tactic.SplitConjunction{Index: 0},
	)
	for _, e := range g.Context {
		if _, ok := e.Relation(); ok {
			out = append(out, tactic.SplitHypothesisConjunction{Hypothesis: e.Name})
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Meta-logical
// -----------------------------------------------------------------------------

func (d *Dispatcher) disproveByTheorem(g goal.Goal, t tactic.DisproveByTheorem) tactic.Result {
	r, err := d.resolveRule(g, t.Rule, nil)
	if err != nil {
		return d.fail(g, t.Kind(), "resolve rule", err)
	}

	// Either the rule states ¬S with S an instance of the goal, or the
	// goal states ¬R with the rule an instance of R.
	m := unify.NewMapping()
	if not, ok := relationAs[term.Not](r.statement); ok {
		if err := unify.Try(m, func(m *unify.Mapping) error { return unify.UnifyRelations(not.Inner, g.Statement, m) }); err == nil && d.conditionsHold(g, r, m) {
			return tactic.Disproof(g, fmt.Sprintf("refuted by %s", r.source))
		}
	}
	if not, ok := statementAs[term.Not](g); ok {
		m = unify.NewMapping()
		if err := unify.UnifyRelations(r.statement, not.Inner, m); err == nil && d.conditionsHold(g, r, m) {
			return tactic.Disproof(g, fmt.Sprintf("refuted by %s", r.source))
		}
	}
	return d.fail(g, t.Kind(), fmt.Sprintf("apply %s", r.source), fmt.Errorf("%w: %s against %s", ErrNotNegation, r.statement, g.Statement))
}
