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
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// -----------------------------------------------------------------------------
// Context-directed elimination
// -----------------------------------------------------------------------------

func (d *Dispatcher) splitHypothesisConjunction(g goal.Goal, t tactic.SplitHypothesisConjunction) tactic.Result {
	r, i, err := hypothesis(g, t.Hypothesis)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	and, ok := relationAs[term.And](r)
	if !ok {
		return tactic.Unchanged(g, "hypothesis %s is not a conjunction", t.Hypothesis)
	}

	// The conjuncts replace the hypothesis at its position.
	others := g.Context.Without(t.Hypothesis)
	scratch := g.Clone()
	scratch.Context = others
	entries := make([]goal.Entry, len(and.Items))
	var taken []term.Identifier
	for j, it := range and.Items {
		requested := ""
		if j < len(t.Names) {
			requested = t.Names[j]
		}
		name, err := nameFor(scratch, requested, t.Hypothesis.Name, taken...)
		if err != nil {
			return d.fail(g, t.Kind(), "name conjunct", err)
		}
		taken = append(taken, name)
		entries[j] = goal.Entry{Name: name, Type: term.Lift(term.CloneRel(it)), Definition: goal.Abstract()}
	}

	next := g.Clone()
	ctx := make(goal.Context, 0, len(g.Context)+len(entries)-1)
	ctx = append(ctx, next.Context[:i]...)
	ctx = append(ctx, entries...)
	ctx = append(ctx, next.Context[i+1:]...)
	next.Context = ctx
	return tactic.Single(next, fmt.Sprintf("split hypothesis %s", t.Hypothesis))
}

func (d *Dispatcher) splitHypothesisDisjunction(g goal.Goal, t tactic.SplitHypothesisDisjunction) tactic.Result {
	r, i, err := hypothesis(g, t.Hypothesis)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	or, ok := relationAs[term.Or](r)
	if !ok {
		return tactic.Unchanged(g, "hypothesis %s is not a disjunction", t.Hypothesis)
	}

	others := g.Context.Without(t.Hypothesis)
	goals := make([]goal.Goal, 0, len(or.Items))
	for j, it := range or.Items {
		name := t.Hypothesis
		if j < len(t.Names) && t.Names[j] != "" {
			name = term.Ident(t.Names[j])
			if others.Has(name) {
				return d.fail(g, t.Kind(), "name disjunct", fmt.Errorf("%w: %s", goal.ErrDuplicateName, name))
			}
		}
		next := g.Clone()
		next.Context = next.Context.Replace(i, goal.Entry{Name: name, Type: term.Lift(term.CloneRel(it)), Definition: goal.Abstract()})
		goals = append(goals, next)
	}
	return tactic.Multi(goals, fmt.Sprintf("cases on hypothesis %s", t.Hypothesis))
}

// -----------------------------------------------------------------------------
// Completion
// -----------------------------------------------------------------------------

func (d *Dispatcher) exactHypothesis(g goal.Goal, t tactic.ExactHypothesis) tactic.Result {
	r, _, err := hypothesis(g, t.Hypothesis)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	if !term.EqualRel(r, g.Statement) {
		return d.fail(g, t.Kind(), "compare", fmt.Errorf("%w: hypothesis %s is %s, goal is %s", ErrNotClosed, t.Hypothesis, r, g.Statement))
	}
	return tactic.Single(closed(g), fmt.Sprintf("exact %s", t.Hypothesis))
}

func (d *Dispatcher) reflexivity(g goal.Goal, t tactic.Reflexivity) tactic.Result {
	if eq, ok := statementAs[term.Equal](g); ok {
		if !term.EqualExpr(eq.Left, eq.Right) {
			return d.fail(g, t.Kind(), "compare", fmt.Errorf("%w: %s and %s differ", ErrNotClosed, eq.Left, eq.Right))
		}
		return tactic.Single(closed(g), "reflexivity")
	}
	if iff, ok := statementAs[term.Equivalent](g); ok {
		if !term.EqualRel(iff.Left, iff.Right) {
			return d.fail(g, t.Kind(), "compare", fmt.Errorf("%w: %s and %s differ", ErrNotClosed, iff.Left, iff.Right))
		}
		return tactic.Single(closed(g), "reflexivity")
	}
	return d.fail(g, t.Kind(), "shape", fmt.Errorf("%w: statement %s is not an equality", ErrNotClosed, g.Statement))
}

func (d *Dispatcher) contradiction(g goal.Goal, t tactic.Contradiction) tactic.Result {
	pos, _, err := hypothesis(g, t.Hypothesis)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	neg, _, err := hypothesis(g, t.Negation)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	not, ok := relationAs[term.Not](neg)
	if !ok || !term.EqualRel(not.Inner, pos) {
		return d.fail(g, t.Kind(), "compare", fmt.Errorf("%w: %s is not the negation of %s", ErrNotClosed, t.Negation, t.Hypothesis))
	}
	return tactic.Single(closed(g), fmt.Sprintf("contradiction between %s and %s", t.Hypothesis, t.Negation))
}

func (d *Dispatcher) contradictHypothesis(g goal.Goal, t tactic.ContradictHypothesis) tactic.Result {
	r, _, err := hypothesis(g, t.Hypothesis)
	if err != nil {
		return d.fail(g, t.Kind(), "lookup", err)
	}
	if !absurd(r) {
		return d.fail(g, t.Kind(), "compare", fmt.Errorf("%w: hypothesis %s is not absurd: %s", ErrNotClosed, t.Hypothesis, r))
	}
	return tactic.Single(closed(g), fmt.Sprintf("absurd hypothesis %s", t.Hypothesis))
}

// absurd reports whether r is ⊥, ¬⊤ or ¬(t = t).
func absurd(r term.Rel) bool {
	if term.IsFalse(r) {
		return true
	}
	not, ok := relationAs[term.Not](r)
	if !ok {
		return false
	}
	if term.IsTrue(not.Inner) {
		return true
	}
	eq, ok := relationAs[term.Equal](not.Inner)
	return ok && term.EqualExpr(eq.Left, eq.Right)
}
