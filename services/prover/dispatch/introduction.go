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
	"github.com/Turnersoft/turn-formal-sub002/services/prover/subst"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func (d *Dispatcher) assumeAntecedent(g goal.Goal, t tactic.AssumeAntecedent) tactic.Result {
	imp, ok := statementAs[term.Implies](g)
	if !ok {
		return tactic.Unchanged(g, "statement is not an implication")
	}
	name, err := nameFor(g, t.HypothesisName, "h")
	if err != nil {
		return d.fail(g, t.Kind(), "name hypothesis", err)
	}
	next, err := g.WithEntry(goal.Entry{Name: name, Type: term.Lift(term.CloneRel(imp.Antecedent)), Definition: goal.Abstract()})
	if err != nil {
		return d.fail(g, t.Kind(), "add hypothesis", err)
	}
	next.Statement = term.CloneRel(imp.Consequent)
	return tactic.Single(next, fmt.Sprintf("assume %s as %s", imp.Antecedent, name))
}

func (d *Dispatcher) introduceVariable(g goal.Goal, t tactic.IntroduceVariable) tactic.Result {
	if len(g.Quantifiers) == 0 {
		return tactic.Unchanged(g, "goal has no quantifiers")
	}
	i := 0
	if !t.Variable.IsZero() {
		var ok bool
		if _, i, ok = g.Quantifier(t.Variable); !ok {
			return d.fail(g, t.Kind(), "select quantifier", fmt.Errorf("%w: %s", goal.ErrUnboundIdentifier, t.Variable))
		}
	}
	// Only a variable in the universal prefix may move into the context.
	for _, q := range g.Quantifiers[:i+1] {
		if q.Kind != goal.Universal {
			return tactic.Unchanged(g, "%s is not in the universal prefix", g.Quantifiers[i].Variable)
		}
	}

	q := g.Quantifiers[i]
	next := g.WithoutQuantifier(i)
	name := q.Variable
	if next.Context.Has(name) {
		name = next.Context.FreshName(q.Variable.Name, append(quantified(next), term.CollectRel(next.Statement).Vars...)...)
		next.Statement = subst.VariablesRel(next.Statement, subst.Assignment{q.Variable: term.VarOf(name)})
	}
	ctx, err := next.Context.With(goal.Entry{Name: name, Type: term.CloneExpr(q.Domain), Definition: goal.Abstract()})
	if err != nil {
		return d.fail(g, t.Kind(), "add variable", err)
	}
	next.Context = ctx
	return tactic.Single(next, fmt.Sprintf("introduce %s", name))
}

func (d *Dispatcher) splitConjunction(g goal.Goal, t tactic.SplitConjunction) tactic.Result {
	and, ok := statementAs[term.And](g)
	if !ok {
		return tactic.Unchanged(g, "statement is not a conjunction")
	}
	if t.Index < 0 || t.Index >= len(and.Items) {
		return d.fail(g, t.Kind(), "select conjunct", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, t.Index, len(and.Items)))
	}

	selected := g.WithStatement(term.CloneRel(and.Items[t.Index]))
	if len(and.Items) == 1 {
		return tactic.Single(selected, "split conjunction")
	}

	rest := make([]term.Rel, 0, len(and.Items)-1)
	for i, it := range and.Items {
		if i != t.Index {
			rest = append(rest, term.CloneRel(it))
		}
	}
	remaining := rest[0]
	if len(rest) > 1 {
		remaining = term.At[term.Relation](g.Statement.Addr, term.And{Items: rest})
	}
	return tactic.Multi(
		[]goal.Goal{selected, g.WithStatement(remaining)},
		fmt.Sprintf("split conjunction at %d", t.Index),
	)
}

func (d *Dispatcher) splitDisjunction(g goal.Goal, t tactic.SplitDisjunction) tactic.Result {
	or, ok := statementAs[term.Or](g)
	if !ok {
		return tactic.Unchanged(g, "statement is not a disjunction")
	}
	if t.Index < 0 || t.Index >= len(or.Items) {
		return d.fail(g, t.Kind(), "select disjunct", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, t.Index, len(or.Items)))
	}
	return tactic.Single(g.WithStatement(term.CloneRel(or.Items[t.Index])), fmt.Sprintf("prove disjunct %d", t.Index))
}

func (d *Dispatcher) provideWitness(g goal.Goal, t tactic.ProvideWitness) tactic.Result {
	if len(g.Quantifiers) == 0 {
		return tactic.Unchanged(g, "goal has no quantifiers")
	}
	q := g.Quantifiers[0]
	if q.Kind != goal.Existential && q.Kind != goal.UniqueExistential {
		return tactic.Unchanged(g, "outermost quantifier of %s is not existential", q.Variable)
	}
	if t.Value.IsZero() {
		return d.fail(g, t.Kind(), "witness", fmt.Errorf("%w: missing value", ErrInvalidArgument))
	}

	rest := g.WithoutQuantifier(0)
	if err := checkBound(rest, t.Value); err != nil {
		return d.fail(g, t.Kind(), "witness", err)
	}

	existence := rest.WithStatement(subst.VariablesRel(g.Statement, subst.Assignment{q.Variable: t.Value}))
	justification := fmt.Sprintf("witness %s for %s", t.Value, q.Variable)
	if q.Kind == goal.Existential {
		return tactic.Single(existence, justification)
	}

	// ∃!x. P(x) with witness w also needs ∀y. P(y) → y = w.
	reserved := append(quantified(g), term.CollectRel(g.Statement).Vars...)
	reserved = append(reserved, term.CollectExpr(t.Value).Vars...)
	y := rest.Context.FreshName(q.Variable.Name, reserved...)
	uniqueness := rest.WithStatement(term.Imp(
		subst.VariablesRel(g.Statement, subst.Assignment{q.Variable: term.VarOf(y)}),
		term.Eq(term.VarOf(y), term.RemintExpr(t.Value)),
	))
	uniqueness.Quantifiers = append(uniqueness.Quantifiers, goal.Quantifier{Variable: y, Kind: goal.Universal, Domain: term.CloneExpr(q.Domain)})
	return tactic.Multi([]goal.Goal{existence, uniqueness}, justification+" with uniqueness")
}

func (d *Dispatcher) caseAnalysis(g goal.Goal, t tactic.CaseAnalysis) tactic.Result {
	if len(t.Cases) == 0 {
		return d.fail(g, t.Kind(), "cases", fmt.Errorf("%w: no cases", ErrInvalidArgument))
	}
	for _, id := range t.Targets {
		if !g.Binds(id) {
			return d.fail(g, t.Kind(), "targets", fmt.Errorf("%w: %s", goal.ErrUnboundIdentifier, id))
		}
	}

	goals := make([]goal.Goal, 0, len(t.Cases))
	for i, c := range t.Cases {
		if len(c.Values) != 0 && len(c.Values) != len(t.Targets) {
			return d.fail(g, t.Kind(), fmt.Sprintf("case %d", i),
				fmt.Errorf("%w: %d values for %d targets", ErrInvalidArgument, len(c.Values), len(t.Targets)))
		}
		assignment := make(subst.Assignment, len(c.Values))
		for j, v := range c.Values {
			if err := checkBound(g, v); err != nil {
				return d.fail(g, t.Kind(), fmt.Sprintf("case %d", i), err)
			}
			assignment[t.Targets[j]] = v
		}

		next := g.WithStatement(subst.VariablesRel(g.Statement, assignment))
		next.Context = caseContext(next.Context, assignment)
		if !c.Hypothesis.IsZero() {
			name, err := nameFor(g, c.HypothesisName, "case")
			if err != nil {
				return d.fail(g, t.Kind(), fmt.Sprintf("case %d", i), err)
			}
			next, err = next.WithEntry(goal.Entry{Name: name, Type: term.Lift(term.RemintRel(c.Hypothesis)), Definition: goal.Abstract()})
			if err != nil {
				return d.fail(g, t.Kind(), fmt.Sprintf("case %d", i), err)
			}
		}
		goals = append(goals, next)
	}
	return tactic.Multi(goals, fmt.Sprintf("case analysis on %d cases", len(goals)))
}

// caseContext substitutes a case's values into every context entry that
// mentions a target. The targets' own entries are kept.
func caseContext(c goal.Context, a subst.Assignment) goal.Context {
	if len(a) == 0 {
		return c
	}
	out := c
	for i, e := range c {
		if _, ok := a[e.Name]; ok {
			continue
		}
		changed := false
		if mentionsAny(term.CollectExpr(e.Type).Vars, a) {
			e.Type = subst.VariablesExpr(e.Type, a)
			changed = true
		}
		if v, ok := e.Definition.Value(); ok && mentionsAny(term.CollectExpr(v).Vars, a) {
			e.Definition = goal.Defined(subst.VariablesExpr(v, a))
			changed = true
		}
		if changed {
			out = out.Replace(i, e)
		}
	}
	return out
}

func mentionsAny(ids []term.Identifier, a subst.Assignment) bool {
	for _, id := range ids {
		if _, ok := a[id]; ok {
			return true
		}
	}
	return false
}

func (d *Dispatcher) induction(g goal.Goal, t tactic.Induction) tactic.Result {
	q, i, ok := g.Quantifier(t.Variable)
	if !ok {
		return d.fail(g, t.Kind(), "select variable", fmt.Errorf("%w: %s", goal.ErrUnboundIdentifier, t.Variable))
	}
	if q.Kind != goal.Universal {
		return tactic.Unchanged(g, "%s is not universally quantified", t.Variable)
	}
	if t.Base.IsZero() || t.Theory == "" || t.Successor == "" {
		return d.fail(g, t.Kind(), "arguments", fmt.Errorf("%w: base, theory and successor are required", ErrInvalidArgument))
	}

	rest := g.WithoutQuantifier(i)
	if err := checkBound(rest, t.Base); err != nil {
		return d.fail(g, t.Kind(), "base", err)
	}
	base := rest.WithStatement(subst.VariablesRel(g.Statement, subst.Assignment{q.Variable: t.Base}))

	// Step: with n and P(n) in context, prove P(succ(n)).
	n := q.Variable
	hyp := g.Statement
	if rest.Context.Has(n) {
		n = rest.Context.FreshName(n.Name, append(quantified(g), term.CollectRel(g.Statement).Vars...)...)
		hyp = subst.VariablesRel(g.Statement, subst.Assignment{q.Variable: term.VarOf(n)})
	}
	step, err := rest.WithEntry(goal.Entry{Name: n, Type: term.CloneExpr(q.Domain), Definition: goal.Abstract()})
	if err != nil {
		return d.fail(g, t.Kind(), "step", err)
	}
	ihName, err := nameFor(step, t.HypothesisName, "ih")
	if err != nil {
		return d.fail(g, t.Kind(), "step", err)
	}
	step, err = step.WithEntry(goal.Entry{Name: ihName, Type: term.Lift(term.RemintRel(hyp)), Definition: goal.Abstract()})
	if err != nil {
		return d.fail(g, t.Kind(), "step", err)
	}
	step.Statement = subst.VariablesRel(g.Statement, subst.Assignment{q.Variable: term.Apply(t.Theory, t.Successor, term.VarOf(n))})

	return tactic.Multi([]goal.Goal{base, step}, fmt.Sprintf("induction on %s", t.Variable))
}
