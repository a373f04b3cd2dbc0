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
	"github.com/Turnersoft/turn-formal-sub002/services/prover/unify"
)

// rule is a rule statement ready for matching.
//
// Universally quantified variables of a cited theorem, and abstract
// variables of its context, become meta-variables of the same name so
// unification can bind them. Hypotheses of the theorem become side
// conditions. A theorem with an existential quantifier is not a rule: its
// witness is unknown, so it cannot be instantiated at will.
type rule struct {
	source     string
	statement  term.Rel
	conditions []term.Rel
}

// resolveRule copies the cited rule out of the goal or the registry.
func (d *Dispatcher) resolveRule(g goal.Goal, src tactic.RuleSource, inst []tactic.Instantiation) (rule, error) {
	if !src.IsTheorem() {
		r, _, err := hypothesis(g, src.Hypothesis)
		if err != nil {
			return rule{}, err
		}
		if len(inst) > 0 {
			return rule{}, fmt.Errorf("%w: hypothesis %s has no rule variables to instantiate", ErrInvalidArgument, src.Hypothesis)
		}
		return rule{source: src.String(), statement: term.CloneRel(r)}, nil
	}

	if d.theorems == nil {
		return rule{}, fmt.Errorf("%w: cannot cite %s", ErrNoRegistry, src)
	}
	th, ok := d.theorems.GetTheorem(src.TheoremID)
	if !ok {
		return rule{}, fmt.Errorf("%w: %s", ErrTheoremNotFound, src.TheoremID)
	}
	tg, err := th.Statement(src.NodeIndex)
	if err != nil {
		return rule{}, err
	}

	vars, err := universals(tg)
	if err != nil {
		return rule{}, fmt.Errorf("%w: %s", err, src)
	}
	var conditions []term.Rel
	for _, e := range tg.Context {
		if r, ok := e.Relation(); ok {
			conditions = append(conditions, r)
			continue
		}
		if e.Definition.IsAbstract() {
			vars = append(vars, e.Name)
		}
	}

	assignment := make(subst.Assignment, len(vars))
	for _, v := range vars {
		assignment[v] = term.Meta[term.Expression](v)
	}
	for _, in := range inst {
		if _, ok := assignment[in.Variable]; !ok {
			return rule{}, fmt.Errorf("%w: %s is not a variable of %s", ErrInvalidArgument, in.Variable, src)
		}
		if in.Value.IsZero() {
			return rule{}, fmt.Errorf("%w: no value for %s", ErrInvalidArgument, in.Variable)
		}
		assignment[in.Variable] = in.Value
	}

	out := rule{source: src.String(), statement: subst.VariablesRel(tg.Statement, assignment)}
	for _, c := range conditions {
		out.conditions = append(out.conditions, subst.VariablesRel(c, assignment))
	}
	return out, nil
}

// universals returns the universally quantified variables of a cited
// theorem, or ErrExistentialRule if any quantifier is existential.
func universals(g goal.Goal) ([]term.Identifier, error) {
	out := make([]term.Identifier, 0, len(g.Quantifiers))
	for _, q := range g.Quantifiers {
		if q.Kind != goal.Universal {
			return nil, fmt.Errorf("%w: %s%s", ErrExistentialRule, q.Kind.Symbol(), q.Variable)
		}
		out = append(out, q.Variable)
	}
	return out, nil
}

// instantiateConditions substitutes m into the rule's side conditions.
func (r rule) instantiateConditions(m *unify.Mapping) ([]term.Rel, error) {
	out := make([]term.Rel, 0, len(r.conditions))
	for _, c := range r.conditions {
		inst := subst.Relation(c, m)
		if metas := term.CollectRel(inst).Metas; len(metas) > 0 {
			return nil, fmt.Errorf("%w: %v in condition %s", ErrUninstantiated, metas, inst)
		}
		out = append(out, inst)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Rewrite
// -----------------------------------------------------------------------------

func (d *Dispatcher) rewrite(g goal.Goal, t tactic.Rewrite) tactic.Result {
	r, err := d.resolveRule(g, t.Rule, t.Instantiations)
	if err != nil {
		return d.fail(g, t.Kind(), "resolve rule", err)
	}

	backward := t.Direction == tactic.Backward
	var (
		next  goal.Goal
		m     *unify.Mapping
		where term.Address
	)
	switch x := valueOf(r.statement).(type) {
	case term.Equal:
		from, to := x.Left, x.Right
		if backward {
			from, to = to, from
		}
		next, m, where, err = d.rewriteExpr(g, t.Target, from, to)
	case term.Equivalent:
		from, to := x.Left, x.Right
		if backward {
			from, to = to, from
		}
		next, m, where, err = d.rewriteRel(g, t.Target, from, to)
	default:
		err = fmt.Errorf("%w: %s states %s", ErrNotEquality, r.source, r.statement)
	}
	if err != nil {
		return d.fail(g, t.Kind(), fmt.Sprintf("apply %s", r.source), err)
	}

	conditions, err := r.instantiateConditions(m)
	if err != nil {
		return d.fail(g, t.Kind(), fmt.Sprintf("apply %s", r.source), err)
	}

	dir := t.Direction
	if dir == "" {
		dir = tactic.Forward
	}
	justification := fmt.Sprintf("rewrite with %s (%s) at %s", r.source, dir, where)
	if len(conditions) == 0 {
		return tactic.Single(next, justification)
	}
	goals := []goal.Goal{next}
	for _, c := range conditions {
		goals = append(goals, g.WithStatement(c))
	}
	return tactic.Multi(goals, justification)
}

func valueOf(r term.Rel) term.Relation {
	v, _ := r.ConcreteValue()
	return v
}

// rewriteExpr replaces the first in-target instance of from by the
// matching instance of to.
func (d *Dispatcher) rewriteExpr(g goal.Goal, target goal.Target, from, to term.Expr) (goal.Goal, *unify.Mapping, term.Address, error) {
	for _, loc := range findExpr(g, target, from) {
		m := unify.NewMapping()
		if err := unify.Unify(from, loc.Expr, m); err != nil {
			d.metrics.recordUnifyFailure(err)
			continue
		}
		resolved := m.Resolve()
		repl := subst.Expression(to, resolved)
		if metas := term.CollectExpr(repl).Metas; len(metas) > 0 {
			return goal.Goal{}, nil, "", fmt.Errorf("%w: %v", ErrUninstantiated, metas)
		}
		next, ok := replaceExpr(g, loc.Entry, loc.Addr, repl)
		if !ok {
			continue
		}
		return next, resolved, loc.Addr, nil
	}
	return goal.Goal{}, nil, "", fmt.Errorf("%w: %s", ErrNoMatch, from)
}

// rewriteRel replaces the first in-target instance of relation from.
func (d *Dispatcher) rewriteRel(g goal.Goal, target goal.Target, from, to term.Rel) (goal.Goal, *unify.Mapping, term.Address, error) {
	for _, loc := range findRel(g, target, from) {
		m := unify.NewMapping()
		if err := unify.UnifyRelations(from, loc.Rel, m); err != nil {
			d.metrics.recordUnifyFailure(err)
			continue
		}
		resolved := m.Resolve()
		repl := subst.Relation(to, resolved)
		if metas := term.CollectRel(repl).Metas; len(metas) > 0 {
			return goal.Goal{}, nil, "", fmt.Errorf("%w: %v", ErrUninstantiated, metas)
		}
		next, ok := replaceRel(g, loc.Entry, loc.Addr, repl)
		if !ok {
			continue
		}
		return next, resolved, loc.Addr, nil
	}
	return goal.Goal{}, nil, "", fmt.Errorf("%w: %s", ErrNoMatch, from)
}

// replaceExpr replaces the expression at addr in the statement (entry
// zero) or in the named context entry.
func replaceExpr(g goal.Goal, entry term.Identifier, addr term.Address, repl term.Expr) (goal.Goal, bool) {
	if entry.IsZero() {
		stmt, ok := subst.ReplaceExprAt(g.Statement, addr, repl)
		return g.WithStatement(stmt), ok
	}
	return replaceInEntry(g, entry, func(e term.Expr) (term.Expr, bool) {
		return subst.ReplaceExprAtExpr(e, addr, repl)
	})
}

func replaceRel(g goal.Goal, entry term.Identifier, addr term.Address, repl term.Rel) (goal.Goal, bool) {
	if entry.IsZero() {
		stmt, ok := subst.ReplaceRelAt(g.Statement, addr, repl)
		return g.WithStatement(stmt), ok
	}
	return replaceInEntry(g, entry, func(e term.Expr) (term.Expr, bool) {
		return subst.ReplaceRelAtExpr(e, addr, repl)
	})
}

// replaceInEntry applies fn to the entry's type, then to its value.
func replaceInEntry(g goal.Goal, id term.Identifier, fn func(term.Expr) (term.Expr, bool)) (goal.Goal, bool) {
	e, i, ok := g.Context.Lookup(id)
	if !ok {
		return g, false
	}
	next := g.Clone()
	if typ, ok := fn(e.Type); ok {
		e.Type = typ
		next.Context = next.Context.Replace(i, e)
		return next, true
	}
	if v, ok := e.Definition.Value(); ok {
		if nv, ok := fn(v); ok {
			e.Definition = goal.Defined(nv)
			next.Context = next.Context.Replace(i, e)
			return next, true
		}
	}
	return g, false
}
