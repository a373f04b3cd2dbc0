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
	"github.com/Turnersoft/turn-formal-sub002/services/prover/match"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/subst"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// findExpr returns the in-target locations compatible with an expression
// pattern. Lifted relations are skipped; relation rewriting handles them.
func findExpr(g goal.Goal, target goal.Target, pattern term.Expr) []match.Location {
	locs := match.FindLocations(g, target, match.ExprPattern(pattern))
	out := locs[:0]
	for _, l := range locs {
		if v, ok := l.Expr.ConcreteValue(); ok {
			if _, lifted := v.(term.RelationExpr); lifted {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func findRel(g goal.Goal, target goal.Target, pattern term.Rel) []match.Location {
	return match.FindLocations(g, target, match.RelPattern(pattern))
}

func (d *Dispatcher) unfoldDefinition(g goal.Goal, t tactic.UnfoldDefinition) tactic.Result {
	e, _, ok := g.Context.Lookup(t.Name)
	if !ok {
		return d.fail(g, t.Kind(), "lookup", fmt.Errorf("%w: %s", ErrHypothesisNotFound, t.Name))
	}
	value, ok := e.Definition.Value()
	if !ok {
		return d.fail(g, t.Kind(), "lookup", fmt.Errorf("%w: %s is not defined by a value", ErrInvalidArgument, t.Name))
	}

	next := g
	count := 0
	for _, loc := range findExpr(g, t.Target, term.VarOf(t.Name)) {
		if loc.Entry == t.Name {
			continue
		}
		var replaced bool
		if next, replaced = replaceExpr(next, loc.Entry, loc.Addr, value); replaced {
			count++
		}
	}
	if count == 0 {
		return d.fail(g, t.Kind(), "unfold", fmt.Errorf("%w: %s", ErrNoMatch, t.Name))
	}
	return tactic.Single(next, fmt.Sprintf("unfold %s at %d occurrences", t.Name, count))
}

func (d *Dispatcher) introduceLet(g goal.Goal, t tactic.IntroduceLet) tactic.Result {
	if t.Name == "" || t.Value.IsZero() {
		return d.fail(g, t.Kind(), "arguments", fmt.Errorf("%w: name and value are required", ErrInvalidArgument))
	}
	name, err := nameFor(g, t.Name, t.Name)
	if err != nil {
		return d.fail(g, t.Kind(), "name", err)
	}
	if err := checkBound(g, t.Value); err != nil {
		return d.fail(g, t.Kind(), "value", err)
	}
	next, err := g.WithEntry(goal.Let(name.Name, term.CloneExpr(t.Type), term.RemintExpr(t.Value)))
	if err != nil {
		return d.fail(g, t.Kind(), "add definition", err)
	}
	return tactic.Single(next, fmt.Sprintf("let %s := %s", name, t.Value))
}

func (d *Dispatcher) renameBound(g goal.Goal, t tactic.RenameBound) tactic.Result {
	_, i, ok := g.Quantifier(t.From)
	if !ok {
		return d.fail(g, t.Kind(), "lookup", fmt.Errorf("%w: %s is not quantified", goal.ErrUnboundIdentifier, t.From))
	}
	if t.To.IsZero() {
		return d.fail(g, t.Kind(), "arguments", fmt.Errorf("%w: missing new name", ErrInvalidArgument))
	}
	if t.To == t.From {
		return tactic.Unchanged(g, "%s already has that name", t.From)
	}
	if g.Binds(t.To) || term.CollectRel(g.Statement).HasVar(t.To) {
		return d.fail(g, t.Kind(), "rename", fmt.Errorf("%w: %s", goal.ErrDuplicateName, t.To))
	}

	next := g.WithStatement(subst.VariablesRel(g.Statement, subst.Assignment{t.From: term.VarOf(t.To)}))
	next.Quantifiers[i].Variable = t.To
	return tactic.Single(next, fmt.Sprintf("rename %s to %s", t.From, t.To))
}

func (d *Dispatcher) revertHypothesis(g goal.Goal, t tactic.RevertHypothesis) tactic.Result {
	e, i, ok := g.Context.Lookup(t.Name)
	if !ok {
		return d.fail(g, t.Kind(), "lookup", fmt.Errorf("%w: %s", ErrHypothesisNotFound, t.Name))
	}
	for _, later := range g.Context[i+1:] {
		if referencesVar(later, t.Name) {
			return d.fail(g, t.Kind(), "revert", fmt.Errorf("%w: %s is used by %s", ErrInvalidArgument, t.Name, later.Name))
		}
	}

	next := g.Clone()
	next.Context = next.Context.Without(t.Name)
	if r, ok := e.Relation(); ok {
		next.Statement = term.Imp(term.CloneRel(r), next.Statement)
		return tactic.Single(next, fmt.Sprintf("revert hypothesis %s", t.Name))
	}
	if v, ok := e.Definition.Value(); ok {
		next.Statement = subst.VariablesRel(next.Statement, subst.Assignment{t.Name: v})
		return tactic.Single(next, fmt.Sprintf("revert definition %s", t.Name))
	}
	if _, _, clash := g.Quantifier(t.Name); clash {
		return d.fail(g, t.Kind(), "revert", fmt.Errorf("%w: %s is also quantified", goal.ErrDuplicateName, t.Name))
	}
	next.Quantifiers = append([]goal.Quantifier{{Variable: t.Name, Kind: goal.Universal, Domain: term.CloneExpr(e.Type)}}, next.Quantifiers...)
	return tactic.Single(next, fmt.Sprintf("generalize %s", t.Name))
}

func referencesVar(e goal.Entry, id term.Identifier) bool {
	if term.CollectExpr(e.Type).HasVar(id) {
		return true
	}
	v, ok := e.Definition.Value()
	return ok && term.CollectExpr(v).HasVar(id)
}
