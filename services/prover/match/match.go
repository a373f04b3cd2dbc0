// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package match finds the sub-terms of a goal compatible with a pattern.
//
// Traversal:
//
//	The matcher walks the searched regions of the goal in pre-order,
//	context entries first (in context order) and then the statement. A
//	scope flag becomes true once the walk reaches Target.ID, or from the
//	start when no ID is given, and stays true for every descendant. Nodes
//	visited while in scope are recorded when compatible with the pattern.
//	The walk always descends into every sub-term, so repeated sub-terms
//	are all found.
package match

import (
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Pattern is an expression or relation pattern. Exactly one is set.
type Pattern struct {
	Expr term.Expr
	Rel  term.Rel
}

// ExprPattern wraps an expression pattern.
func ExprPattern(e term.Expr) Pattern {
	return Pattern{Expr: e}
}

// RelPattern wraps a relation pattern.
func RelPattern(r term.Rel) Pattern {
	return Pattern{Rel: r}
}

// IsRelation reports whether the pattern matches relation nodes.
func (p Pattern) IsRelation() bool {
	return !p.Rel.IsZero()
}

func (p Pattern) String() string {
	if p.IsRelation() {
		return p.Rel.String()
	}
	return p.Expr.String()
}

// Location is one match: the matched node and the region it was found in.
type Location struct {
	Addr term.Address

	// Entry names the context entry containing the match. Zero when the
	// match is in the statement.
	Entry term.Identifier

	// Expr or Rel holds the matched node, according to the pattern kind.
	Expr term.Expr
	Rel  term.Rel
}

// InStatement reports whether the match lies in the goal statement.
func (l Location) InStatement() bool {
	return l.Entry.IsZero()
}

// FindMatches returns the addresses of every in-scope sub-term of g that
// is compatible with pattern.
//
// Inputs:
//   - g: The goal to search. Not modified.
//   - target: The region and optional root address to search under.
//   - pattern: The pattern to look for.
//
// Outputs:
//   - []term.Address: Matching addresses in traversal order, without
//     duplicates. Empty when nothing matches.
func FindMatches(g goal.Goal, target goal.Target, pattern Pattern) []term.Address {
	locs := FindLocations(g, target, pattern)
	out := make([]term.Address, len(locs))
	for i, l := range locs {
		out[i] = l.Addr
	}
	return out
}

// FindLocations is FindMatches returning the matched nodes as well.
func FindLocations(g goal.Goal, target goal.Target, pattern Pattern) []Location {
	w := &walker{
		target:  target,
		pattern: pattern,
		seen:    make(map[term.Address]bool),
	}
	for _, e := range g.Context {
		if !target.IncludesEntry(e.Name) {
			continue
		}
		w.entry = e.Name
		w.expr(e.Type, target.ID == "", true)
		if v, ok := e.Definition.Value(); ok {
			w.expr(v, target.ID == "", true)
		}
	}
	if target.IncludesStatement() {
		w.entry = term.Identifier{}
		w.rel(g.Statement, target.ID == "", true)
	}
	return w.found
}

type walker struct {
	target  goal.Target
	pattern Pattern
	entry   term.Identifier
	seen    map[term.Address]bool
	found   []Location
}

func (w *walker) record(loc Location) {
	if w.seen[loc.Addr] {
		return
	}
	w.seen[loc.Addr] = true
	loc.Entry = w.entry
	w.found = append(w.found, loc)
}

// expr visits e. root is true for the node at which the scope was entered.
func (w *walker) expr(e term.Expr, inScope, root bool) {
	if e.IsZero() {
		return
	}
	if !inScope && w.target.ID != "" && e.Addr == w.target.ID {
		inScope, root = true, true
	}
	if inScope && !w.pattern.IsRelation() && CompatibleExpr(w.pattern.Expr, e, w.target.AllowReorder) {
		w.record(Location{Addr: e.Addr, Expr: e})
	}

	v, ok := e.ConcreteValue()
	if !ok {
		return
	}
	switch x := v.(type) {
	case term.RelationExpr:
		w.rel(x.Rel, inScope, root)
	case term.TheoryExpr:
		for _, a := range x.Args {
			w.expr(a, inScope, false)
		}
	case term.ViewAs:
		w.expr(x.Inner, inScope, false)
	}
}

func (w *walker) rel(r term.Rel, inScope, root bool) {
	if r.IsZero() {
		return
	}
	if !inScope && w.target.ID != "" && r.Addr == w.target.ID {
		inScope, root = true, true
	}
	if inScope && root && len(w.target.Indices) > 0 {
		if members, ok := w.selected(r); ok {
			w.members(r, members)
			return
		}
	}
	if inScope && w.pattern.IsRelation() && CompatibleRel(w.pattern.Rel, r, w.target.AllowReorder) {
		w.record(Location{Addr: r.Addr, Rel: r})
	}

	v, ok := r.ConcreteValue()
	if !ok {
		return
	}
	switch x := v.(type) {
	case term.Equal:
		w.expr(x.Left, inScope, false)
		w.expr(x.Right, inScope, false)
	case term.And:
		w.rels(x.Items, inScope)
	case term.Or:
		w.rels(x.Items, inScope)
	case term.Not:
		w.rel(x.Inner, inScope, false)
	case term.Implies:
		w.rel(x.Antecedent, inScope, false)
		w.rel(x.Consequent, inScope, false)
	case term.Equivalent:
		w.rel(x.Left, inScope, false)
		w.rel(x.Right, inScope, false)
	case term.Predicate:
		for _, a := range x.Args {
			w.expr(a, inScope, false)
		}
	case term.TheoryRelation:
		for _, a := range x.Args {
			w.expr(a, inScope, false)
		}
	}
}

func (w *walker) rels(items []term.Rel, inScope bool) {
	for _, it := range items {
		w.rel(it, inScope, false)
	}
}

// selected returns the members of an ordered And/Or picked by
// Target.Indices. ok is false when r is not an And/Or or an index is out
// of range, in which case the indices are ignored.
func (w *walker) selected(r term.Rel) ([]term.Rel, bool) {
	items, ok := listItems(r)
	if !ok {
		return nil, false
	}
	out := make([]term.Rel, 0, len(w.target.Indices))
	for _, i := range w.target.Indices {
		if i < 0 || i >= len(items) {
			return nil, false
		}
		out = append(out, items[i])
	}
	return out, true
}

// members searches the selected members of the list relation r. A
// relation pattern of the same list kind is compared against the
// selection as a whole and recorded at r's address.
func (w *walker) members(r term.Rel, members []term.Rel) {
	if w.pattern.IsRelation() {
		pv, pok := w.pattern.Rel.ConcreteValue()
		rv, _ := r.ConcreteValue()
		if pok && pv.RelKind() == rv.RelKind() {
			pitems, _ := listItems(w.pattern.Rel)
			if compatibleList(pitems, members, w.target.AllowReorder) {
				w.record(Location{Addr: r.Addr, Rel: r})
			}
		}
	}
	for _, m := range members {
		w.rel(m, true, false)
	}
}

func listItems(r term.Rel) ([]term.Rel, bool) {
	v, ok := r.ConcreteValue()
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case term.And:
		return x.Items, true
	case term.Or:
		return x.Items, true
	}
	return nil, false
}
