// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package subst

import (
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Rewriter rebuilds a term top-down.
//
// Description:
//
//	At each node the matching hook is consulted first. When it returns a
//	replacement, that replacement is used as is and not descended into.
//	Otherwise the node is rebuilt with its children rewritten, keeping its
//	own address. Terminal kinds are returned unchanged.
//
//	Either hook may be nil.
type Rewriter struct {
	Expr func(term.Expr) (term.Expr, bool)
	Rel  func(term.Rel) (term.Rel, bool)
}

// RewriteExpr rewrites e. The input is not modified.
func (w Rewriter) RewriteExpr(e term.Expr) term.Expr {
	if e.IsZero() {
		return e
	}
	if w.Expr != nil {
		if out, ok := w.Expr(e); ok {
			return out
		}
	}
	v, ok := e.ConcreteValue()
	if !ok {
		return e
	}
	switch x := v.(type) {
	case term.RelationExpr:
		return term.At[term.Expression](e.Addr, term.RelationExpr{Rel: w.RewriteRel(x.Rel)})
	case term.TheoryExpr:
		return term.At[term.Expression](e.Addr, term.TheoryExpr{Theory: x.Theory, Op: x.Op, Args: w.exprs(x.Args)})
	case term.ViewAs:
		return term.At[term.Expression](e.Addr, term.ViewAs{View: x.View, Inner: w.RewriteExpr(x.Inner)})
	}
	return e
}

// RewriteRel rewrites r. The input is not modified.
func (w Rewriter) RewriteRel(r term.Rel) term.Rel {
	if r.IsZero() {
		return r
	}
	if w.Rel != nil {
		if out, ok := w.Rel(r); ok {
			return out
		}
	}
	v, ok := r.ConcreteValue()
	if !ok {
		return r
	}
	var out term.Relation
	switch x := v.(type) {
	case term.Equal:
		out = term.Equal{Left: w.RewriteExpr(x.Left), Right: w.RewriteExpr(x.Right)}
	case term.And:
		out = term.And{Items: w.rels(x.Items)}
	case term.Or:
		out = term.Or{Items: w.rels(x.Items)}
	case term.Not:
		out = term.Not{Inner: w.RewriteRel(x.Inner)}
	case term.Implies:
		out = term.Implies{Antecedent: w.RewriteRel(x.Antecedent), Consequent: w.RewriteRel(x.Consequent)}
	case term.Equivalent:
		out = term.Equivalent{Left: w.RewriteRel(x.Left), Right: w.RewriteRel(x.Right)}
	case term.Predicate:
		out = term.Predicate{Name: x.Name, Args: w.exprs(x.Args)}
	case term.TheoryRelation:
		out = term.TheoryRelation{Theory: x.Theory, Name: x.Name, Args: w.exprs(x.Args)}
	default:
		return r
	}
	return term.At(r.Addr, out)
}

func (w Rewriter) exprs(in []term.Expr) []term.Expr {
	if in == nil {
		return nil
	}
	out := make([]term.Expr, len(in))
	for i, e := range in {
		out[i] = w.RewriteExpr(e)
	}
	return out
}

func (w Rewriter) rels(in []term.Rel) []term.Rel {
	if in == nil {
		return nil
	}
	out := make([]term.Rel, len(in))
	for i, r := range in {
		out[i] = w.RewriteRel(r)
	}
	return out
}
