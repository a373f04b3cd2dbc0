// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package subst applies substitution mappings to templates and replaces
// addressed sub-terms.
//
// Address policy:
//
//	Rebuilt nodes keep their addresses. A replaced slot keeps the address
//	it had in the template, and the content spliced into it is reminted,
//	so addresses stay unique within one goal even when the same value is
//	spliced in several times. Targeted tactics can therefore keep using
//	addresses of unchanged sub-terms across steps.
package subst

import (
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Expression substitutes the bound meta-variables of template.
//
// Description:
//
//	A meta-variable bound in b is replaced by its binding, which is not
//	substituted further. Chains are expected to have been resolved by the
//	caller (unify.Mapping.Resolve). Unbound meta-variables and every other
//	identifier are left untouched. Substituting a completed mapping twice
//	equals substituting it once.
//
// Inputs:
//   - template: The term to instantiate. Not modified.
//   - b: The bindings. nil leaves the template unchanged.
//
// Outputs:
//   - term.Expr: The instantiated copy.
func Expression(template term.Expr, b term.Bindings) term.Expr {
	return metas(b).RewriteExpr(template)
}

// Relation substitutes the bound meta-variables of template.
func Relation(template term.Rel, b term.Bindings) term.Rel {
	return metas(b).RewriteRel(template)
}

func metas(b term.Bindings) Rewriter {
	if b == nil {
		return Rewriter{}
	}
	return Rewriter{
		Expr: func(e term.Expr) (term.Expr, bool) {
			id, ok := e.Variable()
			if !ok {
				return e, false
			}
			v, bound := b.Lookup(id)
			if !bound {
				return e, false
			}
			return splice(v, e.Addr), true
		},
		Rel: func(r term.Rel) (term.Rel, bool) {
			id, ok := r.Variable()
			if !ok {
				return r, false
			}
			v, bound := b.Lookup(id)
			if !bound {
				return r, false
			}
			rel, ok := term.AsRelation(v)
			if !ok {
				return r, false
			}
			return term.RemintRel(rel).WithAddress(r.Addr), true
		},
	}
}

func splice(v term.Expr, slot term.Address) term.Expr {
	return term.RemintExpr(v).WithAddress(slot)
}

// Assignment maps object-variable identifiers to replacement expressions.
type Assignment map[term.Identifier]term.Expr

// VariablesExpr replaces object-level variable references (term.Var) named
// in a. Meta-variables are left untouched.
func VariablesExpr(template term.Expr, a Assignment) term.Expr {
	return vars(a).RewriteExpr(template)
}

// VariablesRel replaces object-level variable references named in a.
//
// Used for case values, induction instances and existential witnesses.
func VariablesRel(template term.Rel, a Assignment) term.Rel {
	return vars(a).RewriteRel(template)
}

func vars(a Assignment) Rewriter {
	return Rewriter{
		Expr: func(e term.Expr) (term.Expr, bool) {
			v, ok := e.ConcreteValue()
			if !ok {
				return e, false
			}
			ref, ok := v.(term.Var)
			if !ok {
				return e, false
			}
			repl, ok := a[ref.ID]
			if !ok {
				return e, false
			}
			return splice(repl, e.Addr), true
		},
	}
}
