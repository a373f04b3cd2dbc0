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

// ReplaceExprAt replaces the expression at addr inside root with repl.
//
// Outputs:
//   - term.Rel: The rebuilt relation. root is unchanged.
//   - bool: True if addr was found.
func ReplaceExprAt(root term.Rel, addr term.Address, repl term.Expr) (term.Rel, bool) {
	w, found := exprAt(addr, repl)
	return w.RewriteRel(root), *found
}

// ReplaceExprAtExpr replaces the expression at addr inside an expression.
func ReplaceExprAtExpr(root term.Expr, addr term.Address, repl term.Expr) (term.Expr, bool) {
	w, found := exprAt(addr, repl)
	return w.RewriteExpr(root), *found
}

// ReplaceRelAt replaces the relation at addr inside root with repl.
func ReplaceRelAt(root term.Rel, addr term.Address, repl term.Rel) (term.Rel, bool) {
	w, found := relAt(addr, repl)
	return w.RewriteRel(root), *found
}

// ReplaceRelAtExpr replaces the relation at addr inside an expression.
func ReplaceRelAtExpr(root term.Expr, addr term.Address, repl term.Rel) (term.Expr, bool) {
	w, found := relAt(addr, repl)
	return w.RewriteExpr(root), *found
}

func exprAt(addr term.Address, repl term.Expr) (Rewriter, *bool) {
	found := new(bool)
	return Rewriter{
		Expr: func(e term.Expr) (term.Expr, bool) {
			if e.Addr != addr || *found {
				return e, false
			}
			*found = true
			return splice(repl, addr), true
		},
	}, found
}

func relAt(addr term.Address, repl term.Rel) (Rewriter, *bool) {
	found := new(bool)
	return Rewriter{
		Rel: func(r term.Rel) (term.Rel, bool) {
			if r.Addr != addr || *found {
				return r, false
			}
			*found = true
			return term.RemintRel(repl).WithAddress(addr), true
		},
	}, found
}
