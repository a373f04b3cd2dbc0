// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package match

import (
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// CompatibleExpr reports whether node could be an instance of pattern.
//
// An unbound pattern variable is compatible with any expression. Concrete
// patterns require the same kind and compatible sub-terms. Repeated
// pattern variables are not checked for consistency here; unification
// does that once a candidate is chosen.
func CompatibleExpr(pattern, node term.Expr, reorder bool) bool {
	if pattern.IsVariable() {
		return true
	}
	pv, ok := pattern.ConcreteValue()
	if !ok {
		return false
	}
	nv, ok := node.ConcreteValue()
	if !ok {
		return false
	}

	switch p := pv.(type) {
	case term.Var:
		n, ok := nv.(term.Var)
		return ok && p.ID == n.ID
	case term.Number:
		n, ok := nv.(term.Number)
		return ok && p.Value == n.Value
	case term.Object:
		n, ok := nv.(term.Object)
		return ok && p == n
	case term.TheoryExpr:
		n, ok := nv.(term.TheoryExpr)
		if !ok || p.Theory != n.Theory || p.Op != n.Op || len(p.Args) != len(n.Args) {
			return false
		}
		for i := range p.Args {
			if !CompatibleExpr(p.Args[i], n.Args[i], reorder) {
				return false
			}
		}
		return true
	case term.ViewAs:
		n, ok := nv.(term.ViewAs)
		return ok && p.View == n.View && CompatibleExpr(p.Inner, n.Inner, reorder)
	case term.RelationExpr:
		n, ok := nv.(term.RelationExpr)
		return ok && CompatibleRel(p.Rel, n.Rel, reorder)
	}
	return false
}

// CompatibleRel reports whether node could be an instance of pattern.
//
// With reorder set, And/Or members may appear in any order.
func CompatibleRel(pattern, node term.Rel, reorder bool) bool {
	if pattern.IsVariable() {
		return true
	}
	pv, ok := pattern.ConcreteValue()
	if !ok {
		return false
	}
	nv, ok := node.ConcreteValue()
	if !ok {
		return false
	}

	switch p := pv.(type) {
	case term.Equal:
		n, ok := nv.(term.Equal)
		return ok && CompatibleExpr(p.Left, n.Left, reorder) && CompatibleExpr(p.Right, n.Right, reorder)
	case term.And:
		n, ok := nv.(term.And)
		return ok && compatibleList(p.Items, n.Items, reorder)
	case term.Or:
		n, ok := nv.(term.Or)
		return ok && compatibleList(p.Items, n.Items, reorder)
	case term.Not:
		n, ok := nv.(term.Not)
		return ok && CompatibleRel(p.Inner, n.Inner, reorder)
	case term.Implies:
		n, ok := nv.(term.Implies)
		return ok && CompatibleRel(p.Antecedent, n.Antecedent, reorder) && CompatibleRel(p.Consequent, n.Consequent, reorder)
	case term.Equivalent:
		n, ok := nv.(term.Equivalent)
		return ok && CompatibleRel(p.Left, n.Left, reorder) && CompatibleRel(p.Right, n.Right, reorder)
	case term.True:
		_, ok := nv.(term.True)
		return ok
	case term.False:
		_, ok := nv.(term.False)
		return ok
	case term.Predicate:
		n, ok := nv.(term.Predicate)
		return ok && p.Name == n.Name && compatibleArgs(p.Args, n.Args, reorder)
	case term.TheoryRelation:
		n, ok := nv.(term.TheoryRelation)
		return ok && p.Theory == n.Theory && p.Name == n.Name && compatibleArgs(p.Args, n.Args, reorder)
	}
	return false
}

func compatibleArgs(p, n []term.Expr, reorder bool) bool {
	if len(p) != len(n) {
		return false
	}
	for i := range p {
		if !CompatibleExpr(p[i], n[i], reorder) {
			return false
		}
	}
	return true
}

func compatibleList(p, n []term.Rel, reorder bool) bool {
	if len(p) != len(n) {
		return false
	}
	if !reorder {
		for i := range p {
			if !CompatibleRel(p[i], n[i], false) {
				return false
			}
		}
		return true
	}
	used := make([]bool, len(n))
	return assign(p, n, used, 0)
}

// assign finds a one-to-one pairing of pattern members to node members by
// backtracking.
func assign(p, n []term.Rel, used []bool, i int) bool {
	if i == len(p) {
		return true
	}
	for j := range n {
		if used[j] || !CompatibleRel(p[i], n[j], true) {
			continue
		}
		used[j] = true
		if assign(p, n, used, i+1) {
			return true
		}
		used[j] = false
	}
	return false
}
