// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package unify makes two terms structurally equal by binding
// meta-variables, with occurs-check protection against cyclic bindings.
//
// Variables:
//
//	Only meta-variables (term.Meta placeholders) are bindable. Object
//	variables (term.Var) are rigid: they unify only with the same variable.
//
// Rollback:
//
//	A failed Unify may leave bindings made before the failing step. Callers
//	that need all-or-nothing behaviour wrap the attempt in Try, or take a
//	Snapshot and Restore it themselves.
package unify

import (
	"errors"
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

var (
	// ErrMismatch indicates structurally incompatible expressions.
	ErrMismatch = errors.New("mismatch")

	// ErrRelationMismatch indicates incompatible relation shapes, arities
	// or names.
	ErrRelationMismatch = errors.New("relation mismatch")

	// ErrOccursCheckFailed indicates a variable would be bound to a term
	// containing itself.
	ErrOccursCheckFailed = errors.New("occurs check failed")
)

// UnificationError describes the pair of terms that failed to unify.
//
// Kind is one of the sentinel errors above and is returned by Unwrap, so
// callers classify failures with errors.Is.
type UnificationError struct {
	Kind  error
	Left  string
	Right string
}

func (e *UnificationError) Error() string {
	return "unify: " + e.Kind.Error() + ": " + e.Left + " vs " + e.Right
}

func (e *UnificationError) Unwrap() error {
	return e.Kind
}

func fail(kind error, left, right fmt.Stringer) error {
	return &UnificationError{Kind: kind, Left: left.String(), Right: right.String()}
}

// Unify makes two expressions identical under m.
//
// Description:
//
//	If either side is a meta-variable that is already bound, its binding is
//	unified against the other side. Two occurrences of the same unbound
//	variable unify trivially. Otherwise the other side is dereferenced,
//	occurs-checked, and bound. Concrete pairs unify structurally: numbers
//	and objects by equality, relation and theory expressions recursively,
//	viewed-as wrappers when their view tags match.
//
// Inputs:
//   - a, b: The expressions to unify. Neither is modified.
//   - m: The mapping receiving new bindings. Must not be nil.
//
// Outputs:
//   - error: nil on success, otherwise a *UnificationError.
func Unify(a, b term.Expr, m *Mapping) error {
	if id, ok := term.MetaIdentifier(a); ok {
		return unifyVariable(id, a, b, m)
	}
	if id, ok := term.MetaIdentifier(b); ok {
		return unifyVariable(id, b, a, m)
	}

	va, oka := a.ConcreteValue()
	vb, okb := b.ConcreteValue()
	if !oka || !okb {
		return fail(ErrMismatch, a, b)
	}

	switch x := va.(type) {
	case term.Var:
		if y, ok := vb.(term.Var); ok && x.ID == y.ID {
			return nil
		}
	case term.Number:
		if y, ok := vb.(term.Number); ok && x.Value == y.Value {
			return nil
		}
	case term.Object:
		if y, ok := vb.(term.Object); ok && x == y {
			return nil
		}
	case term.RelationExpr:
		if y, ok := vb.(term.RelationExpr); ok {
			return UnifyRelations(x.Rel, y.Rel, m)
		}
	case term.TheoryExpr:
		if y, ok := vb.(term.TheoryExpr); ok && x.Theory == y.Theory && x.Op == y.Op && len(x.Args) == len(y.Args) {
			return unifyExprList(x.Args, y.Args, m)
		}
	case term.ViewAs:
		if y, ok := vb.(term.ViewAs); ok && x.View == y.View {
			return Unify(x.Inner, y.Inner, m)
		}
	}
	return fail(ErrMismatch, a, b)
}

// unifyVariable binds the meta-variable id, found in v, against other.
func unifyVariable(id term.Identifier, v, other term.Expr, m *Mapping) error {
	if bound, ok := m.Lookup(id); ok {
		return Unify(bound, other, m)
	}
	if oid, ok := term.MetaIdentifier(other); ok && oid == id {
		return nil
	}

	resolved := term.Dereference(other, m)
	if rid, ok := term.MetaIdentifier(resolved); ok && rid == id {
		return nil
	}
	if Occurs(id, resolved, m) {
		return fail(ErrOccursCheckFailed, v, resolved)
	}
	m.Bind(id, resolved)
	return nil
}

// UnifyRelations makes two relations identical under m.
//
// Description:
//
//	A relation meta-variable is handled like an expression meta-variable,
//	bound to the other relation lifted into expression position. Equal,
//	Implies and Equivalent unify their parts pairwise; And and Or require
//	equal arity and unify members in list order; Not unifies its operand;
//	Predicate and TheoryRelation require matching names and arity.
//
// Outputs:
//   - error: nil on success, otherwise a *UnificationError.
func UnifyRelations(a, b term.Rel, m *Mapping) error {
	if a.IsVariable() || b.IsVariable() {
		return Unify(term.Lift(a).WithAddress(a.Addr), term.Lift(b).WithAddress(b.Addr), m)
	}

	va, oka := a.ConcreteValue()
	vb, okb := b.ConcreteValue()
	if !oka || !okb {
		return fail(ErrRelationMismatch, a, b)
	}

	switch x := va.(type) {
	case term.Equal:
		if y, ok := vb.(term.Equal); ok {
			if err := Unify(x.Left, y.Left, m); err != nil {
				return err
			}
			return Unify(x.Right, y.Right, m)
		}
	case term.Implies:
		if y, ok := vb.(term.Implies); ok {
			if err := UnifyRelations(x.Antecedent, y.Antecedent, m); err != nil {
				return err
			}
			return UnifyRelations(x.Consequent, y.Consequent, m)
		}
	case term.Equivalent:
		if y, ok := vb.(term.Equivalent); ok {
			if err := UnifyRelations(x.Left, y.Left, m); err != nil {
				return err
			}
			return UnifyRelations(x.Right, y.Right, m)
		}
	case term.And:
		if y, ok := vb.(term.And); ok && len(x.Items) == len(y.Items) {
			return unifyRelList(x.Items, y.Items, m)
		}
	case term.Or:
		if y, ok := vb.(term.Or); ok && len(x.Items) == len(y.Items) {
			return unifyRelList(x.Items, y.Items, m)
		}
	case term.Not:
		if y, ok := vb.(term.Not); ok {
			return UnifyRelations(x.Inner, y.Inner, m)
		}
	case term.True:
		if _, ok := vb.(term.True); ok {
			return nil
		}
	case term.False:
		if _, ok := vb.(term.False); ok {
			return nil
		}
	case term.Predicate:
		if y, ok := vb.(term.Predicate); ok && x.Name == y.Name && len(x.Args) == len(y.Args) {
			return unifyExprList(x.Args, y.Args, m)
		}
	case term.TheoryRelation:
		if y, ok := vb.(term.TheoryRelation); ok && x.Theory == y.Theory && x.Name == y.Name && len(x.Args) == len(y.Args) {
			return unifyExprList(x.Args, y.Args, m)
		}
	}
	return fail(ErrRelationMismatch, a, b)
}

func unifyExprList(a, b []term.Expr, m *Mapping) error {
	for i := range a {
		if err := Unify(a[i], b[i], m); err != nil {
			return err
		}
	}
	return nil
}

func unifyRelList(a, b []term.Rel, m *Mapping) error {
	for i := range a {
		if err := UnifyRelations(a[i], b[i], m); err != nil {
			return err
		}
	}
	return nil
}

// Occurs reports whether the meta-variable id occurs in e under m.
//
// Bound variables met along the way are followed through m. Each
// identifier is visited at most once, so pre-existing cycles in m
// terminate the search instead of recursing forever.
func Occurs(id term.Identifier, e term.Expr, m *Mapping) bool {
	c := occursCheck{target: id, m: m, visited: make(map[term.Identifier]bool)}
	return c.expr(e)
}

type occursCheck struct {
	target  term.Identifier
	m       *Mapping
	visited map[term.Identifier]bool
}

func (c *occursCheck) variable(id term.Identifier) bool {
	if id == c.target {
		return true
	}
	if c.visited[id] {
		return false
	}
	c.visited[id] = true
	if bound, ok := c.m.Lookup(id); ok {
		return c.expr(bound)
	}
	return false
}

func (c *occursCheck) expr(e term.Expr) bool {
	if id, ok := e.Variable(); ok {
		return c.variable(id)
	}
	v, ok := e.ConcreteValue()
	if !ok {
		return false
	}
	switch x := v.(type) {
	case term.RelationExpr:
		return c.rel(x.Rel)
	case term.TheoryExpr:
		for _, arg := range x.Args {
			if c.expr(arg) {
				return true
			}
		}
	case term.ViewAs:
		return c.expr(x.Inner)
	}
	return false
}

func (c *occursCheck) rel(r term.Rel) bool {
	if id, ok := r.Variable(); ok {
		return c.variable(id)
	}
	v, ok := r.ConcreteValue()
	if !ok {
		return false
	}
	switch x := v.(type) {
	case term.Equal:
		return c.expr(x.Left) || c.expr(x.Right)
	case term.And:
		return c.rels(x.Items)
	case term.Or:
		return c.rels(x.Items)
	case term.Not:
		return c.rel(x.Inner)
	case term.Implies:
		return c.rel(x.Antecedent) || c.rel(x.Consequent)
	case term.Equivalent:
		return c.rel(x.Left) || c.rel(x.Right)
	case term.Predicate:
		return c.exprs(x.Args)
	case term.TheoryRelation:
		return c.exprs(x.Args)
	}
	return false
}

func (c *occursCheck) rels(items []term.Rel) bool {
	for _, it := range items {
		if c.rel(it) {
			return true
		}
	}
	return false
}

func (c *occursCheck) exprs(items []term.Expr) bool {
	for _, it := range items {
		if c.expr(it) {
			return true
		}
	}
	return false
}

// Try runs fn against m and restores m to its prior state if fn fails.
//
// Outputs:
//   - error: The error returned by fn.
func Try(m *Mapping, fn func(*Mapping) error) error {
	snap := m.Snapshot()
	if err := fn(m); err != nil {
		m.Restore(snap)
		return err
	}
	return nil
}

// Relations unifies pattern against target in a fresh mapping.
//
// Outputs:
//   - *Mapping: The bindings on success, nil on failure.
//   - error: The unification failure.
func Relations(pattern, target term.Rel) (*Mapping, error) {
	m := NewMapping()
	if err := UnifyRelations(pattern, target, m); err != nil {
		return nil, err
	}
	return m, nil
}
