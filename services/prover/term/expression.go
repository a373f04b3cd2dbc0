// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package term

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprKind discriminates Expression variants.
type ExprKind string

const (
	ExprVar      ExprKind = "var"
	ExprRelation ExprKind = "relation"
	ExprObject   ExprKind = "object"
	ExprTheory   ExprKind = "theory"
	ExprNumber   ExprKind = "number"
	ExprView     ExprKind = "view"
)

// Expression is the closed union of expression forms.
type Expression interface {
	ExprKind() ExprKind
	isExpression()
}

// Var references a bound or free object-level variable.
type Var struct {
	ID Identifier
}

// RelationExpr places a relation in expression position, e.g. as the type
// of a hypothesis.
type RelationExpr struct {
	Rel Rel
}

// Object is a theory-independent named object.
type Object struct {
	Name string
	Sort string
}

// TheoryExpr is a theory-specific operation such as group.mul(a, b).
type TheoryExpr struct {
	Theory string
	Op     string
	Args   []Expr
}

// Number is a numeric literal.
type Number struct {
	Value int64
}

// ViewAs reinterprets an expression under another theory.
type ViewAs struct {
	View  string
	Inner Expr
}

func (Var) ExprKind() ExprKind          { return ExprVar }
func (RelationExpr) ExprKind() ExprKind { return ExprRelation }
func (Object) ExprKind() ExprKind       { return ExprObject }
func (TheoryExpr) ExprKind() ExprKind   { return ExprTheory }
func (Number) ExprKind() ExprKind       { return ExprNumber }
func (ViewAs) ExprKind() ExprKind       { return ExprView }

func (Var) isExpression()          {}
func (RelationExpr) isExpression() {}
func (Object) isExpression()       {}
func (TheoryExpr) isExpression()   {}
func (Number) isExpression()       {}
func (ViewAs) isExpression()       {}

func (v Var) String() string          { return v.ID.String() }
func (r RelationExpr) String() string { return r.Rel.String() }
func (n Number) String() string       { return strconv.FormatInt(n.Value, 10) }
func (v ViewAs) String() string       { return fmt.Sprintf("[%s](%s)", v.View, v.Inner) }

func (o Object) String() string {
	if o.Sort == "" {
		return o.Name
	}
	return o.Name + ":" + o.Sort
}

func (t TheoryExpr) String() string {
	return fmt.Sprintf("%s.%s(%s)", t.Theory, t.Op, joinExprs(t.Args))
}

func joinExprs(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// VarRef builds a concrete reference to the object variable name.
func VarRef(name string) Expr {
	return Concrete[Expression](Var{ID: Ident(name)})
}

// VarOf builds a concrete reference to id.
func VarOf(id Identifier) Expr {
	return Concrete[Expression](Var{ID: id})
}

// MetaVar builds an expression meta-variable.
func MetaVar(name string) Expr {
	return Meta[Expression](Ident(name))
}

// Num builds a numeric literal.
func Num(v int64) Expr {
	return Concrete[Expression](Number{Value: v})
}

// Obj builds an unsorted object.
func Obj(name string) Expr {
	return Concrete[Expression](Object{Name: name})
}

// Apply builds a theory-specific operation.
func Apply(theory, op string, args ...Expr) Expr {
	return Concrete[Expression](TheoryExpr{Theory: theory, Op: op, Args: args})
}

// View wraps e in a viewed-as reinterpretation.
func View(view string, e Expr) Expr {
	return Concrete[Expression](ViewAs{View: view, Inner: e})
}

// Lift places a relation in expression position.
func Lift(r Rel) Expr {
	return Concrete[Expression](RelationExpr{Rel: r})
}

// AsRelation extracts a relation from expression position.
//
// A concrete RelationExpr yields its relation; an expression meta-variable
// yields a relation meta-variable with the same identifier and address.
func AsRelation(e Expr) (Rel, bool) {
	if id, ok := e.Variable(); ok {
		return MetaAt[Relation](e.Addr, id), true
	}
	v, ok := e.ConcreteValue()
	if !ok {
		return Rel{}, false
	}
	re, ok := v.(RelationExpr)
	if !ok {
		return Rel{}, false
	}
	return re.Rel, true
}
