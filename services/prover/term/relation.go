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
	"strings"
)

// RelKind discriminates Relation variants.
type RelKind string

const (
	RelEqual      RelKind = "equal"
	RelAnd        RelKind = "and"
	RelOr         RelKind = "or"
	RelNot        RelKind = "not"
	RelImplies    RelKind = "implies"
	RelEquivalent RelKind = "equivalent"
	RelTrue       RelKind = "true"
	RelFalse      RelKind = "false"
	RelPredicate  RelKind = "predicate"
	RelTheory     RelKind = "theory"
)

// Relation is the closed union of relation forms.
type Relation interface {
	RelKind() RelKind
	isRelation()
}

// Equal asserts Left = Right.
type Equal struct {
	Left, Right Expr
}

// And is an ordered conjunction.
type And struct {
	Items []Rel
}

// Or is an ordered disjunction.
type Or struct {
	Items []Rel
}

// Not negates Inner.
type Not struct {
	Inner Rel
}

// Implies is Antecedent → Consequent.
type Implies struct {
	Antecedent, Consequent Rel
}

// Equivalent is Left ↔ Right.
type Equivalent struct {
	Left, Right Rel
}

// True is the trivially provable relation. A goal whose statement is True
// is closed.
type True struct{}

// False is the absurd relation.
type False struct{}

// Predicate is a generic named relation over expressions, e.g. P(x).
type Predicate struct {
	Name string
	Args []Expr
}

// TheoryRelation is a relation owned by a domain theory, e.g.
// group.subgroup_of(H, G).
type TheoryRelation struct {
	Theory string
	Name   string
	Args   []Expr
}

func (Equal) RelKind() RelKind          { return RelEqual }
func (And) RelKind() RelKind            { return RelAnd }
func (Or) RelKind() RelKind             { return RelOr }
func (Not) RelKind() RelKind            { return RelNot }
func (Implies) RelKind() RelKind        { return RelImplies }
func (Equivalent) RelKind() RelKind     { return RelEquivalent }
func (True) RelKind() RelKind           { return RelTrue }
func (False) RelKind() RelKind          { return RelFalse }
func (Predicate) RelKind() RelKind      { return RelPredicate }
func (TheoryRelation) RelKind() RelKind { return RelTheory }

func (Equal) isRelation()          {}
func (And) isRelation()            {}
func (Or) isRelation()             {}
func (Not) isRelation()            {}
func (Implies) isRelation()        {}
func (Equivalent) isRelation()     {}
func (True) isRelation()           {}
func (False) isRelation()          {}
func (Predicate) isRelation()      {}
func (TheoryRelation) isRelation() {}

func (r Equal) String() string      { return fmt.Sprintf("(%s = %s)", r.Left, r.Right) }
func (r And) String() string        { return joinRels(r.Items, " ∧ ", "⊤") }
func (r Or) String() string         { return joinRels(r.Items, " ∨ ", "⊥") }
func (r Not) String() string        { return "¬" + r.Inner.String() }
func (r Implies) String() string    { return fmt.Sprintf("(%s → %s)", r.Antecedent, r.Consequent) }
func (r Equivalent) String() string { return fmt.Sprintf("(%s ↔ %s)", r.Left, r.Right) }
func (True) String() string         { return "⊤" }
func (False) String() string        { return "⊥" }

func (r Predicate) String() string {
	return fmt.Sprintf("%s(%s)", r.Name, joinExprs(r.Args))
}

func (r TheoryRelation) String() string {
	return fmt.Sprintf("%s.%s(%s)", r.Theory, r.Name, joinExprs(r.Args))
}

func joinRels(items []Rel, sep, empty string) string {
	if len(items) == 0 {
		return empty
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Eq builds left = right.
func Eq(left, right Expr) Rel {
	return Concrete[Relation](Equal{Left: left, Right: right})
}

// Conj builds an ordered conjunction.
func Conj(items ...Rel) Rel {
	return Concrete[Relation](And{Items: items})
}

// Disj builds an ordered disjunction.
func Disj(items ...Rel) Rel {
	return Concrete[Relation](Or{Items: items})
}

// Neg builds ¬inner.
func Neg(inner Rel) Rel {
	return Concrete[Relation](Not{Inner: inner})
}

// Imp builds antecedent → consequent.
func Imp(antecedent, consequent Rel) Rel {
	return Concrete[Relation](Implies{Antecedent: antecedent, Consequent: consequent})
}

// Iff builds left ↔ right.
func Iff(left, right Rel) Rel {
	return Concrete[Relation](Equivalent{Left: left, Right: right})
}

// Truth builds ⊤.
func Truth() Rel {
	return Concrete[Relation](True{})
}

// Falsity builds ⊥.
func Falsity() Rel {
	return Concrete[Relation](False{})
}

// Pred builds a named predicate application.
func Pred(name string, args ...Expr) Rel {
	return Concrete[Relation](Predicate{Name: name, Args: args})
}

// TheoryRel builds a theory-specific relation.
func TheoryRel(theory, name string, args ...Expr) Rel {
	return Concrete[Relation](TheoryRelation{Theory: theory, Name: name, Args: args})
}

// MetaRel builds a relation meta-variable, e.g. a proposition placeholder P.
func MetaRel(name string) Rel {
	return Meta[Relation](Ident(name))
}

// IsTrue reports whether r is the concrete relation ⊤.
func IsTrue(r Rel) bool {
	v, ok := r.ConcreteValue()
	if !ok {
		return false
	}
	_, ok = v.(True)
	return ok
}

// IsFalse reports whether r is the concrete relation ⊥.
func IsFalse(r Rel) bool {
	v, ok := r.ConcreteValue()
	if !ok {
		return false
	}
	_, ok = v.(False)
	return ok
}
