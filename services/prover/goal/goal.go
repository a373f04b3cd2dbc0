// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package goal defines proof goals: a statement to prove together with its
// ordered context and quantifier prefix.
package goal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

var (
	// ErrDuplicateName indicates a context entry name is already taken.
	ErrDuplicateName = errors.New("duplicate context entry name")

	// ErrUnboundIdentifier indicates a free identifier in the statement is
	// neither quantified nor in the context.
	ErrUnboundIdentifier = errors.New("unbound identifier")

	// ErrEmptyStatement indicates a goal without a statement.
	ErrEmptyStatement = errors.New("goal has no statement")
)

// QuantifierKind is the binder of a quantified variable.
type QuantifierKind string

const (
	Universal         QuantifierKind = "forall"
	Existential       QuantifierKind = "exists"
	UniqueExistential QuantifierKind = "exists_unique"
)

// Symbol returns the logical symbol for the binder.
func (k QuantifierKind) Symbol() string {
	switch k {
	case Universal:
		return "∀"
	case Existential:
		return "∃"
	case UniqueExistential:
		return "∃!"
	default:
		return "?"
	}
}

// Quantifier binds one variable of the goal's statement.
type Quantifier struct {
	Variable term.Identifier
	Kind     QuantifierKind

	// Domain is the variable's type; zero when unspecified.
	Domain term.Expr
}

// ForAll builds a universal quantifier.
func ForAll(name string, domain term.Expr) Quantifier {
	return Quantifier{Variable: term.Ident(name), Kind: Universal, Domain: domain}
}

// Exists builds an existential quantifier.
func Exists(name string, domain term.Expr) Quantifier {
	return Quantifier{Variable: term.Ident(name), Kind: Existential, Domain: domain}
}

// ExistsUnique builds a unique-existential quantifier.
func ExistsUnique(name string, domain term.Expr) Quantifier {
	return Quantifier{Variable: term.Ident(name), Kind: UniqueExistential, Domain: domain}
}

// Goal is a statement to prove inside a typed context.
//
// A goal stored in a proof node is never mutated; tactics work on copies
// obtained via Clone or the With* helpers.
type Goal struct {
	Context     Context
	Quantifiers []Quantifier
	Statement   term.Rel
}

// New builds a goal with an empty context.
func New(statement term.Rel, quantifiers ...Quantifier) Goal {
	return Goal{Statement: statement, Quantifiers: quantifiers}
}

// Clone deep-copies the goal, preserving addresses.
func (g Goal) Clone() Goal {
	out := Goal{
		Context:   g.Context.Clone(),
		Statement: term.CloneRel(g.Statement),
	}
	if g.Quantifiers != nil {
		out.Quantifiers = make([]Quantifier, len(g.Quantifiers))
		for i, q := range g.Quantifiers {
			q.Domain = term.CloneExpr(q.Domain)
			out.Quantifiers[i] = q
		}
	}
	return out
}

// WithStatement returns a copy of g with statement r.
func (g Goal) WithStatement(r term.Rel) Goal {
	out := g.Clone()
	out.Statement = r
	return out
}

// WithEntry returns a copy of g with e appended to the context.
func (g Goal) WithEntry(e Entry) (Goal, error) {
	ctx, err := g.Context.With(e)
	if err != nil {
		return g, err
	}
	out := g.Clone()
	out.Context = ctx
	return out, nil
}

// Quantifier returns the quantifier binding id and its position.
func (g Goal) Quantifier(id term.Identifier) (Quantifier, int, bool) {
	for i, q := range g.Quantifiers {
		if q.Variable == id {
			return q, i, true
		}
	}
	return Quantifier{}, -1, false
}

// WithoutQuantifier returns a copy of g with the quantifier at i removed.
func (g Goal) WithoutQuantifier(i int) Goal {
	out := g.Clone()
	out.Quantifiers = append(out.Quantifiers[:i:i], out.Quantifiers[i+1:]...)
	return out
}

// IsClosed reports whether the statement is ⊤.
func (g Goal) IsClosed() bool {
	return term.IsTrue(g.Statement)
}

// Binds reports whether id is bound by a quantifier or named in the context.
func (g Goal) Binds(id term.Identifier) bool {
	if _, _, ok := g.Quantifier(id); ok {
		return true
	}
	return g.Context.Has(id)
}

// Validate checks the goal invariants.
//
// Description:
//
//	Context names must be unique, and every free identifier referenced by
//	the statement must be bound by a quantifier or defined in the context.
//
// Outputs:
//   - error: Non-nil describing the first violation.
func (g Goal) Validate() error {
	if g.Statement.IsZero() {
		return ErrEmptyStatement
	}
	seen := make(map[term.Identifier]bool, len(g.Context))
	for _, e := range g.Context {
		if seen[e.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, e.Name)
		}
		seen[e.Name] = true
	}
	for _, id := range term.CollectRel(g.Statement).Vars {
		if !g.Binds(id) {
			return fmt.Errorf("%w: %s", ErrUnboundIdentifier, id)
		}
	}
	return nil
}

// Equal reports structural equality of two goals, ignoring addresses.
func (g Goal) Equal(o Goal) bool {
	if len(g.Context) != len(o.Context) || len(g.Quantifiers) != len(o.Quantifiers) {
		return false
	}
	for i := range g.Context {
		a, b := g.Context[i], o.Context[i]
		if a.Name != b.Name || !term.EqualExpr(a.Type, b.Type) || a.Definition.IsAbstract() != b.Definition.IsAbstract() {
			return false
		}
		av, _ := a.Definition.Value()
		bv, _ := b.Definition.Value()
		if !a.Definition.IsAbstract() && !term.EqualExpr(av, bv) {
			return false
		}
	}
	for i := range g.Quantifiers {
		a, b := g.Quantifiers[i], o.Quantifiers[i]
		if a.Variable != b.Variable || a.Kind != b.Kind || !term.EqualExpr(a.Domain, b.Domain) {
			return false
		}
	}
	return term.EqualRel(g.Statement, o.Statement)
}

// String renders the goal in turnstile form.
func (g Goal) String() string {
	var sb strings.Builder
	for _, e := range g.Context {
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	sb.WriteString("⊢ ")
	for _, q := range g.Quantifiers {
		sb.WriteString(q.Kind.Symbol())
		sb.WriteString(q.Variable.String())
		if !q.Domain.IsZero() {
			sb.WriteString(":")
			sb.WriteString(q.Domain.String())
		}
		sb.WriteString(". ")
	}
	sb.WriteString(g.Statement.String())
	return sb.String()
}
