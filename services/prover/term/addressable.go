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

	"github.com/google/uuid"
)

// Identifier names a variable: bound, free or meta.
//
// Two identifiers are equal when both the name and the disambiguation
// index match, so plain == comparison is structural.
type Identifier struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index,omitempty" yaml:"index,omitempty"`
}

// Ident returns the identifier with the given name and index 0.
func Ident(name string) Identifier {
	return Identifier{Name: name}
}

// IsZero returns true for the empty identifier.
func (id Identifier) IsZero() bool {
	return id.Name == "" && id.Index == 0
}

// String renders the identifier, appending the index when non-zero.
func (id Identifier) String() string {
	if id.Index == 0 {
		return id.Name
	}
	return fmt.Sprintf("%s_%d", id.Name, id.Index)
}

// Address is a stable key identifying one sub-term occurrence.
type Address string

// NewAddress mints a fresh address.
func NewAddress() Address {
	return Address(uuid.NewString())
}

// Addressable wraps a payload with its address.
//
// The payload is either a concrete value of type T or a meta-variable
// identifier. The zero value carries neither and reports IsZero.
type Addressable[T any] struct {
	// Addr identifies this occurrence for targeted tactics.
	Addr Address

	value T
	meta  *Identifier
	set   bool
}

// Concrete wraps a concrete value under a freshly minted address.
func Concrete[T any](v T) Addressable[T] {
	return At(NewAddress(), v)
}

// At wraps a concrete value under the given address.
func At[T any](addr Address, v T) Addressable[T] {
	return Addressable[T]{Addr: addr, value: v, set: true}
}

// Meta creates a meta-variable placeholder under a freshly minted address.
func Meta[T any](id Identifier) Addressable[T] {
	return MetaAt[T](NewAddress(), id)
}

// MetaAt creates a meta-variable placeholder under the given address.
func MetaAt[T any](addr Address, id Identifier) Addressable[T] {
	v := id
	return Addressable[T]{Addr: addr, meta: &v, set: true}
}

// ConcreteValue returns the payload if concrete.
//
// Outputs:
//   - T: The payload, or the zero value of T for meta-variables.
//   - bool: True if the payload is concrete.
func (a Addressable[T]) ConcreteValue() (T, bool) {
	if a.meta != nil || !a.set {
		var zero T
		return zero, false
	}
	return a.value, true
}

// Variable returns the meta-variable identifier if this is a placeholder.
func (a Addressable[T]) Variable() (Identifier, bool) {
	if a.meta == nil {
		return Identifier{}, false
	}
	return *a.meta, true
}

// IsVariable returns true if the payload is a meta-variable.
func (a Addressable[T]) IsVariable() bool {
	return a.meta != nil
}

// IsZero returns true if neither a value nor a variable was set.
func (a Addressable[T]) IsZero() bool {
	return !a.set
}

// WithAddress returns a copy carrying addr.
func (a Addressable[T]) WithAddress(addr Address) Addressable[T] {
	a.Addr = addr
	return a
}

// String renders the payload; meta-variables print as ?name.
func (a Addressable[T]) String() string {
	if a.meta != nil {
		return "?" + a.meta.String()
	}
	if !a.set {
		return "<empty>"
	}
	return fmt.Sprint(a.value)
}

// Expr is an addressable expression occurrence.
type Expr = Addressable[Expression]

// Rel is an addressable relation occurrence.
type Rel = Addressable[Relation]

// Bindings resolves meta-variables. unify.Mapping implements it.
type Bindings interface {
	Lookup(id Identifier) (Expr, bool)
}

// Dereference follows a chain of bound meta-variables until it reaches a
// concrete expression or an unbound variable.
//
// A meta-variable standing in relation position (RelationExpr wrapping a
// meta relation) is followed the same way.
func Dereference(e Expr, b Bindings) Expr {
	seen := make(map[Identifier]bool)
	for {
		id, ok := metaOf(e)
		if !ok || seen[id] {
			return e
		}
		seen[id] = true
		next, bound := b.Lookup(id)
		if !bound {
			return e
		}
		e = next
	}
}

// metaOf returns the identifier of an expression-level or relation-level
// meta-variable.
func metaOf(e Expr) (Identifier, bool) {
	if id, ok := e.Variable(); ok {
		return id, true
	}
	if v, ok := e.ConcreteValue(); ok {
		if re, ok := v.(RelationExpr); ok {
			return re.Rel.Variable()
		}
	}
	return Identifier{}, false
}

// MetaIdentifier reports the meta-variable an expression stands for, looking
// through a RelationExpr wrapper around a meta relation.
func MetaIdentifier(e Expr) (Identifier, bool) {
	return metaOf(e)
}
