// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package goal

import (
	"fmt"
	"strings"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Definition is the definition state of a context entry: abstractly
// introduced, or concretely defined by a value.
type Definition struct {
	value    term.Expr
	concrete bool
}

// Abstract returns the definition state of an introduced entry.
func Abstract() Definition {
	return Definition{}
}

// Defined returns the definition state of an entry bound to value.
func Defined(value term.Expr) Definition {
	return Definition{value: value, concrete: true}
}

// Value returns the defining value if the entry is concrete.
func (d Definition) Value() (term.Expr, bool) {
	return d.value, d.concrete
}

// IsAbstract returns true for introduced entries without a value.
func (d Definition) IsAbstract() bool {
	return !d.concrete
}

// Entry is one named context entry: a hypothesis or a variable.
type Entry struct {
	Name        term.Identifier
	Type        term.Expr
	Definition  Definition
	Description string
}

// Hypothesis builds an abstract entry whose type is the relation r.
func Hypothesis(name string, r term.Rel) Entry {
	return Entry{Name: term.Ident(name), Type: term.Lift(r), Definition: Abstract()}
}

// Variable builds an abstract entry of the given type.
func Variable(name string, typ term.Expr) Entry {
	return Entry{Name: term.Ident(name), Type: typ, Definition: Abstract()}
}

// Let builds a concretely defined entry.
func Let(name string, typ, value term.Expr) Entry {
	return Entry{Name: term.Ident(name), Type: typ, Definition: Defined(value)}
}

// Relation returns the entry's type when it is a relation, i.e. when the
// entry is a hypothesis.
func (e Entry) Relation() (term.Rel, bool) {
	v, ok := e.Type.ConcreteValue()
	if !ok {
		return term.Rel{}, false
	}
	re, ok := v.(term.RelationExpr)
	if !ok {
		return term.Rel{}, false
	}
	return re.Rel, true
}

func (e Entry) clone() Entry {
	out := e
	out.Type = term.CloneExpr(e.Type)
	if v, ok := e.Definition.Value(); ok {
		out.Definition = Defined(term.CloneExpr(v))
	}
	return out
}

func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Name.String())
	sb.WriteString(" : ")
	sb.WriteString(e.Type.String())
	if v, ok := e.Definition.Value(); ok {
		sb.WriteString(" := ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Context is the ordered list of entries available while proving a goal.
//
// Names are unique; entries are addressed only by name.
type Context []Entry

// Lookup finds the entry named id.
//
// Outputs:
//   - Entry: The entry, zero value if absent.
//   - int: Its position, -1 if absent.
//   - bool: True if found.
func (c Context) Lookup(id term.Identifier) (Entry, int, bool) {
	for i, e := range c {
		if e.Name == id {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}

// Has reports whether an entry named id exists.
func (c Context) Has(id term.Identifier) bool {
	_, _, ok := c.Lookup(id)
	return ok
}

// With returns a copy of c with e appended.
//
// Outputs:
//   - Context: The extended copy. c is unchanged.
//   - error: ErrDuplicateName if the name is taken.
func (c Context) With(e Entry) (Context, error) {
	if c.Has(e.Name) {
		return c, fmt.Errorf("%w: %s", ErrDuplicateName, e.Name)
	}
	out := make(Context, len(c), len(c)+1)
	copy(out, c)
	return append(out, e), nil
}

// Without returns a copy of c with the entry named id removed.
func (c Context) Without(id term.Identifier) Context {
	out := make(Context, 0, len(c))
	for _, e := range c {
		if e.Name != id {
			out = append(out, e)
		}
	}
	return out
}

// Replace returns a copy of c with the entry at position i replaced.
func (c Context) Replace(i int, e Entry) Context {
	out := make(Context, len(c))
	copy(out, c)
	out[i] = e
	return out
}

// Clone deep-copies the context, preserving addresses.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for i, e := range c {
		out[i] = e.clone()
	}
	return out
}

// FreshName returns an identifier based on base that no entry uses and
// that is not in reserved.
func (c Context) FreshName(base string, reserved ...term.Identifier) term.Identifier {
	taken := make(map[term.Identifier]bool, len(c)+len(reserved))
	for _, e := range c {
		taken[e.Name] = true
	}
	for _, r := range reserved {
		taken[r] = true
	}
	id := term.Ident(base)
	for taken[id] {
		id.Index++
	}
	return id
}
