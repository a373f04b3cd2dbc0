// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package unify

import (
	"sort"
	"strings"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/subst"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Mapping is an incremental substitution from meta-variable identifiers to
// expressions.
//
// Description:
//
//	Bindings are recorded by Unify and may chain (?X → ?Y → 3). Lookup
//	returns the direct binding; term.Dereference follows chains. Relation
//	meta-variables are bound to their relation lifted into expression
//	position.
//
// Thread Safety:
//
//	Not safe for concurrent use. A mapping belongs to one tactic
//	application.
type Mapping struct {
	bindings map[term.Identifier]term.Expr
	order    []term.Identifier
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{bindings: make(map[term.Identifier]term.Expr)}
}

// Lookup returns the direct binding of id.
func (m *Mapping) Lookup(id term.Identifier) (term.Expr, bool) {
	if m == nil {
		return term.Expr{}, false
	}
	e, ok := m.bindings[id]
	return e, ok
}

// Bind records id → e, replacing any previous binding.
func (m *Mapping) Bind(id term.Identifier, e term.Expr) {
	if _, exists := m.bindings[id]; !exists {
		m.order = append(m.order, id)
	}
	m.bindings[id] = e
}

// Len returns the number of bindings.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.bindings)
}

// IDs returns the bound identifiers in binding order.
func (m *Mapping) IDs() []term.Identifier {
	out := make([]term.Identifier, len(m.order))
	copy(out, m.order)
	return out
}

// Snapshot captures the current bindings for a later Restore.
type Snapshot struct {
	bindings map[term.Identifier]term.Expr
	order    []term.Identifier
}

// Snapshot returns a copy of the current bindings.
func (m *Mapping) Snapshot() Snapshot {
	s := Snapshot{
		bindings: make(map[term.Identifier]term.Expr, len(m.bindings)),
		order:    make([]term.Identifier, len(m.order)),
	}
	for k, v := range m.bindings {
		s.bindings[k] = v
	}
	copy(s.order, m.order)
	return s
}

// Restore discards every binding made since s was taken.
func (m *Mapping) Restore(s Snapshot) {
	m.bindings = make(map[term.Identifier]term.Expr, len(s.bindings))
	for k, v := range s.bindings {
		m.bindings[k] = v
	}
	m.order = make([]term.Identifier, len(s.order))
	copy(m.order, s.order)
}

// Clone returns an independent copy of the mapping.
func (m *Mapping) Clone() *Mapping {
	c := NewMapping()
	c.Restore(m.Snapshot())
	return c
}

// Resolve returns a completed mapping.
//
// Description:
//
//	Every value in the result has all bound meta-variables substituted
//	through, so a single substitution pass with the completed mapping is
//	final and repeated passes are no-ops. Chains are followed on demand;
//	an id reached again while it is being resolved is left as is.
//
// Outputs:
//   - *Mapping: A new mapping. m is unchanged.
func (m *Mapping) Resolve() *Mapping {
	r := &resolver{
		src:    m,
		done:   make(map[term.Identifier]term.Expr, len(m.bindings)),
		active: make(map[term.Identifier]bool),
	}
	out := NewMapping()
	for _, id := range m.order {
		v, _ := r.Lookup(id)
		out.Bind(id, v)
	}
	return out
}

type resolver struct {
	src    *Mapping
	done   map[term.Identifier]term.Expr
	active map[term.Identifier]bool
}

func (r *resolver) Lookup(id term.Identifier) (term.Expr, bool) {
	if v, ok := r.done[id]; ok {
		return v, true
	}
	raw, ok := r.src.bindings[id]
	if !ok {
		return term.Expr{}, false
	}
	if r.active[id] {
		return raw, true
	}
	r.active[id] = true
	v := subst.Expression(raw, r)
	delete(r.active, id)
	r.done[id] = v
	return v, true
}

// String renders the bindings sorted by identifier, e.g. {X ↦ 1, Y ↦ a}.
func (m *Mapping) String() string {
	ids := m.IDs()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].Index < ids[j].Index
	})
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String() + " ↦ " + m.bindings[id].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
