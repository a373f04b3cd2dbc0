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
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Scope selects the region of a goal a targeted tactic searches.
type Scope string

const (
	// ScopeStatement searches the statement only.
	ScopeStatement Scope = "statement"

	// ScopeContext searches the named context entries only.
	ScopeContext Scope = "context"

	// ScopeBoth searches the named context entries, then the statement.
	ScopeBoth Scope = "both"
)

// Target pins a tactic's search to a region of the goal.
//
// Description:
//
//	Entries names the context entries for ScopeContext and ScopeBoth; an
//	empty list means every entry. ID, when set, restricts matches to the
//	sub-tree rooted at that address. Indices select positional members of
//	an ordered And/Or at the scope root, and AllowReorder lets the pattern
//	list those members in a different order.
type Target struct {
	Scope        Scope             `json:"scope" yaml:"scope"`
	Entries      []term.Identifier `json:"entries,omitempty" yaml:"entries,omitempty"`
	ID           term.Address      `json:"id,omitempty" yaml:"id,omitempty"`
	Indices      []int             `json:"indices,omitempty" yaml:"indices,omitempty"`
	AllowReorder bool              `json:"allow_reorder,omitempty" yaml:"allow_reorder,omitempty"`
}

// StatementTarget targets the whole statement.
func StatementTarget() Target {
	return Target{Scope: ScopeStatement}
}

// ContextTarget targets the named context entries.
func ContextTarget(names ...string) Target {
	return Target{Scope: ScopeContext, Entries: idents(names)}
}

// BothTarget targets the named context entries and the statement.
func BothTarget(names ...string) Target {
	return Target{Scope: ScopeBoth, Entries: idents(names)}
}

// At returns a copy of t restricted to the sub-tree at addr.
func (t Target) At(addr term.Address) Target {
	t.ID = addr
	return t
}

// IncludesStatement reports whether the statement is searched.
func (t Target) IncludesStatement() bool {
	return t.Scope == "" || t.Scope == ScopeStatement || t.Scope == ScopeBoth
}

// IncludesEntry reports whether the context entry named id is searched.
func (t Target) IncludesEntry(id term.Identifier) bool {
	if t.Scope != ScopeContext && t.Scope != ScopeBoth {
		return false
	}
	if len(t.Entries) == 0 {
		return true
	}
	for _, e := range t.Entries {
		if e == id {
			return true
		}
	}
	return false
}

func idents(names []string) []term.Identifier {
	if len(names) == 0 {
		return nil
	}
	out := make([]term.Identifier, len(names))
	for i, n := range names {
		out[i] = term.Ident(n)
	}
	return out
}
