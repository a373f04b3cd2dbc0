// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Icon returns the one-character marker used when rendering a status.
func (s Status) Icon() string {
	switch s {
	case StatusComplete:
		return "✓"
	case StatusAbandoned:
		return "✗"
	case StatusDisproven:
		return "⊘"
	case StatusInProgress:
		return "→"
	default:
		return " "
	}
}

// Format returns a tree rendering of every root.
func (f *Forest) Format() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.roots) == 0 {
		return "Empty forest"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Nodes: %d\n", len(f.nodes)))
	for i, id := range f.roots {
		sb.WriteString("\n")
		f.formatNode(&sb, f.byID[id], "", i == len(f.roots)-1)
	}
	return sb.String()
}

func (f *Forest) formatNode(sb *strings.Builder, n *node, prefix string, isLast bool) {
	branch := "├── "
	if isLast {
		branch = "└── "
	}

	via := ""
	if n.tactic != nil {
		via = " ‹" + n.tactic.String() + "›"
	}
	sb.WriteString(fmt.Sprintf("%s%s[%s] %s%s %s\n",
		prefix, branch, n.id, truncate(n.goal.Statement.String(), 60), via, n.status.Icon()))

	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}

	var children []string
	for _, g := range n.groups {
		children = append(children, g.Children...)
	}
	for i, id := range children {
		f.formatNode(sb, f.byID[id], childPrefix, i == len(children)-1)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

type nodeJSON struct {
	ID            string      `json:"id"`
	Statement     string      `json:"statement"`
	Status        Status      `json:"status"`
	Tactic        string      `json:"tactic,omitempty"`
	Justification string      `json:"justification,omitempty"`
	Depth         int         `json:"depth"`
	CreatedAt     time.Time   `json:"created_at"`
	Groups        []groupJSON `json:"groups,omitempty"`
}

type groupJSON struct {
	Tactic   string     `json:"tactic"`
	Outcome  string     `json:"outcome"`
	Children []nodeJSON `json:"children"`
}

// MarshalJSON implements json.Marshaler, nesting children under their
// application groups.
func (f *Forest) MarshalJSON() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	type forestJSON struct {
		Nodes int        `json:"nodes"`
		Roots []nodeJSON `json:"roots"`
	}
	out := forestJSON{Nodes: len(f.nodes), Roots: make([]nodeJSON, 0, len(f.roots))}
	for _, id := range f.roots {
		out.Roots = append(out.Roots, f.toJSON(f.byID[id]))
	}
	return json.Marshal(&out)
}

func (f *Forest) toJSON(n *node) nodeJSON {
	j := nodeJSON{
		ID:            n.id,
		Statement:     n.goal.Statement.String(),
		Status:        n.status,
		Justification: n.justification,
		Depth:         n.depth,
		CreatedAt:     n.createdAt,
	}
	if n.tactic != nil {
		j.Tactic = n.tactic.String()
	}
	for _, g := range n.groups {
		gj := groupJSON{Outcome: string(g.Outcome)}
		if g.Tactic != nil {
			gj.Tactic = g.Tactic.String()
		}
		for _, id := range g.Children {
			gj.Children = append(gj.Children, f.toJSON(f.byID[id]))
		}
		j.Groups = append(j.Groups, gj)
	}
	return j
}
