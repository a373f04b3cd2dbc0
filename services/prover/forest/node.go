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
	"time"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
)

// Status is the derived proof state of a node.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusAbandoned  Status = "abandoned"
	StatusDisproven  Status = "disproven"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for complete, abandoned and disproven nodes.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusAbandoned || s == StatusDisproven
}

// Failed returns true if the branch cannot contribute to a proof.
func (s Status) Failed() bool {
	return s == StatusAbandoned || s == StatusDisproven
}

// Group is the set of children produced by one tactic application. All of
// a group's children must be proved for the group to prove its parent.
type Group struct {
	Tactic        tactic.Tactic
	Children      []string
	Outcome       tactic.Outcome
	Justification string
}

// node is the arena record. Its goal is never modified after insertion.
type node struct {
	id            string
	index         int
	parent        string
	goal          goal.Goal
	tactic        tactic.Tactic
	justification string
	depth         int
	createdAt     time.Time

	status    Status
	groups    []Group
	children  int
	disproven bool
	abandoned bool
}

// Node is a read-only snapshot of a proof node.
type Node struct {
	ID    string
	Index int

	// Parent is empty for roots.
	Parent string

	Goal goal.Goal

	// Tactic produced this node; nil for roots.
	Tactic        tactic.Tactic
	Justification string
	Depth         int
	Status        Status
	Groups        []Group
	CreatedAt     time.Time
}

// IsRoot returns true if the node has no parent.
func (n Node) IsRoot() bool {
	return n.Parent == ""
}

// IsLeaf returns true if no tactic has been committed below the node.
func (n Node) IsLeaf() bool {
	return len(n.Groups) == 0
}

// Children returns the IDs of every child across all groups.
func (n Node) Children() []string {
	var out []string
	for _, g := range n.Groups {
		out = append(out, g.Children...)
	}
	return out
}

func (n *node) snapshot() Node {
	groups := make([]Group, len(n.groups))
	for i, g := range n.groups {
		g.Children = append([]string(nil), g.Children...)
		groups[i] = g
	}
	return Node{
		ID:            n.id,
		Index:         n.index,
		Parent:        n.parent,
		Goal:          n.goal.Clone(),
		Tactic:        n.tactic,
		Justification: n.justification,
		Depth:         n.depth,
		Status:        n.status,
		Groups:        groups,
		CreatedAt:     n.createdAt,
	}
}
