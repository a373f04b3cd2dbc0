// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package forest records proof attempts as a forest of goals linked by
// tactic applications.
//
// Nodes live in an append-only arena and are never removed, so the full
// proof history is kept. Every node has a branch-local path ID: roots are
// "1", "2", ...; children of "1" are "1.1", "1.2", ...
//
// Status is derived, never set by tactics:
//
//	leaf:     pending, or complete when its statement is ⊤, disproven when
//	          produced by a disproof, abandoned only through Abandon
//	internal: complete when some group has every child complete,
//	          disproven when a disproof group refutes it,
//	          abandoned when every group has a failed child,
//	          in progress otherwise
//
// Parent statuses are recomputed up the ancestor chain on every change.
package forest

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
)

var (
	// ErrNodeNotFound is returned for unknown node IDs.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotLeaf is returned when abandoning a node that has children.
	ErrNotLeaf = errors.New("node has children")

	// ErrClosedNode is returned when committing below a terminal leaf.
	ErrClosedNode = errors.New("node is closed")

	// ErrNoGoals is returned when committing a result without goals.
	ErrNoGoals = errors.New("result has no goals")

	// ErrNotApplied is returned when committing a NoChange or Error result.
	ErrNotApplied = errors.New("tactic was not applied")
)

// Forest owns every proof node and the parent → children adjacency.
//
// Thread Safety: Safe for concurrent use. A forest normally belongs to one
// session; the lock lets readers such as HTTP handlers inspect it.
type Forest struct {
	mu    sync.RWMutex
	nodes []*node
	byID  map[string]*node
	roots []string
}

// New creates an empty forest.
func New() *Forest {
	return &Forest{byID: make(map[string]*node)}
}

// AddRoot adds a root node holding g.
//
// Inputs:
//   - g: The initial goal. Must satisfy goal.Validate.
//
// Outputs:
//   - string: The root's path ID.
//   - error: The validation failure, if any.
func (f *Forest) AddRoot(g goal.Goal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", fmt.Errorf("add root: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := strconv.Itoa(len(f.roots) + 1)
	n := f.insert(id, "", g.Clone(), nil, "", 0)
	f.roots = append(f.roots, id)
	n.status = deriveLeaf(n)
	return id, nil
}

func (f *Forest) insert(id, parent string, g goal.Goal, t tactic.Tactic, just string, depth int) *node {
	n := &node{
		id:            id,
		index:         len(f.nodes),
		parent:        parent,
		goal:          g,
		tactic:        t,
		justification: just,
		depth:         depth,
		createdAt:     time.Now(),
		status:        StatusPending,
	}
	f.nodes = append(f.nodes, n)
	f.byID[id] = n
	return n
}

// Commit records a successful tactic application below parentID.
//
// Description:
//
//	The result's goals become one application group of new children. A
//	Proved single-goal result yields a complete child; a Disproved result
//	yields a disproven child. Statuses are then recomputed from the parent
//	up to its root.
//
// Inputs:
//   - parentID: The node the tactic was applied to.
//   - t: The applied tactic.
//   - res: A SingleGoal or MultiGoal result.
//
// Outputs:
//   - []string: The new children's IDs in result order.
//   - error: ErrNodeNotFound, ErrNotApplied, ErrNoGoals or ErrClosedNode.
func (f *Forest) Commit(parentID string, t tactic.Tactic, res tactic.Result) ([]string, error) {
	if !res.Succeeded() {
		return nil, fmt.Errorf("%w: %s", ErrNotApplied, res)
	}
	if len(res.Goals) == 0 {
		return nil, ErrNoGoals
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	parent, ok := f.byID[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	if len(parent.groups) == 0 && parent.status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrClosedNode, parentID, parent.status)
	}

	group := Group{Tactic: t, Outcome: res.Outcome, Justification: res.Justification}
	for _, g := range res.Goals {
		parent.children++
		id := parentID + "." + strconv.Itoa(parent.children)
		child := f.insert(id, parentID, g.Clone(), t, res.Justification, parent.depth+1)
		child.disproven = res.Outcome == tactic.Disproved
		child.status = deriveLeaf(child)
		group.Children = append(group.Children, id)
	}
	parent.groups = append(parent.groups, group)

	f.propagate(parent)
	return group.Children, nil
}

// Abandon marks a leaf as given up and recomputes its ancestors.
func (f *Forest) Abandon(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if len(n.groups) > 0 {
		return fmt.Errorf("%w: %s", ErrNotLeaf, id)
	}
	n.abandoned = true
	f.propagate(n)
	return nil
}

// propagate recomputes n and its ancestors. Caller holds f.mu.
func (f *Forest) propagate(n *node) {
	for n != nil {
		if len(n.groups) == 0 {
			n.status = deriveLeaf(n)
		} else {
			n.status = f.deriveInternal(n)
		}
		if n.parent == "" {
			return
		}
		n = f.byID[n.parent]
	}
}

func deriveLeaf(n *node) Status {
	switch {
	case n.disproven:
		return StatusDisproven
	case n.abandoned:
		return StatusAbandoned
	case n.goal.IsClosed():
		return StatusComplete
	default:
		return StatusPending
	}
}

func (f *Forest) deriveInternal(n *node) Status {
	allFailed := true
	refuted := false
	for _, g := range n.groups {
		complete, failed, disproven := true, false, true
		for _, id := range g.Children {
			s := f.byID[id].status
			if s != StatusComplete {
				complete = false
			}
			if s.Failed() {
				failed = true
			}
			if s != StatusDisproven {
				disproven = false
			}
		}
		if complete {
			return StatusComplete
		}
		if g.Outcome == tactic.Disproved && disproven {
			refuted = true
		}
		if !failed {
			allFailed = false
		}
	}
	switch {
	case refuted:
		return StatusDisproven
	case allFailed:
		return StatusAbandoned
	default:
		return StatusInProgress
	}
}

// Node returns a snapshot of the node with the given path ID.
func (f *Forest) Node(id string) (Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, ok := f.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.snapshot(), nil
}

// At returns the node at arena index i, in insertion order.
func (f *Forest) At(i int) (Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if i < 0 || i >= len(f.nodes) {
		return Node{}, fmt.Errorf("%w: index %d", ErrNodeNotFound, i)
	}
	return f.nodes[i].snapshot(), nil
}

// Goal returns a copy of the goal stored at id.
func (f *Forest) Goal(id string) (goal.Goal, error) {
	n, err := f.Node(id)
	if err != nil {
		return goal.Goal{}, err
	}
	return n.Goal, nil
}

// Status returns the derived status of id.
func (f *Forest) Status(id string) (Status, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, ok := f.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.status, nil
}

// Roots returns the root IDs in creation order.
func (f *Forest) Roots() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.roots...)
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.nodes)
}

// Path returns the IDs from the root to id.
func (f *Forest) Path(id string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	var path []string
	for n != nil {
		path = append(path, n.id)
		if n.parent == "" {
			break
		}
		n = f.byID[n.parent]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// OpenLeaves returns the pending leaves below rootID in arena order. An
// empty rootID searches every root.
func (f *Forest) OpenLeaves(rootID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []string
	for _, n := range f.nodes {
		if len(n.groups) > 0 || n.status != StatusPending {
			continue
		}
		if rootID != "" && rootOf(n.id) != rootID {
			continue
		}
		out = append(out, n.id)
	}
	return out
}

func rootOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return id[:i]
		}
	}
	return id
}

// CountByStatus returns the number of nodes in each status.
func (f *Forest) CountByStatus() map[Status]int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	counts := make(map[Status]int)
	for _, n := range f.nodes {
		counts[n.status]++
	}
	return counts
}
