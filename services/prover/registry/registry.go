// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry stores proved theorems for rule-citing tactics.
//
// The registry is the one shared mutable resource of the prover. Access
// goes through a narrow lookup/insert API behind a single lock, and
// lookups return copies, so callers never hold the lock while applying
// tactics.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
)

var (
	// ErrTheoremExists is returned when inserting a duplicate theorem ID.
	ErrTheoremExists = errors.New("theorem already registered")

	// ErrInvalidTheorem is returned for theorems without an ID or goal.
	ErrInvalidTheorem = errors.New("invalid theorem")

	// ErrNodeIndex is returned when a node index cannot be resolved.
	ErrNodeIndex = errors.New("node index out of range")
)

// Theorem is a registered, proved statement.
type Theorem struct {
	ID          string
	Name        string
	Description string

	// Goal is the proved goal: the root of Proof when a proof is attached.
	Goal goal.Goal

	// Proof is the completed proof forest. nil for theorems loaded from
	// storage or supplied by a domain library as axioms.
	Proof *forest.Forest
}

// Statement returns the goal used as a rule pattern.
//
// Inputs:
//   - nodeIndex: Arena index of a proof node, or nil for the theorem's
//     own goal.
//
// Outputs:
//   - goal.Goal: A copy of the selected goal.
//   - error: ErrNodeIndex if the index cannot be resolved.
func (t Theorem) Statement(nodeIndex *int) (goal.Goal, error) {
	if nodeIndex == nil {
		return t.Goal.Clone(), nil
	}
	if t.Proof == nil {
		return goal.Goal{}, fmt.Errorf("%w: theorem %s has no stored proof", ErrNodeIndex, t.ID)
	}
	n, err := t.Proof.At(*nodeIndex)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("%w: theorem %s: %d", ErrNodeIndex, t.ID, *nodeIndex)
	}
	return n.Goal, nil
}

func (t Theorem) validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTheorem)
	}
	if err := t.Goal.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTheorem, t.ID, err)
	}
	return nil
}

func (t Theorem) clone() Theorem {
	t.Goal = t.Goal.Clone()
	return t
}

// Store is the in-memory theorem registry.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	theorems map[string]Theorem
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{theorems: make(map[string]Theorem)}
}

// GetTheorem returns a copy of the theorem with the given ID.
func (s *Store) GetTheorem(id string) (Theorem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.theorems[id]
	if !ok {
		return Theorem{}, false
	}
	return t.clone(), true
}

// Insert registers t.
//
// Outputs:
//   - error: ErrInvalidTheorem or ErrTheoremExists.
func (s *Store) Insert(t Theorem) error {
	if err := t.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.theorems[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrTheoremExists, t.ID)
	}
	s.theorems[t.ID] = t.clone()
	return nil
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.theorems, id)
}

// IDs returns the registered IDs in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.theorems))
	for id := range s.theorems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered theorems.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.theorems)
}
