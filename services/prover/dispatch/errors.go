// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatch

import (
	"errors"
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
)

var (
	// ErrUnknownTactic is returned for tactic values outside the catalogue.
	ErrUnknownTactic = errors.New("unknown tactic")

	// ErrNoRegistry is returned when a theorem is cited without a registry.
	ErrNoRegistry = errors.New("no theorem registry configured")

	// ErrTheoremNotFound is returned when a cited theorem is not registered.
	ErrTheoremNotFound = errors.New("theorem not found")

	// ErrHypothesisNotFound is returned when a named context entry is missing.
	ErrHypothesisNotFound = errors.New("hypothesis not found")

	// ErrNotHypothesis is returned when a context entry is not a relation.
	ErrNotHypothesis = errors.New("context entry is not a hypothesis")

	// ErrIndexOutOfRange is returned for invalid positional indices.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidArgument is returned for missing or malformed tactic fields.
	ErrInvalidArgument = errors.New("invalid tactic argument")

	// ErrNotEquality is returned when a rewrite rule is not an equality or
	// equivalence.
	ErrNotEquality = errors.New("rule is not an equality")

	// ErrNoMatch is returned when a rule's pattern does not occur in the
	// target.
	ErrNoMatch = errors.New("pattern not found in target")

	// ErrUninstantiated is returned when a rewrite leaves rule variables
	// without a value.
	ErrUninstantiated = errors.New("rule variables left uninstantiated")

	// ErrNotClosed is returned by completion tactics whose closing condition
	// does not hold.
	ErrNotClosed = errors.New("goal cannot be closed")

	// ErrExistentialRule is returned when a cited theorem binds a variable
	// existentially and so cannot be used as a rule.
	ErrExistentialRule = errors.New("existentially quantified theorem cannot be used as a rule")

	// ErrNotNegation is returned when a cited theorem does not negate the
	// goal.
	ErrNotNegation = errors.New("rule is not the negation of the goal")
)

// TacticError describes a failed tactic application.
type TacticError struct {
	Tactic    tactic.Kind
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *TacticError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tactic, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *TacticError) Unwrap() error {
	return e.Err
}

func newTacticError(kind tactic.Kind, op string, err error) *TacticError {
	return &TacticError{Tactic: kind, Operation: op, Err: err}
}
