// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tactic

import (
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
)

// ResultKind is the shape of a tactic application result.
type ResultKind string

const (
	// SingleGoal replaces the goal by one new goal.
	SingleGoal ResultKind = "single_goal"

	// MultiGoal replaces the goal by sibling goals, all to be proved.
	MultiGoal ResultKind = "multi_goal"

	// NoChange means the tactic does not apply here. Not an error.
	NoChange ResultKind = "no_change"

	// Error is a hard failure: missing rule, bad index, shape mismatch.
	Error ResultKind = "error"
)

// Outcome is the proof-level effect of a successful application.
type Outcome string

const (
	// Open leaves the produced goals to be proved.
	Open Outcome = "open"

	// Proved closes the branch.
	Proved Outcome = "proved"

	// Disproved marks the branch refuted.
	Disproved Outcome = "disproved"
)

// Result is the value returned by every tactic application.
//
// Goals holds the produced goals for SingleGoal and MultiGoal. For
// NoChange and Error, Goals holds the untouched input goal so callers can
// retry with another tactic.
type Result struct {
	Kind          ResultKind
	Goals         []goal.Goal
	Outcome       Outcome
	Justification string
	Message       string

	// Steps lists the primitive tactics a macro committed, in order.
	Steps []Tactic
}

// Single builds a one-goal result. A goal whose statement is ⊤ is Proved.
func Single(g goal.Goal, justification string) Result {
	out := Open
	if g.IsClosed() {
		out = Proved
	}
	return Result{Kind: SingleGoal, Goals: []goal.Goal{g}, Outcome: out, Justification: justification}
}

// Multi builds a sibling-goals result.
func Multi(goals []goal.Goal, justification string) Result {
	return Result{Kind: MultiGoal, Goals: goals, Outcome: Open, Justification: justification}
}

// Disproof builds the result of refuting g.
func Disproof(g goal.Goal, justification string) Result {
	return Result{Kind: SingleGoal, Goals: []goal.Goal{g}, Outcome: Disproved, Justification: justification}
}

// Unchanged builds a NoChange result carrying the input goal.
func Unchanged(g goal.Goal, format string, args ...any) Result {
	return Result{Kind: NoChange, Goals: []goal.Goal{g}, Message: fmt.Sprintf(format, args...)}
}

// Failed builds an Error result carrying the input goal.
func Failed(g goal.Goal, format string, args ...any) Result {
	return Result{Kind: Error, Goals: []goal.Goal{g}, Message: fmt.Sprintf(format, args...)}
}

// Succeeded reports whether new goals were produced.
func (r Result) Succeeded() bool {
	return r.Kind == SingleGoal || r.Kind == MultiGoal
}

// Goal returns the first goal of the result.
func (r Result) Goal() goal.Goal {
	if len(r.Goals) == 0 {
		return goal.Goal{}
	}
	return r.Goals[0]
}

// Closes reports whether the application closes the goal outright.
func (r Result) Closes() bool {
	if r.Kind == SingleGoal {
		return r.Outcome == Proved
	}
	if r.Kind != MultiGoal {
		return false
	}
	for _, g := range r.Goals {
		if !g.IsClosed() {
			return false
		}
	}
	return len(r.Goals) > 0
}

func (r Result) String() string {
	switch r.Kind {
	case SingleGoal, MultiGoal:
		return fmt.Sprintf("%s(%d goals, %s)", r.Kind, len(r.Goals), r.Outcome)
	default:
		return fmt.Sprintf("%s: %s", r.Kind, r.Message)
	}
}
