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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func TestKinds_AllCategorised(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 24)
	for _, k := range kinds {
		assert.NotEmpty(t, k.Category(), "kind %s", k)
	}
	assert.Equal(t, Category(""), Kind("bogus").Category())
}

func TestTactic_String(t *testing.T) {
	idx := 2
	tests := []struct {
		tactic Tactic
		want   string
	}{
		{SplitConjunction{Index: 1}, "split_conjunction(1)"},
		{Reflexivity{}, "reflexivity"},
		{AssumeAntecedent{HypothesisName: "hp"}, "assume_antecedent(hp)"},
		{Rewrite{Rule: FromTheorem("mul_one")}, "rewrite(theorem mul_one, forward)"},
		{Rewrite{Rule: RuleSource{TheoremID: "t", NodeIndex: &idx}, Direction: Backward}, "rewrite(theorem t#2, backward)"},
		{DisproveByTheorem{Rule: FromHypothesis("h")}, "disprove_by_theorem(hypothesis h)"},
		{CaseAnalysis{Targets: []term.Identifier{term.Ident("n")}, Cases: make([]Case, 3)}, "case_analysis(n; 3 cases)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tactic.String())
		})
	}
}

func TestResult_Constructors(t *testing.T) {
	open := goal.New(term.Pred("P"))
	closed := goal.New(term.Truth())

	t.Run("single open", func(t *testing.T) {
		r := Single(open, "j")
		assert.True(t, r.Succeeded())
		assert.Equal(t, Open, r.Outcome)
		assert.False(t, r.Closes())
	})

	t.Run("single closed", func(t *testing.T) {
		r := Single(closed, "j")
		assert.Equal(t, Proved, r.Outcome)
		assert.True(t, r.Closes())
	})

	t.Run("multi", func(t *testing.T) {
		r := Multi([]goal.Goal{closed, open}, "j")
		assert.False(t, r.Closes())
		assert.Len(t, r.Goals, 2)
	})

	t.Run("failure keeps goal", func(t *testing.T) {
		r := Failed(open, "missing %s", "h")
		assert.False(t, r.Succeeded())
		assert.Equal(t, "missing h", r.Message)
		assert.True(t, open.Equal(r.Goal()))
		assert.Equal(t, "error: missing h", r.String())
	})

	t.Run("no change", func(t *testing.T) {
		r := Unchanged(open, "not an implication")
		assert.Equal(t, NoChange, r.Kind)
	})
}
