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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func open(name string) goal.Goal {
	return goal.New(term.Pred(name))
}

func closed() goal.Goal {
	return goal.New(term.Truth())
}

func newRoot(t *testing.T, f *Forest) string {
	t.Helper()
	id, err := f.AddRoot(goal.New(term.Conj(term.Pred("P"), term.Pred("Q"))))
	require.NoError(t, err)
	return id
}

func TestForest_AddRoot(t *testing.T) {
	f := New()
	id := newRoot(t, f)
	assert.Equal(t, "1", id)

	status, err := f.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	_, err = f.AddRoot(goal.New(term.Pred("P", term.VarRef("free"))))
	assert.ErrorIs(t, err, goal.ErrUnboundIdentifier)

	id2, err := f.AddRoot(open("R"))
	require.NoError(t, err)
	assert.Equal(t, "2", id2)
	assert.Equal(t, []string{"1", "2"}, f.Roots())
}

func TestForest_MultiGoalSiblings(t *testing.T) {
	f := New()
	root := newRoot(t, f)

	ids, err := f.Commit(root, tactic.SplitConjunction{Index: 0}, tactic.Multi([]goal.Goal{open("P"), open("Q")}, "split"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1", "1.2"}, ids)

	for _, id := range ids {
		n, err := f.Node(id)
		require.NoError(t, err)
		assert.Equal(t, root, n.Parent)
		assert.Equal(t, 1, n.Depth)
		assert.Equal(t, StatusPending, n.Status)
	}

	status, _ := f.Status(root)
	assert.Equal(t, StatusInProgress, status)
	assert.Equal(t, []string{"1.1", "1.2"}, f.OpenLeaves(""))
}

func TestForest_CompletionPropagates(t *testing.T) {
	f := New()
	root := newRoot(t, f)
	ids, err := f.Commit(root, tactic.SplitConjunction{}, tactic.Multi([]goal.Goal{open("P"), open("Q")}, "split"))
	require.NoError(t, err)

	_, err = f.Commit(ids[0], tactic.ExactHypothesis{}, tactic.Single(closed(), "exact"))
	require.NoError(t, err)
	status, _ := f.Status(root)
	assert.Equal(t, StatusInProgress, status, "one sibling still open")

	_, err = f.Commit(ids[1], tactic.ExactHypothesis{}, tactic.Single(closed(), "exact"))
	require.NoError(t, err)
	status, _ = f.Status(root)
	assert.Equal(t, StatusComplete, status)

	s, _ := f.Status(ids[1])
	assert.Equal(t, StatusComplete, s)
	assert.Empty(t, f.OpenLeaves(root))
}

func TestForest_AlternativeGroups(t *testing.T) {
	f := New()
	root := newRoot(t, f)

	first, err := f.Commit(root, tactic.Auto{}, tactic.Single(open("A"), "try A"))
	require.NoError(t, err)
	second, err := f.Commit(root, tactic.Auto{}, tactic.Single(open("B"), "try B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2"}, second)

	require.NoError(t, f.Abandon(first[0]))
	status, _ := f.Status(root)
	assert.Equal(t, StatusInProgress, status, "second group still open")

	require.NoError(t, f.Abandon(second[0]))
	status, _ = f.Status(root)
	assert.Equal(t, StatusAbandoned, status)

	n, _ := f.Node(root)
	assert.Len(t, n.Groups, 2)
	assert.Equal(t, []string{"1.1", "1.2"}, n.Children())
}

func TestForest_Disproof(t *testing.T) {
	f := New()
	root := newRoot(t, f)

	ids, err := f.Commit(root, tactic.DisproveByTheorem{}, tactic.Disproof(open("P"), "refuted"))
	require.NoError(t, err)

	s, _ := f.Status(ids[0])
	assert.Equal(t, StatusDisproven, s)
	s, _ = f.Status(root)
	assert.Equal(t, StatusDisproven, s)
	assert.NotEqual(t, StatusAbandoned, s)

	_, err = f.Commit(ids[0], tactic.Reflexivity{}, tactic.Single(closed(), "refl"))
	assert.ErrorIs(t, err, ErrClosedNode)
}

func TestForest_Errors(t *testing.T) {
	f := New()
	root := newRoot(t, f)

	_, err := f.Commit("9", tactic.Reflexivity{}, tactic.Single(closed(), ""))
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = f.Commit(root, tactic.Reflexivity{}, tactic.Failed(open("P"), "no"))
	assert.ErrorIs(t, err, ErrNotApplied)

	_, err = f.Commit(root, tactic.Reflexivity{}, tactic.Result{Kind: tactic.MultiGoal})
	assert.ErrorIs(t, err, ErrNoGoals)

	_, err = f.Commit(root, tactic.SplitConjunction{}, tactic.Multi([]goal.Goal{open("P"), open("Q")}, ""))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Abandon(root), ErrNotLeaf)
	assert.ErrorIs(t, f.Abandon("1.7"), ErrNodeNotFound)
}

func TestForest_StoredGoalsImmutable(t *testing.T) {
	f := New()
	root := newRoot(t, f)

	g, err := f.Goal(root)
	require.NoError(t, err)
	g.Context = append(g.Context, goal.Hypothesis("h", term.Pred("X")))
	g.Statement = term.Truth()

	again, _ := f.Goal(root)
	assert.Empty(t, again.Context)
	assert.False(t, again.IsClosed())
}

func TestForest_PathAndAt(t *testing.T) {
	f := New()
	root := newRoot(t, f)
	ids, _ := f.Commit(root, tactic.SplitConjunction{}, tactic.Multi([]goal.Goal{open("P"), open("Q")}, ""))
	leaf, _ := f.Commit(ids[1], tactic.AssumeAntecedent{}, tactic.Single(open("R"), ""))

	path, err := f.Path(leaf[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.2", "1.2.1"}, path)

	n, err := f.At(3)
	require.NoError(t, err)
	assert.Equal(t, "1.2.1", n.ID)
	_, err = f.At(10)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	assert.Equal(t, 4, f.Len())
	counts := f.CountByStatus()
	assert.Equal(t, 2, counts[StatusPending])
	assert.Equal(t, 2, counts[StatusInProgress])
}

func TestForest_FormatAndJSON(t *testing.T) {
	f := New()
	assert.Equal(t, "Empty forest", f.Format())

	root := newRoot(t, f)
	ids, _ := f.Commit(root, tactic.SplitConjunction{Index: 0}, tactic.Multi([]goal.Goal{open("P"), open("Q")}, "split"))
	_, _ = f.Commit(ids[0], tactic.ExactHypothesis{Hypothesis: term.Ident("h")}, tactic.Single(closed(), "exact"))

	out := f.Format()
	assert.Contains(t, out, "└── [1] (P() ∧ Q()) →")
	assert.Contains(t, out, "├── [1.1] P() ‹split_conjunction(0)›")
	assert.Contains(t, out, "[1.1.1] ⊤ ‹exact_hypothesis(h)› ✓")
	assert.True(t, strings.HasPrefix(out, "Nodes: 4\n"))

	data, err := json.Marshal(f)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 4, decoded["nodes"])
}
