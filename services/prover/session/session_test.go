// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/codec"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/dispatch"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func testOptions() dispatch.Options {
	opts := dispatch.DefaultOptions()
	opts.Registerer = prometheus.NewRegistry()
	return opts
}

func newDispatcher(lib dispatch.TheoremSource) *dispatch.Dispatcher {
	return dispatch.New(lib, testOptions())
}

// twoHypotheses is hp : P, hq : Q ⊢ P ∧ Q.
func twoHypotheses() goal.Goal {
	return goal.Goal{
		Context:   goal.Context{goal.Hypothesis("hp", term.Pred("P")), goal.Hypothesis("hq", term.Pred("Q"))},
		Statement: term.Conj(term.Pred("P"), term.Pred("Q")),
	}
}

func TestNew(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		s, err := New(newDispatcher(nil), twoHypotheses(), Options{})
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID())
		assert.Equal(t, "1", s.Root())
		assert.Equal(t, forest.StatusPending, s.Status())
	})

	t.Run("nil dispatcher", func(t *testing.T) {
		_, err := New(nil, twoHypotheses(), Options{})
		assert.ErrorIs(t, err, ErrNilDispatcher)
	})

	t.Run("invalid goal", func(t *testing.T) {
		_, err := New(newDispatcher(nil), goal.New(term.Pred("P", term.VarRef("x"))), Options{})
		assert.ErrorIs(t, err, goal.ErrUnboundIdentifier)
	})
}

func TestSession_Apply(t *testing.T) {
	ctx := context.Background()
	s, err := New(newDispatcher(nil), twoHypotheses(), Options{ID: "and_intro"})
	require.NoError(t, err)

	t.Run("no change leaves the forest alone", func(t *testing.T) {
		step, err := s.Apply(ctx, s.Root(), tactic.Reflexivity{})
		require.NoError(t, err)
		assert.False(t, step.Applied())
		assert.Equal(t, 1, s.Forest().Len())
	})

	t.Run("error result is returned, not committed", func(t *testing.T) {
		step, err := s.Apply(ctx, s.Root(), tactic.SplitConjunction{Index: 5})
		require.NoError(t, err)
		assert.Equal(t, tactic.Error, step.Result.Kind)
		assert.Equal(t, 1, s.Forest().Len())
	})

	t.Run("split then close", func(t *testing.T) {
		step, err := s.Apply(ctx, s.Root(), tactic.SplitConjunction{Index: 0})
		require.NoError(t, err)
		require.Equal(t, []string{"1.1", "1.2"}, step.Children)
		assert.Equal(t, forest.StatusInProgress, s.Status())

		_, err = s.Apply(ctx, "1.1", tactic.ExactHypothesis{Hypothesis: term.Ident("hp")})
		require.NoError(t, err)
		_, err = s.Apply(ctx, "1.2", tactic.ExactHypothesis{Hypothesis: term.Ident("hq")})
		require.NoError(t, err)
		assert.Equal(t, forest.StatusComplete, s.Status())
	})

	t.Run("closed leaf rejects tactics", func(t *testing.T) {
		_, err := s.Apply(ctx, "1.1.1", tactic.Reflexivity{})
		assert.ErrorIs(t, err, forest.ErrClosedNode)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := s.Apply(ctx, "9", tactic.Reflexivity{})
		assert.ErrorIs(t, err, forest.ErrNodeNotFound)
	})
}

func TestSession_CaseAnalysisSiblings(t *testing.T) {
	x := term.VarRef("x")
	g := goal.Goal{
		Quantifiers: []goal.Quantifier{goal.ForAll("x", term.Obj("Nat"))},
		Statement:   term.Pred("P", x),
	}
	cases := []tactic.Case{
		{Hypothesis: term.Pred("zero", x)},
		{Hypothesis: term.Pred("one", x)},
		{Hypothesis: term.Pred("many", x)},
	}

	s, err := New(newDispatcher(nil), g, Options{})
	require.NoError(t, err)
	step, err := s.Apply(context.Background(), s.Root(), tactic.CaseAnalysis{Targets: []term.Identifier{term.Ident("x")}, Cases: cases})
	require.NoError(t, err)
	require.Len(t, step.Children, len(cases))

	root, err := s.Forest().Node(s.Root())
	require.NoError(t, err)
	require.Len(t, root.Groups, 1)
	assert.Equal(t, step.Children, root.Groups[0].Children)
	for _, id := range step.Children {
		n, err := s.Forest().Node(id)
		require.NoError(t, err)
		assert.Equal(t, s.Root(), n.Parent)
	}
}

func TestSession_Abandon(t *testing.T) {
	s, err := New(newDispatcher(nil), twoHypotheses(), Options{})
	require.NoError(t, err)
	_, err = s.Apply(context.Background(), s.Root(), tactic.SplitConjunction{Index: 0})
	require.NoError(t, err)

	require.NoError(t, s.Abandon("1.1"))
	st, _ := s.Forest().Status("1.1")
	assert.Equal(t, forest.StatusAbandoned, st)
	assert.Equal(t, forest.StatusAbandoned, s.Status())

	assert.ErrorIs(t, s.Abandon(s.Root()), forest.ErrNotLeaf)
}

func TestSession_ExpandLeaves(t *testing.T) {
	ctx := context.Background()
	s, err := New(newDispatcher(nil), twoHypotheses(), Options{MaxConcurrency: 2})
	require.NoError(t, err)
	_, err = s.Apply(ctx, s.Root(), tactic.SplitConjunction{Index: 0})
	require.NoError(t, err)

	steps, err := s.ExpandLeaves(ctx, tactic.SearchAssumptions{})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "1.1", steps[0].Node)
	assert.Equal(t, []string{"1.1.1"}, steps[0].Children)
	assert.Equal(t, []string{"1.2.1"}, steps[1].Children)
	assert.Equal(t, forest.StatusComplete, s.Status())

	t.Run("nothing left to expand", func(t *testing.T) {
		steps, err := s.ExpandLeaves(ctx, tactic.SearchAssumptions{})
		require.NoError(t, err)
		assert.Empty(t, steps)
	})

	t.Run("cancelled", func(t *testing.T) {
		s, err := New(newDispatcher(nil), twoHypotheses(), Options{})
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = s.ExpandLeaves(cctx, tactic.SearchAssumptions{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, s.Forest().Len())
	})
}

func TestSession_Theorem(t *testing.T) {
	ctx := context.Background()
	s, err := New(newDispatcher(nil), twoHypotheses(), Options{ID: "and_intro", Name: "And introduction"})
	require.NoError(t, err)

	_, err = s.Theorem()
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = s.Apply(ctx, s.Root(), tactic.Auto{})
	require.NoError(t, err)
	require.Equal(t, forest.StatusComplete, s.Status())

	thm, err := s.Theorem()
	require.NoError(t, err)
	assert.Equal(t, "and_intro", thm.ID)
	assert.Equal(t, "And introduction", thm.Name)
	assert.True(t, thm.Goal.Equal(twoHypotheses()))
	assert.Same(t, s.Forest(), thm.Proof)

	store := registry.NewStore()
	require.NoError(t, store.Insert(thm))
}

const andCommScript = `
theorems:
  - id: and_comm
    name: Conjunction commutes
    goal:
      context:
        - name: h
          type: {and: [{pred: {name: P}}, {pred: {name: Q}}]}
      statement: {and: [{pred: {name: Q}}, {pred: {name: P}}]}
    steps:
      - node: "1"
        tactic: {kind: split_hypothesis_conjunction, hypothesis: h, names: [hp, hq]}
      - node: "1.1"
        tactic: {kind: split_conjunction, index: 0}
      - node: "1.1.1"
        tactic: {kind: exact_hypothesis, hypothesis: hq}
      - node: "1.1.2"
        tactic: {kind: exact_hypothesis, hypothesis: hp}
  - id: and_comm_again
    goal:
      context:
        - name: g
          type: {and: [{pred: {name: P}}, {pred: {name: Q}}]}
      statement: {and: [{pred: {name: Q}}, {pred: {name: P}}]}
    steps:
      - node: "1"
        tactic: {kind: search_theorems, theorems: [and_comm]}
`

func TestReplay(t *testing.T) {
	script, err := codec.ParseScript([]byte(andCommScript))
	require.NoError(t, err)

	s, err := Replay(context.Background(), newDispatcher(nil), script.Theorems[0], Options{})
	require.NoError(t, err)
	assert.Equal(t, "and_comm", s.ID())
	assert.Equal(t, "Conjunction commutes", s.Name())
	assert.Equal(t, forest.StatusComplete, s.Status())

	t.Run("failing step keeps partial forest", func(t *testing.T) {
		th := script.Theorems[0]
		th.Steps = []codec.ScriptStep{
			th.Steps[0],
			{Node: "1.1", Tactic: codec.TacticDoc{Kind: "reflexivity"}},
		}
		s, err := Replay(context.Background(), newDispatcher(nil), th, Options{})
		assert.ErrorIs(t, err, ErrStepFailed)
		require.NotNil(t, s)
		assert.Equal(t, 2, s.Forest().Len())
	})

	t.Run("abandon step", func(t *testing.T) {
		th := script.Theorems[0]
		th.Steps = []codec.ScriptStep{{Node: "1", Abandon: true}}
		s, err := Replay(context.Background(), newDispatcher(nil), th, Options{})
		require.NoError(t, err)
		assert.Equal(t, forest.StatusAbandoned, s.Status())
	})
}

func TestCheck_RegistersInOrder(t *testing.T) {
	script, err := codec.ParseScript([]byte(andCommScript))
	require.NoError(t, err)
	store := registry.NewStore()
	d := newDispatcher(store)

	reports, err := Check(context.Background(), d, store, script, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, rep := range reports {
		assert.NoError(t, rep.Err)
		assert.Equal(t, forest.StatusComplete, rep.Status)
		assert.True(t, rep.Registered)
	}
	assert.Equal(t, []string{"and_comm", "and_comm_again"}, store.IDs())

	t.Run("duplicate theorem is reported", func(t *testing.T) {
		reports, err := Check(context.Background(), d, store, script, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, reports[0].Err, registry.ErrTheoremExists)
		assert.False(t, reports[0].Registered)
	})
}
