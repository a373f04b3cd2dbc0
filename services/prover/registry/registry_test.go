// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func mulOne() Theorem {
	return Theorem{
		ID:   "mul_one",
		Name: "Right identity",
		Goal: goal.New(
			term.Eq(term.Apply("group", "mul", term.VarRef("x"), term.Num(1)), term.VarRef("x")),
			goal.ForAll("x", term.Obj("G")),
		),
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(mulOne()))

	got, ok := s.GetTheorem("mul_one")
	require.True(t, ok)
	assert.Equal(t, "Right identity", got.Name)
	assert.True(t, mulOne().Goal.Equal(got.Goal))

	_, ok = s.GetTheorem("missing")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Insert(mulOne()), ErrTheoremExists)
	assert.ErrorIs(t, s.Insert(Theorem{}), ErrInvalidTheorem)
	assert.ErrorIs(t, s.Insert(Theorem{ID: "bad", Goal: goal.New(term.Pred("P", term.VarRef("free")))}), ErrInvalidTheorem)
	assert.Equal(t, []string{"mul_one"}, s.IDs())
}

func TestStore_CopiesOut(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(mulOne()))

	got, _ := s.GetTheorem("mul_one")
	got.Goal.Quantifiers[0].Kind = goal.Existential

	again, _ := s.GetTheorem("mul_one")
	assert.Equal(t, goal.Universal, again.Goal.Quantifiers[0].Kind)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			th := mulOne()
			th.ID = string(rune('a' + i%26))
			_ = s.Insert(th)
			_, _ = s.GetTheorem(th.ID)
			_ = s.IDs()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, s.Len())
}

func TestTheorem_Statement(t *testing.T) {
	f := forest.New()
	root, err := f.AddRoot(goal.New(term.Conj(term.Pred("P"), term.Truth())))
	require.NoError(t, err)
	_, err = f.Commit(root, tactic.SplitConjunction{}, tactic.Multi([]goal.Goal{goal.New(term.Pred("P")), goal.New(term.Truth())}, ""))
	require.NoError(t, err)

	th := Theorem{ID: "t", Goal: goal.New(term.Conj(term.Pred("P"), term.Truth())), Proof: f}

	g, err := th.Statement(nil)
	require.NoError(t, err)
	assert.True(t, th.Goal.Equal(g))

	idx := 1
	g, err = th.Statement(&idx)
	require.NoError(t, err)
	assert.True(t, term.EqualRel(term.Pred("P"), g.Statement))

	idx = 9
	_, err = th.Statement(&idx)
	assert.ErrorIs(t, err, ErrNodeIndex)

	_, err = Theorem{ID: "axiom"}.Statement(&idx)
	assert.ErrorIs(t, err, ErrNodeIndex)
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(mulOne()))
	assert.ErrorIs(t, s.Insert(mulOne()), ErrTheoremExists)

	got, ok := s.GetTheorem("mul_one")
	require.True(t, ok)
	assert.True(t, mulOne().Goal.Equal(got.Goal))
	assert.Equal(t, 1, s.Len())
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(DefaultBadgerConfig(dir))
	require.NoError(t, err)
	require.NoError(t, s.Insert(mulOne()))
	require.NoError(t, s.Close())

	s2, err := OpenBadger(DefaultBadgerConfig(dir))
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, []string{"mul_one"}, s2.IDs())
	got, ok := s2.GetTheorem("mul_one")
	require.True(t, ok)
	assert.Equal(t, "Right identity", got.Name)
	assert.True(t, mulOne().Goal.Equal(got.Goal))
	assert.Nil(t, got.Proof)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}
