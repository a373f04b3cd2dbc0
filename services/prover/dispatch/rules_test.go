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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func mul(l, r term.Expr) term.Expr { return term.Apply("group", "mul", l, r) }

// mulOne is ∀x. x·1 = x.
func mulOne() registry.Theorem {
	return registry.Theorem{
		ID:   "mul_one",
		Name: "Right identity",
		Goal: goal.New(term.Eq(mul(x, term.Num(1)), x), goal.ForAll("x", term.Obj("G"))),
	}
}

// pImpliesQ is ∀x. P(x) → Q(x), which is not an equality.
func pImpliesQ() registry.Theorem {
	return registry.Theorem{
		ID:   "p_implies_q",
		Goal: goal.New(term.Imp(P(x), Q(x)), goal.ForAll("x", term.Obj("G"))),
	}
}

// divSelf is x ≠ 0 ⊢ ∀x. x/x = 1.
func divSelf(t *testing.T) registry.Theorem {
	g, err := goal.New(term.Eq(term.Apply("field", "div", x, x), term.Num(1)), goal.ForAll("x", term.Obj("F"))).
		WithEntry(goal.Hypothesis("nz", term.Neg(term.Eq(x, term.Num(0)))))
	require.NoError(t, err)
	return registry.Theorem{ID: "div_self", Goal: g}
}

func groupGoal(t *testing.T, stmt term.Rel) goal.Goal {
	return mustEntry(t, goal.New(stmt), goal.Variable("a", term.Obj("G")), goal.Variable("b", term.Obj("G")))
}

func TestRewrite_Theorem(t *testing.T) {
	d := newTestDispatcher(t, mulOne())
	ctx := context.Background()

	t.Run("forward", func(t *testing.T) {
		g := groupGoal(t, P(mul(a, term.Num(1))))
		before := g.String()
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("mul_one")})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		assert.True(t, term.EqualRel(P(a), res.Goal().Statement))
		assert.Contains(t, res.Justification, "theorem mul_one (forward)")
		assert.Equal(t, before, g.String())
	})

	t.Run("nested occurrence", func(t *testing.T) {
		g := groupGoal(t, term.Eq(term.Apply("group", "inv", mul(b, term.Num(1))), a))
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("mul_one")})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		assert.True(t, term.EqualRel(term.Eq(term.Apply("group", "inv", b), a), res.Goal().Statement))
	})

	t.Run("backward", func(t *testing.T) {
		g := groupGoal(t, Q(a))
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("mul_one"), Direction: tactic.Backward})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		assert.True(t, term.EqualRel(Q(mul(a, term.Num(1))), res.Goal().Statement))
	})

	t.Run("instantiation", func(t *testing.T) {
		g := groupGoal(t, P(mul(a, term.Num(1)), mul(b, term.Num(1))))
		res := d.Apply(ctx, g, tactic.Rewrite{
			Rule:           tactic.FromTheorem("mul_one"),
			Instantiations: []tactic.Instantiation{{Variable: term.Ident("x"), Value: b}},
		})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		assert.True(t, term.EqualRel(P(mul(a, term.Num(1)), b), res.Goal().Statement))

		res = d.Apply(ctx, g, tactic.Rewrite{
			Rule:           tactic.FromTheorem("mul_one"),
			Instantiations: []tactic.Instantiation{{Variable: term.Ident("nope"), Value: b}},
		})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("no instance in target", func(t *testing.T) {
		g := groupGoal(t, P(a))
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("mul_one")})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "pattern not found")
	})
}

func TestRewrite_NotAnEquality(t *testing.T) {
	d := newTestDispatcher(t, pImpliesQ())
	g := groupGoal(t, term.Imp(P(a), Q(a)))
	before := g.String()

	res := d.Apply(context.Background(), g, tactic.Rewrite{Rule: tactic.FromTheorem("p_implies_q")})
	require.Equal(t, tactic.Error, res.Kind)
	assert.Contains(t, res.Message, "p_implies_q")
	assert.Contains(t, res.Message, "not an equality")
	require.Len(t, res.Goals, 1)
	assert.True(t, g.Equal(res.Goal()))
	assert.Equal(t, before, res.Goal().String())
}

func TestRewrite_MissingTheorem(t *testing.T) {
	g := groupGoal(t, P(a))

	res := newTestDispatcher(t).Apply(context.Background(), g, tactic.Rewrite{Rule: tactic.FromTheorem("ghost")})
	assert.Equal(t, tactic.Error, res.Kind)
	assert.Contains(t, res.Message, "theorem not found: ghost")

	res = New(nil, Options{}).Apply(context.Background(), g, tactic.Rewrite{Rule: tactic.FromTheorem("ghost")})
	assert.Equal(t, tactic.Error, res.Kind)
	assert.Contains(t, res.Message, "no theorem registry")
}

func TestRewrite_Hypothesis(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	first, second := term.VarRef("a"), term.VarRef("a")
	g := mustEntry(t, goal.New(P(first, second)),
		goal.Variable("a", term.Obj("G")),
		goal.Variable("b", term.Obj("G")),
		goal.Hypothesis("h", term.Eq(a, b)),
		goal.Hypothesis("k", Q(a)),
	)

	t.Run("first occurrence", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromHypothesis("h")})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		assert.True(t, term.EqualRel(P(b, a), res.Goal().Statement))
	})

	t.Run("targeted address keeps its slot", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromHypothesis("h"), Target: goal.StatementTarget().At(second.Addr)})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		stmt := res.Goal().Statement
		assert.True(t, term.EqualRel(P(a, b), stmt))
		assert.Equal(t, g.Statement.Addr, stmt.Addr)

		v, _ := stmt.ConcreteValue()
		args := v.(term.Predicate).Args
		assert.Equal(t, first.Addr, args[0].Addr)
		assert.Equal(t, second.Addr, args[1].Addr)
	})

	t.Run("context entry", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromHypothesis("h"), Target: goal.ContextTarget("k")})
		require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
		k, _, ok := res.Goal().Context.Lookup(term.Ident("k"))
		require.True(t, ok)
		r, _ := k.Relation()
		assert.True(t, term.EqualRel(Q(b), r))
		assert.True(t, term.EqualRel(g.Statement, res.Goal().Statement))
	})

	t.Run("hypothesis is not an equality", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromHypothesis("k")})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "hypothesis k")
	})
}

func TestRewrite_Equivalence(t *testing.T) {
	iffThm := registry.Theorem{
		ID:   "p_iff_q",
		Goal: goal.New(term.Iff(P(x), Q(x)), goal.ForAll("x", term.Obj("G"))),
	}
	d := newTestDispatcher(t, iffThm)
	g := groupGoal(t, term.Conj(R(), P(a)))

	res := d.Apply(context.Background(), g, tactic.Rewrite{Rule: tactic.FromTheorem("p_iff_q")})
	require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
	assert.True(t, term.EqualRel(term.Conj(R(), Q(a)), res.Goal().Statement))
}

func TestRewrite_SideConditions(t *testing.T) {
	d := newTestDispatcher(t, divSelf(t))
	g := groupGoal(t, P(term.Apply("field", "div", a, a)))

	res := d.Apply(context.Background(), g, tactic.Rewrite{Rule: tactic.FromTheorem("div_self")})
	require.Equal(t, tactic.MultiGoal, res.Kind, res.Message)
	require.Len(t, res.Goals, 2)
	assert.True(t, term.EqualRel(P(term.Num(1)), res.Goals[0].Statement))
	assert.True(t, term.EqualRel(term.Neg(term.Eq(a, term.Num(0))), res.Goals[1].Statement))
}

func TestSearch(t *testing.T) {
	pAll := registry.Theorem{ID: "p_all", Goal: goal.New(P(x), goal.ForAll("x", term.Obj("G")))}
	d := newTestDispatcher(t, pAll, mulOne())
	ctx := context.Background()

	t.Run("assumptions", func(t *testing.T) {
		g := mustEntry(t, goal.New(Q()), goal.Hypothesis("p", P()), goal.Hypothesis("q", Q()))
		res := d.Apply(ctx, g, tactic.SearchAssumptions{})
		require.True(t, res.Closes())
		require.Len(t, res.Steps, 1)
		assert.Equal(t, tactic.ExactHypothesis{Hypothesis: term.Ident("q")}, res.Steps[0])

		res = d.Apply(ctx, g.WithStatement(R()), tactic.SearchAssumptions{})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})

	t.Run("theorems", func(t *testing.T) {
		g := groupGoal(t, P(mul(a, b)))
		res := d.Apply(ctx, g, tactic.SearchTheorems{})
		require.True(t, res.Closes(), res.Message)
		assert.Contains(t, res.Justification, "theorem p_all")

		res = d.Apply(ctx, g, tactic.SearchTheorems{TheoremIDs: []string{"mul_one"}})
		assert.Equal(t, tactic.NoChange, res.Kind)

		res = d.Apply(ctx, g, tactic.SearchTheorems{TheoremIDs: []string{"ghost"}})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("combined", func(t *testing.T) {
		g := groupGoal(t, P(a))
		res := d.Apply(ctx, g, tactic.Search{})
		assert.True(t, res.Closes())

		res = d.Apply(ctx, groupGoal(t, R()), tactic.Search{})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})

	t.Run("side conditions must be hypotheses", func(t *testing.T) {
		cond := registry.Theorem{ID: "q_if_p", Goal: mustEntry(t, goal.New(Q(x), goal.ForAll("x", term.Obj("G"))), goal.Hypothesis("hp", P(x)))}
		d := newTestDispatcher(t, cond)

		without := groupGoal(t, Q(a))
		assert.Equal(t, tactic.NoChange, d.Apply(ctx, without, tactic.SearchTheorems{}).Kind)

		with := mustEntry(t, without, goal.Hypothesis("h", P(a)))
		assert.True(t, d.Apply(ctx, with, tactic.SearchTheorems{}).Closes())
	})
}

func TestExistentialTheoremsAreNotRules(t *testing.T) {
	someZero := registry.Theorem{ID: "some_zero", Goal: goal.New(term.Eq(x, term.Num(0)), goal.Exists("x", term.Obj("Nat")))}
	someP := registry.Theorem{ID: "some_p", Goal: goal.New(P(x), goal.Exists("x", term.Obj("Nat")))}
	oneP := registry.Theorem{ID: "one_p", Goal: goal.New(P(x), goal.ExistsUnique("x", term.Obj("Nat")))}
	someNotP := registry.Theorem{ID: "some_not_p", Goal: goal.New(term.Neg(P(x)), goal.Exists("x", term.Obj("Nat")))}
	d := newTestDispatcher(t, someZero, someP, oneP, someNotP)
	ctx := context.Background()

	t.Run("rewrite", func(t *testing.T) {
		g := mustEntry(t, goal.New(term.Eq(a, term.Num(5))), goal.Variable("a", term.Obj("Nat")))
		before := g.String()

		res := d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("some_zero"), Direction: tactic.Backward})
		require.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "existentially quantified")
		assert.Contains(t, res.Message, "some_zero")
		require.Len(t, res.Goals, 1)
		assert.Equal(t, before, res.Goal().String())

		res = d.Apply(ctx, g, tactic.Rewrite{Rule: tactic.FromTheorem("some_zero")})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("search cited", func(t *testing.T) {
		g := goal.New(P(term.VarRef("y")), goal.ForAll("y", term.Obj("Nat")))
		for _, id := range []string{"some_p", "one_p"} {
			res := d.Apply(ctx, g, tactic.SearchTheorems{TheoremIDs: []string{id}})
			assert.Equal(t, tactic.Error, res.Kind, id)
			assert.False(t, res.Closes(), id)
			assert.NotEqual(t, tactic.Proved, res.Outcome, id)
		}
	})

	t.Run("search registry skips them", func(t *testing.T) {
		g := mustEntry(t, goal.New(P(a)), goal.Variable("a", term.Obj("Nat")))
		res := d.Apply(ctx, g, tactic.SearchTheorems{})
		assert.Equal(t, tactic.NoChange, res.Kind)
		assert.False(t, d.Apply(ctx, g, tactic.Search{}).Closes())
	})

	t.Run("disproof", func(t *testing.T) {
		g := mustEntry(t, goal.New(P(a)), goal.Variable("a", term.Obj("Nat")))
		res := d.Apply(ctx, g, tactic.DisproveByTheorem{Rule: tactic.FromTheorem("some_not_p")})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.NotEqual(t, tactic.Disproved, res.Outcome)
	})
}

func TestSimplify(t *testing.T) {
	d := newTestDispatcher(t, mulOne())
	ctx := context.Background()
	g := groupGoal(t, term.Eq(mul(mul(a, term.Num(1)), term.Num(1)), a))

	res := d.Apply(ctx, g, tactic.Simplify{Rules: []tactic.RuleSource{tactic.FromTheorem("mul_one")}})
	require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
	assert.Equal(t, tactic.Proved, res.Outcome)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, tactic.KindRewrite, res.Steps[0].Kind())
	assert.Equal(t, tactic.KindRewrite, res.Steps[1].Kind())
	assert.Equal(t, tactic.KindReflexivity, res.Steps[2].Kind())

	t.Run("bounded", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Simplify{Rules: []tactic.RuleSource{tactic.FromTheorem("mul_one")}, MaxSteps: 1})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, tactic.Open, res.Outcome)
		assert.Len(t, res.Steps, 1)
	})

	t.Run("nothing to do", func(t *testing.T) {
		res := d.Apply(ctx, groupGoal(t, P(a)), tactic.Simplify{Rules: []tactic.RuleSource{tactic.FromTheorem("mul_one")}})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})

	t.Run("no rules", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Simplify{})
		assert.Equal(t, tactic.Error, res.Kind)
	})
}

func TestAuto(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	g := goal.New(term.Imp(P(), term.Imp(Q(), P())))

	res := d.Apply(ctx, g, tactic.Auto{})
	require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
	assert.True(t, res.Closes())
	assert.Equal(t, []tactic.Tactic{
		tactic.AssumeAntecedent{},
		tactic.AssumeAntecedent{},
		tactic.ExactHypothesis{Hypothesis: term.Ident("h")},
	}, res.Steps)

	t.Run("depth bound leaves goal untouched", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Auto{MaxDepth: 2})
		assert.Equal(t, tactic.NoChange, res.Kind)
		assert.True(t, g.Equal(res.Goal()))
	})

	t.Run("closes every sibling", func(t *testing.T) {
		split := mustEntry(t, goal.New(term.Conj(P(), Q())), goal.Hypothesis("p", P()), goal.Hypothesis("q", Q()))
		res := d.Apply(ctx, split, tactic.Auto{})
		require.True(t, res.Closes(), res.Message)
		assert.Equal(t, tactic.KindSplitConjunction, res.Steps[0].Kind())
	})

	t.Run("custom tactic set", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Auto{Tactics: []tactic.Tactic{tactic.Reflexivity{}}})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})
}

func TestDisproveByTheorem(t *testing.T) {
	notP := registry.Theorem{ID: "not_p", Goal: goal.New(term.Neg(P(x)), goal.ForAll("x", term.Obj("G")))}
	pAll := registry.Theorem{ID: "p_all", Goal: goal.New(P(x), goal.ForAll("x", term.Obj("G")))}
	d := newTestDispatcher(t, notP, pAll)
	ctx := context.Background()

	res := d.Apply(ctx, groupGoal(t, P(a)), tactic.DisproveByTheorem{Rule: tactic.FromTheorem("not_p")})
	require.Equal(t, tactic.SingleGoal, res.Kind, res.Message)
	assert.Equal(t, tactic.Disproved, res.Outcome)

	res = d.Apply(ctx, groupGoal(t, term.Neg(P(b))), tactic.DisproveByTheorem{Rule: tactic.FromTheorem("p_all")})
	assert.Equal(t, tactic.Disproved, res.Outcome)

	res = d.Apply(ctx, groupGoal(t, Q(a)), tactic.DisproveByTheorem{Rule: tactic.FromTheorem("not_p")})
	assert.Equal(t, tactic.Error, res.Kind)
	assert.Contains(t, res.Message, "not the negation")
}
