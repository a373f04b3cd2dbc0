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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/forest"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/registry"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

func newTestDispatcher(t *testing.T, theorems ...registry.Theorem) *Dispatcher {
	t.Helper()
	store := registry.NewStore()
	for _, th := range theorems {
		require.NoError(t, store.Insert(th))
	}
	return New(store, Options{Registerer: prometheus.NewRegistry(), TracingEnabled: true})
}

func mustEntry(t *testing.T, g goal.Goal, entries ...goal.Entry) goal.Goal {
	t.Helper()
	for _, e := range entries {
		var err error
		g, err = g.WithEntry(e)
		require.NoError(t, err)
	}
	require.NoError(t, g.Validate())
	return g
}

var (
	x = term.VarRef("x")
	a = term.VarRef("a")
	b = term.VarRef("b")
)

func P(args ...term.Expr) term.Rel { return term.Pred("P", args...) }
func Q(args ...term.Expr) term.Rel { return term.Pred("Q", args...) }
func R(args ...term.Expr) term.Rel { return term.Pred("R", args...) }

func TestSplitConjunction(t *testing.T) {
	d := newTestDispatcher(t)
	g := mustEntry(t,
		goal.New(term.Conj(P(x), Q(x), R(x)), goal.ForAll("x", term.Obj("Nat"))),
		goal.Hypothesis("h", P(term.Num(0))),
	)
	before := g.String()

	t.Run("middle conjunct", func(t *testing.T) {
		res := d.Apply(context.Background(), g, tactic.SplitConjunction{Index: 1})
		require.Equal(t, tactic.MultiGoal, res.Kind)
		require.Len(t, res.Goals, 2)

		assert.True(t, g.WithStatement(Q(x)).Equal(res.Goals[0]))
		assert.True(t, g.WithStatement(term.Conj(P(x), R(x))).Equal(res.Goals[1]))
		assert.Equal(t, before, g.String())
	})

	t.Run("two conjuncts leave a bare relation", func(t *testing.T) {
		two := g.WithStatement(term.Conj(P(x), Q(x)))
		res := d.Apply(context.Background(), two, tactic.SplitConjunction{Index: 0})
		require.Equal(t, tactic.MultiGoal, res.Kind)
		assert.True(t, term.EqualRel(P(x), res.Goals[0].Statement))
		assert.True(t, term.EqualRel(Q(x), res.Goals[1].Statement))
	})

	t.Run("index out of range", func(t *testing.T) {
		res := d.Apply(context.Background(), g, tactic.SplitConjunction{Index: 3})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "index out of range")
		assert.True(t, g.Equal(res.Goal()))
	})

	t.Run("not a conjunction", func(t *testing.T) {
		res := d.Apply(context.Background(), g.WithStatement(P(x)), tactic.SplitConjunction{})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})
}

func TestSplitDisjunction(t *testing.T) {
	d := newTestDispatcher(t)
	g := goal.New(term.Disj(P(), Q()))

	res := d.Apply(context.Background(), g, tactic.SplitDisjunction{Index: 1})
	require.Equal(t, tactic.SingleGoal, res.Kind)
	assert.True(t, term.EqualRel(Q(), res.Goal().Statement))

	res = d.Apply(context.Background(), g, tactic.SplitDisjunction{Index: -1})
	assert.Equal(t, tactic.Error, res.Kind)
}

func TestAssumeAntecedent(t *testing.T) {
	d := newTestDispatcher(t)
	g := goal.New(term.Imp(P(), Q()))

	res := d.Apply(context.Background(), g, tactic.AssumeAntecedent{HypothesisName: "hp"})
	require.Equal(t, tactic.SingleGoal, res.Kind)
	out := res.Goal()
	assert.True(t, term.EqualRel(Q(), out.Statement))
	h, _, ok := out.Context.Lookup(term.Ident("hp"))
	require.True(t, ok)
	r, ok := h.Relation()
	require.True(t, ok)
	assert.True(t, term.EqualRel(P(), r))
	assert.Empty(t, g.Context)

	taken := mustEntry(t, g, goal.Hypothesis("hp", R()))
	res = d.Apply(context.Background(), taken, tactic.AssumeAntecedent{HypothesisName: "hp"})
	assert.Equal(t, tactic.Error, res.Kind)

	res = d.Apply(context.Background(), goal.New(P()), tactic.AssumeAntecedent{})
	assert.Equal(t, tactic.NoChange, res.Kind)
}

func TestIntroduceVariable(t *testing.T) {
	d := newTestDispatcher(t)
	nat := term.Obj("Nat")

	t.Run("moves quantifier into context", func(t *testing.T) {
		g := goal.New(P(x), goal.ForAll("x", nat))
		res := d.Apply(context.Background(), g, tactic.IntroduceVariable{})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		out := res.Goal()
		assert.Empty(t, out.Quantifiers)
		e, _, ok := out.Context.Lookup(term.Ident("x"))
		require.True(t, ok)
		assert.True(t, term.EqualExpr(nat, e.Type))
		assert.NoError(t, out.Validate())
	})

	t.Run("renames on clash", func(t *testing.T) {
		g := mustEntry(t, goal.New(P(x), goal.ForAll("x", nat)), goal.Variable("x", nat))
		res := d.Apply(context.Background(), g, tactic.IntroduceVariable{})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		fresh := term.Identifier{Name: "x", Index: 1}
		assert.True(t, res.Goal().Context.Has(fresh))
		assert.True(t, term.EqualRel(P(term.VarOf(fresh)), res.Goal().Statement))
	})

	t.Run("existential prefix blocks", func(t *testing.T) {
		g := goal.New(P(x, b), goal.Exists("b", nat), goal.ForAll("x", nat))
		res := d.Apply(context.Background(), g, tactic.IntroduceVariable{Variable: term.Ident("x")})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})

	t.Run("unknown variable", func(t *testing.T) {
		g := goal.New(P(x), goal.ForAll("x", nat))
		res := d.Apply(context.Background(), g, tactic.IntroduceVariable{Variable: term.Ident("y")})
		assert.Equal(t, tactic.Error, res.Kind)
	})
}

func TestProvideWitness(t *testing.T) {
	d := newTestDispatcher(t)

	t.Run("existential", func(t *testing.T) {
		g := goal.New(P(x), goal.Exists("x", anyDomain()))
		res := d.Apply(context.Background(), g, tactic.ProvideWitness{Value: term.Num(3)})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.True(t, term.EqualRel(P(term.Num(3)), res.Goal().Statement))
		assert.Empty(t, res.Goal().Quantifiers)
	})

	t.Run("unique existential yields uniqueness goal", func(t *testing.T) {
		g := goal.New(P(x), goal.ExistsUnique("x", anyDomain()))
		res := d.Apply(context.Background(), g, tactic.ProvideWitness{Value: term.Num(3)})
		require.Equal(t, tactic.MultiGoal, res.Kind)
		require.Len(t, res.Goals, 2)
		assert.Equal(t, "⊢ P(3)", res.Goals[0].String())
		assert.Equal(t, "⊢ ∀x_1. (P(x_1) → (x_1 = 3))", res.Goals[1].String())
	})

	t.Run("unbound witness", func(t *testing.T) {
		g := goal.New(P(x), goal.Exists("x", anyDomain()))
		res := d.Apply(context.Background(), g, tactic.ProvideWitness{Value: a})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "unbound identifier")
	})

	t.Run("universal", func(t *testing.T) {
		g := goal.New(P(x), goal.ForAll("x", anyDomain()))
		res := d.Apply(context.Background(), g, tactic.ProvideWitness{Value: term.Num(1)})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})
}

// anyDomain is an unspecified quantifier domain.
func anyDomain() term.Expr { return term.Expr{} }

func TestCaseAnalysis(t *testing.T) {
	d := newTestDispatcher(t)
	g := goal.New(P(term.VarRef("n")), goal.ForAll("n", term.Obj("Nat")))
	n := term.Ident("n")

	t.Run("one sibling per case", func(t *testing.T) {
		ca := tactic.CaseAnalysis{
			Targets: []term.Identifier{n},
			Cases: []tactic.Case{
				{HypothesisName: "zero", Hypothesis: term.Eq(term.VarOf(n), term.Num(0)), Values: []term.Expr{term.Num(0)}},
				{HypothesisName: "one", Hypothesis: term.Eq(term.VarOf(n), term.Num(1)), Values: []term.Expr{term.Num(1)}},
				{HypothesisName: "big", Hypothesis: term.TheoryRel("nat", "gt", term.VarOf(n), term.Num(1))},
			},
		}
		res := d.Apply(context.Background(), g, ca)
		require.Equal(t, tactic.MultiGoal, res.Kind)
		require.Len(t, res.Goals, 3)

		assert.True(t, res.Goals[0].Context.Has(term.Ident("zero")))
		assert.True(t, term.EqualRel(P(term.Num(0)), res.Goals[0].Statement))
		assert.True(t, res.Goals[1].Context.Has(term.Ident("one")))
		assert.True(t, term.EqualRel(P(term.Num(1)), res.Goals[1].Statement))
		assert.True(t, res.Goals[2].Context.Has(term.Ident("big")))
		assert.True(t, term.EqualRel(P(term.VarOf(n)), res.Goals[2].Statement))
	})

	t.Run("forest records n siblings", func(t *testing.T) {
		for _, count := range []int{1, 2, 5} {
			cases := make([]tactic.Case, count)
			for i := range cases {
				cases[i] = tactic.Case{Hypothesis: term.Eq(term.VarOf(n), term.Num(int64(i))), Values: []term.Expr{term.Num(int64(i))}}
			}
			ca := tactic.CaseAnalysis{Targets: []term.Identifier{n}, Cases: cases}
			res := d.Apply(context.Background(), g, ca)
			require.Equal(t, tactic.MultiGoal, res.Kind)

			f := forest.New()
			root, err := f.AddRoot(g)
			require.NoError(t, err)
			ids, err := f.Commit(root, ca, res)
			require.NoError(t, err)
			assert.Len(t, ids, count)
			for i, id := range ids {
				node, err := f.Node(id)
				require.NoError(t, err)
				assert.Equal(t, root, node.Parent)
				assert.True(t, node.Goal.Context.Has(term.Ident("case")))
				assert.True(t, term.EqualRel(P(term.Num(int64(i))), node.Goal.Statement))
			}
		}
	})

	t.Run("value count mismatch", func(t *testing.T) {
		ca := tactic.CaseAnalysis{
			Targets: []term.Identifier{n},
			Cases:   []tactic.Case{{Values: []term.Expr{term.Num(0), term.Num(1)}}},
		}
		res := d.Apply(context.Background(), g, ca)
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("no cases", func(t *testing.T) {
		res := d.Apply(context.Background(), g, tactic.CaseAnalysis{Targets: []term.Identifier{n}})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("dependent context entries", func(t *testing.T) {
		m := term.Ident("m")
		withCtx := mustEntry(t, goal.New(Q(term.VarOf(m))),
			goal.Variable("m", term.Obj("Nat")),
			goal.Hypothesis("pm", P(term.VarOf(m))),
			goal.Hypothesis("r", R()),
			goal.Let("k", term.Obj("Nat"), term.Apply("nat", "succ", term.VarOf(m))),
		)
		before := withCtx.String()
		ca := tactic.CaseAnalysis{
			Targets: []term.Identifier{m},
			Cases:   []tactic.Case{{HypothesisName: "zero", Hypothesis: term.Eq(term.VarOf(m), term.Num(0)), Values: []term.Expr{term.Num(0)}}},
		}
		res := d.Apply(context.Background(), withCtx, ca)
		require.Equal(t, tactic.MultiGoal, res.Kind, res.Message)
		require.Len(t, res.Goals, 1)
		got := res.Goals[0]

		assert.True(t, term.EqualRel(Q(term.Num(0)), got.Statement))
		pm, _, ok := got.Context.Lookup(term.Ident("pm"))
		require.True(t, ok)
		rel, ok := pm.Relation()
		require.True(t, ok)
		assert.True(t, term.EqualRel(P(term.Num(0)), rel))

		k, _, ok := got.Context.Lookup(term.Ident("k"))
		require.True(t, ok)
		v, ok := k.Definition.Value()
		require.True(t, ok)
		assert.True(t, term.EqualExpr(term.Apply("nat", "succ", term.Num(0)), v))

		assert.True(t, got.Context.Has(m))
		zero, _, ok := got.Context.Lookup(term.Ident("zero"))
		require.True(t, ok)
		rel, ok = zero.Relation()
		require.True(t, ok)
		assert.True(t, term.EqualRel(term.Eq(term.VarOf(m), term.Num(0)), rel))
		assert.Equal(t, before, withCtx.String())
	})
}

func TestInduction(t *testing.T) {
	d := newTestDispatcher(t)
	g := goal.New(P(term.VarRef("n")), goal.ForAll("n", term.Obj("Nat")))

	res := d.Apply(context.Background(), g, tactic.Induction{
		Variable: term.Ident("n"), Base: term.Num(0), Theory: "nat", Successor: "succ",
	})
	require.Equal(t, tactic.MultiGoal, res.Kind)
	require.Len(t, res.Goals, 2)

	assert.Equal(t, "⊢ P(0)", res.Goals[0].String())
	assert.Equal(t, "n : Nat\nih : P(n)\n⊢ P(nat.succ(n))", res.Goals[1].String())
	assert.NoError(t, res.Goals[1].Validate())

	res = d.Apply(context.Background(), g, tactic.Induction{Variable: term.Ident("n")})
	assert.Equal(t, tactic.Error, res.Kind)
}

func TestSplitHypotheses(t *testing.T) {
	d := newTestDispatcher(t)

	t.Run("conjunction replaces hypothesis in place", func(t *testing.T) {
		g := mustEntry(t, goal.New(R()), goal.Hypothesis("h", term.Conj(P(), Q())), goal.Hypothesis("k", R()))
		res := d.Apply(context.Background(), g, tactic.SplitHypothesisConjunction{Hypothesis: term.Ident("h")})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "h : P()\nh_1 : Q()\nk : R()\n⊢ R()", res.Goal().String())

		res = d.Apply(context.Background(), g, tactic.SplitHypothesisConjunction{Hypothesis: term.Ident("h"), Names: []string{"hp", "hq"}})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "hp : P()\nhq : Q()\nk : R()\n⊢ R()", res.Goal().String())

		res = d.Apply(context.Background(), g, tactic.SplitHypothesisConjunction{Hypothesis: term.Ident("h"), Names: []string{"k"}})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("disjunction yields one goal per disjunct", func(t *testing.T) {
		g := mustEntry(t, goal.New(R()), goal.Hypothesis("h", term.Disj(P(), Q())))
		res := d.Apply(context.Background(), g, tactic.SplitHypothesisDisjunction{Hypothesis: term.Ident("h")})
		require.Equal(t, tactic.MultiGoal, res.Kind)
		require.Len(t, res.Goals, 2)
		assert.Equal(t, "h : P()\n⊢ R()", res.Goals[0].String())
		assert.Equal(t, "h : Q()\n⊢ R()", res.Goals[1].String())
	})

	t.Run("missing hypothesis", func(t *testing.T) {
		res := d.Apply(context.Background(), goal.New(R()), tactic.SplitHypothesisConjunction{Hypothesis: term.Ident("h")})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.Contains(t, res.Message, "hypothesis not found")
	})

	t.Run("wrong shape", func(t *testing.T) {
		g := mustEntry(t, goal.New(R()), goal.Hypothesis("h", P()))
		res := d.Apply(context.Background(), g, tactic.SplitHypothesisDisjunction{Hypothesis: term.Ident("h")})
		assert.Equal(t, tactic.NoChange, res.Kind)
	})
}

func TestReflexivity(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	g := mustEntry(t, goal.New(term.Eq(term.Apply("group", "mul", a, b), term.Apply("group", "mul", a, b))),
		goal.Variable("a", term.Obj("G")), goal.Variable("b", term.Obj("G")))

	t.Run("identical sides complete the node", func(t *testing.T) {
		res := d.Apply(ctx, g, tactic.Reflexivity{})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, tactic.Proved, res.Outcome)
		assert.True(t, res.Closes())

		f := forest.New()
		root, err := f.AddRoot(g)
		require.NoError(t, err)
		_, err = f.Commit(root, tactic.Reflexivity{}, res)
		require.NoError(t, err)
		status, err := f.Status(root)
		require.NoError(t, err)
		assert.Equal(t, forest.StatusComplete, status)
	})

	t.Run("different sides fail", func(t *testing.T) {
		neq := g.WithStatement(term.Eq(a, b))
		res := d.Apply(ctx, neq, tactic.Reflexivity{})
		assert.Equal(t, tactic.Error, res.Kind)
		assert.True(t, neq.Equal(res.Goal()))
	})

	t.Run("equivalence", func(t *testing.T) {
		res := d.Apply(ctx, goal.New(term.Iff(P(), P())), tactic.Reflexivity{})
		assert.True(t, res.Closes())
	})
}

func TestCompletion(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	g := mustEntry(t, goal.New(Q()),
		goal.Hypothesis("p", P()),
		goal.Hypothesis("np", term.Neg(P())),
		goal.Hypothesis("q", Q()),
		goal.Variable("a", term.Obj("G")),
		goal.Hypothesis("bad", term.Neg(term.Eq(a, a))),
	)

	tests := []struct {
		name   string
		tactic tactic.Tactic
		closes bool
	}{
		{"exact matching hypothesis", tactic.ExactHypothesis{Hypothesis: term.Ident("q")}, true},
		{"exact other hypothesis", tactic.ExactHypothesis{Hypothesis: term.Ident("p")}, false},
		{"exact variable", tactic.ExactHypothesis{Hypothesis: term.Ident("a")}, false},
		{"contradiction", tactic.Contradiction{Hypothesis: term.Ident("p"), Negation: term.Ident("np")}, true},
		{"contradiction reversed", tactic.Contradiction{Hypothesis: term.Ident("np"), Negation: term.Ident("p")}, false},
		{"absurd hypothesis", tactic.ContradictHypothesis{Hypothesis: term.Ident("bad")}, true},
		{"consistent hypothesis", tactic.ContradictHypothesis{Hypothesis: term.Ident("p")}, false},
		{"missing hypothesis", tactic.ExactHypothesis{Hypothesis: term.Ident("zz")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Apply(ctx, g, tt.tactic)
			if tt.closes {
				assert.True(t, res.Closes(), res.String())
				assert.True(t, res.Goal().IsClosed())
				return
			}
			assert.Equal(t, tactic.Error, res.Kind)
			assert.True(t, g.Equal(res.Goal()))
		})
	}
}

func TestStructuralTactics(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	nat := term.Obj("Nat")

	t.Run("unfold definition", func(t *testing.T) {
		y := term.VarRef("y")
		g := mustEntry(t, goal.New(P(y, y)), goal.Let("y", nat, term.Num(2)))
		res := d.Apply(ctx, g, tactic.UnfoldDefinition{Name: term.Ident("y"), Target: goal.StatementTarget()})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.True(t, term.EqualRel(P(term.Num(2), term.Num(2)), res.Goal().Statement))

		res = d.Apply(ctx, g.WithStatement(Q()), tactic.UnfoldDefinition{Name: term.Ident("y")})
		assert.Equal(t, tactic.Error, res.Kind)

		abstract := mustEntry(t, goal.New(P(a)), goal.Variable("a", nat))
		res = d.Apply(ctx, abstract, tactic.UnfoldDefinition{Name: term.Ident("a")})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("introduce let", func(t *testing.T) {
		g := mustEntry(t, goal.New(P(a)), goal.Variable("a", nat))
		res := d.Apply(ctx, g, tactic.IntroduceLet{Name: "c", Type: nat, Value: term.Apply("nat", "succ", a)})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "a : Nat\nc : Nat := nat.succ(a)\n⊢ P(a)", res.Goal().String())

		res = d.Apply(ctx, g, tactic.IntroduceLet{Name: "a", Value: term.Num(1)})
		assert.Equal(t, tactic.Error, res.Kind)
		res = d.Apply(ctx, g, tactic.IntroduceLet{Name: "c", Value: b})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("rename bound", func(t *testing.T) {
		g := goal.New(P(x), goal.ForAll("x", nat))
		res := d.Apply(ctx, g, tactic.RenameBound{From: term.Ident("x"), To: term.Ident("z")})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "⊢ ∀z:Nat. P(z)", res.Goal().String())
		assert.Equal(t, "⊢ ∀x:Nat. P(x)", g.String())

		res = d.Apply(ctx, g, tactic.RenameBound{From: term.Ident("w"), To: term.Ident("z")})
		assert.Equal(t, tactic.Error, res.Kind)
	})

	t.Run("revert hypothesis", func(t *testing.T) {
		g := mustEntry(t, goal.New(Q(a)), goal.Variable("a", nat), goal.Hypothesis("h", P(a)))
		res := d.Apply(ctx, g, tactic.RevertHypothesis{Name: term.Ident("h")})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "a : Nat\n⊢ (P(a) → Q(a))", res.Goal().String())

		res = d.Apply(ctx, res.Goal(), tactic.RevertHypothesis{Name: term.Ident("a")})
		require.Equal(t, tactic.SingleGoal, res.Kind)
		assert.Equal(t, "⊢ ∀a:Nat. (P(a) → Q(a))", res.Goal().String())

		res = d.Apply(ctx, g, tactic.RevertHypothesis{Name: term.Ident("a")})
		assert.Equal(t, tactic.Error, res.Kind, "h depends on a")
	})
}

func TestApply_NilTactic(t *testing.T) {
	d := newTestDispatcher(t)
	res := d.Apply(context.Background(), goal.New(P()), nil)
	assert.Equal(t, tactic.Error, res.Kind)
}

func TestApply_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := New(nil, Options{Registerer: reg})
	g := goal.New(term.Eq(term.Num(1), term.Num(1)))

	d.Apply(context.Background(), g, tactic.Reflexivity{})
	d.Apply(context.Background(), g, tactic.SplitConjunction{})

	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.applications.WithLabelValues("reflexivity", "single_goal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.applications.WithLabelValues("split_conjunction", "no_change")))
}

func TestTacticError(t *testing.T) {
	err := newTacticError(tactic.KindRewrite, "resolve rule", ErrTheoremNotFound)
	assert.Equal(t, "rewrite: resolve rule: theorem not found", err.Error())
	assert.ErrorIs(t, err, ErrTheoremNotFound)
}
