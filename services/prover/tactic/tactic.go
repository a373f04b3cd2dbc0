// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tactic defines the tactic catalogue and the result of applying a
// tactic to a goal.
//
// Tactics are plain data: every variant exposes its Kind and exported
// typed fields, so renderers and codecs can inspect them without running
// proof logic. Application lives in package dispatch.
package tactic

import (
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// Kind is the discriminant of a tactic variant.
type Kind string

const (
	KindAssumeAntecedent           Kind = "assume_antecedent"
	KindIntroduceVariable          Kind = "introduce_variable"
	KindSplitConjunction           Kind = "split_conjunction"
	KindSplitDisjunction           Kind = "split_disjunction"
	KindProvideWitness             Kind = "provide_witness"
	KindCaseAnalysis               Kind = "case_analysis"
	KindInduction                  Kind = "induction"
	KindSplitHypothesisConjunction Kind = "split_hypothesis_conjunction"
	KindSplitHypothesisDisjunction Kind = "split_hypothesis_disjunction"
	KindExactHypothesis            Kind = "exact_hypothesis"
	KindReflexivity                Kind = "reflexivity"
	KindContradiction              Kind = "contradiction"
	KindContradictHypothesis       Kind = "contradict_hypothesis"
	KindRewrite                    Kind = "rewrite"
	KindUnfoldDefinition           Kind = "unfold_definition"
	KindIntroduceLet               Kind = "introduce_let"
	KindRenameBound                Kind = "rename_bound"
	KindRevertHypothesis           Kind = "revert_hypothesis"
	KindSearchAssumptions          Kind = "search_assumptions"
	KindSearchTheorems             Kind = "search_theorems"
	KindSearch                     Kind = "search"
	KindSimplify                   Kind = "simplify"
	KindAuto                       Kind = "auto"
	KindDisproveByTheorem          Kind = "disprove_by_theorem"
)

// Category groups tactic kinds by the part of the goal they act on.
type Category string

const (
	CategoryIntroduction Category = "introduction"
	CategoryElimination  Category = "elimination"
	CategoryCompletion   Category = "completion"
	CategoryRewriting    Category = "rewriting"
	CategoryAutomation   Category = "automation"
	CategoryMetaLogical  Category = "meta_logical"
)

var categories = map[Kind]Category{
	KindAssumeAntecedent:           CategoryIntroduction,
	KindIntroduceVariable:          CategoryIntroduction,
	KindSplitConjunction:           CategoryIntroduction,
	KindSplitDisjunction:           CategoryIntroduction,
	KindProvideWitness:             CategoryIntroduction,
	KindCaseAnalysis:               CategoryIntroduction,
	KindInduction:                  CategoryIntroduction,
	KindSplitHypothesisConjunction: CategoryElimination,
	KindSplitHypothesisDisjunction: CategoryElimination,
	KindExactHypothesis:            CategoryCompletion,
	KindReflexivity:                CategoryCompletion,
	KindContradiction:              CategoryCompletion,
	KindContradictHypothesis:       CategoryCompletion,
	KindRewrite:                    CategoryRewriting,
	KindUnfoldDefinition:           CategoryRewriting,
	KindIntroduceLet:               CategoryRewriting,
	KindRenameBound:                CategoryRewriting,
	KindRevertHypothesis:           CategoryRewriting,
	KindSearchAssumptions:          CategoryAutomation,
	KindSearchTheorems:             CategoryAutomation,
	KindSearch:                     CategoryAutomation,
	KindSimplify:                   CategoryAutomation,
	KindAuto:                       CategoryAutomation,
	KindDisproveByTheorem:          CategoryMetaLogical,
}

// Category returns the category of k, or "" for unknown kinds.
func (k Kind) Category() Category {
	return categories[k]
}

// Kinds returns every tactic kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(categories))
	for k := range categories {
		out = append(out, k)
	}
	return out
}

// Tactic is one proof step. The set of variants is closed.
type Tactic interface {
	Kind() Kind
	fmt.Stringer
	isTactic()
}

// Direction selects which side of an equality rule is searched for.
type Direction string

const (
	// Forward rewrites occurrences of the left side into the right side.
	Forward Direction = "forward"

	// Backward rewrites occurrences of the right side into the left side.
	Backward Direction = "backward"
)

// RuleSource names where a rewrite or disproof rule comes from: a local
// hypothesis, or a registered theorem with an optional proof node index.
type RuleSource struct {
	Hypothesis term.Identifier `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	TheoremID  string          `json:"theorem_id,omitempty" yaml:"theorem_id,omitempty"`

	// NodeIndex selects a node of the theorem's proof forest whose goal
	// statement is used. nil selects the root.
	NodeIndex *int `json:"node_index,omitempty" yaml:"node_index,omitempty"`
}

// FromHypothesis builds a rule source naming a context entry.
func FromHypothesis(name string) RuleSource {
	return RuleSource{Hypothesis: term.Ident(name)}
}

// FromTheorem builds a rule source naming a registered theorem.
func FromTheorem(id string) RuleSource {
	return RuleSource{TheoremID: id}
}

// IsTheorem reports whether the rule comes from the registry.
func (r RuleSource) IsTheorem() bool {
	return r.TheoremID != ""
}

func (r RuleSource) String() string {
	if r.IsTheorem() {
		if r.NodeIndex != nil {
			return fmt.Sprintf("theorem %s#%d", r.TheoremID, *r.NodeIndex)
		}
		return "theorem " + r.TheoremID
	}
	return "hypothesis " + r.Hypothesis.String()
}
