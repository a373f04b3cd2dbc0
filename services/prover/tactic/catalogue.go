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
	"strings"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// -----------------------------------------------------------------------------
// Goal-directed introduction
// -----------------------------------------------------------------------------

// AssumeAntecedent turns a goal A → B into B with hypothesis A.
type AssumeAntecedent struct {
	// HypothesisName names the new hypothesis; "h" when empty.
	HypothesisName string
}

// IntroduceVariable moves a universally quantified variable into the
// context.
type IntroduceVariable struct {
	// Variable selects the quantifier; zero selects the first one.
	Variable term.Identifier
}

// SplitConjunction splits a goal And(items) at Index into the selected
// conjunct and the remaining ones.
type SplitConjunction struct {
	Index int
}

// SplitDisjunction proves a goal Or(items) by proving the disjunct at Index.
type SplitDisjunction struct {
	Index int
}

// ProvideWitness discharges the first existential quantifier with Value.
type ProvideWitness struct {
	Value term.Expr
}

// Case is one branch of a case analysis.
type Case struct {
	HypothesisName string
	Hypothesis     term.Rel

	// Values replace CaseAnalysis.Targets positionally.
	Values []term.Expr
}

// CaseAnalysis produces one goal per case, each with its case hypothesis
// added and the target identifiers replaced by the case values.
type CaseAnalysis struct {
	Targets []term.Identifier
	Cases   []Case
}

// Induction proves a universally quantified goal by a base case and a
// step case over Theory.Successor.
type Induction struct {
	Variable       term.Identifier
	Base           term.Expr
	Theory         string
	Successor      string
	HypothesisName string
}

// -----------------------------------------------------------------------------
// Context-directed elimination
// -----------------------------------------------------------------------------

// SplitHypothesisConjunction replaces a conjunction hypothesis by its
// conjuncts, named by Names (generated when short).
type SplitHypothesisConjunction struct {
	Hypothesis term.Identifier
	Names      []string
}

// SplitHypothesisDisjunction produces one goal per disjunct of a
// disjunction hypothesis.
type SplitHypothesisDisjunction struct {
	Hypothesis term.Identifier
	Names      []string
}

// -----------------------------------------------------------------------------
// Completion
// -----------------------------------------------------------------------------

// ExactHypothesis closes a goal whose statement is the named hypothesis.
type ExactHypothesis struct {
	Hypothesis term.Identifier
}

// Reflexivity closes a goal t = t.
type Reflexivity struct{}

// Contradiction closes any goal given hypotheses A and ¬A.
type Contradiction struct {
	Hypothesis term.Identifier
	Negation   term.Identifier
}

// ContradictHypothesis closes any goal given a self-contradictory
// hypothesis: ⊥, ¬⊤ or ¬(t = t).
type ContradictHypothesis struct {
	Hypothesis term.Identifier
}

// -----------------------------------------------------------------------------
// Rewriting and structural
// -----------------------------------------------------------------------------

// Instantiation fixes a rule variable before matching.
type Instantiation struct {
	Variable term.Identifier
	Value    term.Expr
}

// Rewrite replaces the first match of one side of an equality (or
// equivalence) rule by the other side.
type Rewrite struct {
	Rule           RuleSource
	Direction      Direction
	Instantiations []Instantiation
	Target         goal.Target
}

// UnfoldDefinition replaces references to a let-bound context entry by
// its value within Target.
type UnfoldDefinition struct {
	Name   term.Identifier
	Target goal.Target
}

// IntroduceLet adds a concretely defined context entry.
type IntroduceLet struct {
	Name  string
	Type  term.Expr
	Value term.Expr
}

// RenameBound renames a quantified variable and its references.
type RenameBound struct {
	From term.Identifier
	To   term.Identifier
}

// RevertHypothesis moves a context entry back into the goal: a hypothesis
// H turns the statement S into H → S, a variable is re-quantified.
type RevertHypothesis struct {
	Name term.Identifier
}

// -----------------------------------------------------------------------------
// Automated macros
// -----------------------------------------------------------------------------

// SearchAssumptions closes the goal with any matching hypothesis.
type SearchAssumptions struct{}

// SearchTheorems closes the goal with a registered theorem whose statement
// it instantiates. An empty list searches every registered theorem.
type SearchTheorems struct {
	TheoremIDs []string
}

// Search tries SearchAssumptions then SearchTheorems.
type Search struct {
	TheoremIDs []string
}

// Simplify rewrites with Rules until no rule applies or MaxSteps is hit.
type Simplify struct {
	Rules    []RuleSource
	MaxSteps int
}

// Auto searches for a chain of Tactics closing the goal, at most MaxDepth
// steps deep. An empty list uses the default tactic set.
type Auto struct {
	Tactics  []Tactic
	MaxDepth int
}

// -----------------------------------------------------------------------------
// Meta-logical
// -----------------------------------------------------------------------------

// DisproveByTheorem marks the goal disproven by a theorem whose statement
// is its negation.
type DisproveByTheorem struct {
	Rule RuleSource
}

func (AssumeAntecedent) Kind() Kind           { return KindAssumeAntecedent }
func (IntroduceVariable) Kind() Kind          { return KindIntroduceVariable }
func (SplitConjunction) Kind() Kind           { return KindSplitConjunction }
func (SplitDisjunction) Kind() Kind           { return KindSplitDisjunction }
func (ProvideWitness) Kind() Kind             { return KindProvideWitness }
func (CaseAnalysis) Kind() Kind               { return KindCaseAnalysis }
func (Induction) Kind() Kind                  { return KindInduction }
func (SplitHypothesisConjunction) Kind() Kind { return KindSplitHypothesisConjunction }
func (SplitHypothesisDisjunction) Kind() Kind { return KindSplitHypothesisDisjunction }
func (ExactHypothesis) Kind() Kind            { return KindExactHypothesis }
func (Reflexivity) Kind() Kind                { return KindReflexivity }
func (Contradiction) Kind() Kind              { return KindContradiction }
func (ContradictHypothesis) Kind() Kind       { return KindContradictHypothesis }
func (Rewrite) Kind() Kind                    { return KindRewrite }
func (UnfoldDefinition) Kind() Kind           { return KindUnfoldDefinition }
func (IntroduceLet) Kind() Kind               { return KindIntroduceLet }
func (RenameBound) Kind() Kind                { return KindRenameBound }
func (RevertHypothesis) Kind() Kind           { return KindRevertHypothesis }
func (SearchAssumptions) Kind() Kind          { return KindSearchAssumptions }
func (SearchTheorems) Kind() Kind             { return KindSearchTheorems }
func (Search) Kind() Kind                     { return KindSearch }
func (Simplify) Kind() Kind                   { return KindSimplify }
func (Auto) Kind() Kind                       { return KindAuto }
func (DisproveByTheorem) Kind() Kind          { return KindDisproveByTheorem }

func (AssumeAntecedent) isTactic()           {}
func (IntroduceVariable) isTactic()          {}
func (SplitConjunction) isTactic()           {}
func (SplitDisjunction) isTactic()           {}
func (ProvideWitness) isTactic()             {}
func (CaseAnalysis) isTactic()               {}
func (Induction) isTactic()                  {}
func (SplitHypothesisConjunction) isTactic() {}
func (SplitHypothesisDisjunction) isTactic() {}
func (ExactHypothesis) isTactic()            {}
func (Reflexivity) isTactic()                {}
func (Contradiction) isTactic()              {}
func (ContradictHypothesis) isTactic()       {}
func (Rewrite) isTactic()                    {}
func (UnfoldDefinition) isTactic()           {}
func (IntroduceLet) isTactic()               {}
func (RenameBound) isTactic()                {}
func (RevertHypothesis) isTactic()           {}
func (SearchAssumptions) isTactic()          {}
func (SearchTheorems) isTactic()             {}
func (Search) isTactic()                     {}
func (Simplify) isTactic()                   {}
func (Auto) isTactic()                       {}
func (DisproveByTheorem) isTactic()          {}

func (t AssumeAntecedent) String() string {
	if t.HypothesisName == "" {
		return string(t.Kind())
	}
	return fmt.Sprintf("%s(%s)", t.Kind(), t.HypothesisName)
}

func (t IntroduceVariable) String() string {
	if t.Variable.IsZero() {
		return string(t.Kind())
	}
	return fmt.Sprintf("%s(%s)", t.Kind(), t.Variable)
}

func (t SplitConjunction) String() string { return fmt.Sprintf("%s(%d)", t.Kind(), t.Index) }
func (t SplitDisjunction) String() string { return fmt.Sprintf("%s(%d)", t.Kind(), t.Index) }
func (t ProvideWitness) String() string   { return fmt.Sprintf("%s(%s)", t.Kind(), t.Value) }

func (t CaseAnalysis) String() string {
	return fmt.Sprintf("%s(%s; %d cases)", t.Kind(), joinIdents(t.Targets), len(t.Cases))
}

func (t Induction) String() string {
	return fmt.Sprintf("%s(%s from %s via %s.%s)", t.Kind(), t.Variable, t.Base, t.Theory, t.Successor)
}

func (t SplitHypothesisConjunction) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind(), t.Hypothesis)
}

func (t SplitHypothesisDisjunction) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind(), t.Hypothesis)
}

func (t ExactHypothesis) String() string { return fmt.Sprintf("%s(%s)", t.Kind(), t.Hypothesis) }
func (t Reflexivity) String() string     { return string(t.Kind()) }

func (t Contradiction) String() string {
	return fmt.Sprintf("%s(%s, %s)", t.Kind(), t.Hypothesis, t.Negation)
}

func (t ContradictHypothesis) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind(), t.Hypothesis)
}

func (t Rewrite) String() string {
	dir := t.Direction
	if dir == "" {
		dir = Forward
	}
	return fmt.Sprintf("%s(%s, %s)", t.Kind(), t.Rule, dir)
}

func (t UnfoldDefinition) String() string { return fmt.Sprintf("%s(%s)", t.Kind(), t.Name) }
func (t IntroduceLet) String() string     { return fmt.Sprintf("%s(%s := %s)", t.Kind(), t.Name, t.Value) }
func (t RenameBound) String() string      { return fmt.Sprintf("%s(%s → %s)", t.Kind(), t.From, t.To) }
func (t RevertHypothesis) String() string { return fmt.Sprintf("%s(%s)", t.Kind(), t.Name) }
func (t SearchAssumptions) String() string {
	return string(t.Kind())
}

func (t SearchTheorems) String() string {
	if len(t.TheoremIDs) == 0 {
		return string(t.Kind())
	}
	return fmt.Sprintf("%s(%s)", t.Kind(), strings.Join(t.TheoremIDs, ", "))
}

func (t Search) String() string { return string(t.Kind()) }

func (t Simplify) String() string {
	return fmt.Sprintf("%s(%d rules, max %d)", t.Kind(), len(t.Rules), t.MaxSteps)
}

func (t Auto) String() string {
	return fmt.Sprintf("%s(depth %d)", t.Kind(), t.MaxDepth)
}

func (t DisproveByTheorem) String() string { return fmt.Sprintf("%s(%s)", t.Kind(), t.Rule) }

func joinIdents(ids []term.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
