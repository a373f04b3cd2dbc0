// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codec

import (
	"fmt"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/goal"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/tactic"
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// RuleDoc is the document form of a tactic.RuleSource.
type RuleDoc struct {
	Hypothesis string `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	Theorem    string `json:"theorem,omitempty" yaml:"theorem,omitempty"`
	Node       *int   `json:"node,omitempty" yaml:"node,omitempty"`
}

// TargetDoc is the document form of a goal.Target.
type TargetDoc struct {
	Scope        string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Entries      []string `json:"entries,omitempty" yaml:"entries,omitempty"`
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Indices      []int    `json:"indices,omitempty" yaml:"indices,omitempty"`
	AllowReorder bool     `json:"allow_reorder,omitempty" yaml:"allow_reorder,omitempty"`
}

// CaseDoc is the document form of one case of a case analysis.
type CaseDoc struct {
	Hypothesis string `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	Statement  any    `json:"statement" yaml:"statement"`
	Values     []any  `json:"values" yaml:"values"`
}

// TacticDoc is the flat document form of every tactic variant. Only the
// fields the variant uses are set.
type TacticDoc struct {
	Kind string `json:"kind" yaml:"kind"`

	Index          int            `json:"index,omitempty" yaml:"index,omitempty"`
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Hypothesis     string         `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	Negation       string         `json:"negation,omitempty" yaml:"negation,omitempty"`
	Names          []string       `json:"names,omitempty" yaml:"names,omitempty"`
	Variable       string         `json:"variable,omitempty" yaml:"variable,omitempty"`
	From           string         `json:"from,omitempty" yaml:"from,omitempty"`
	To             string         `json:"to,omitempty" yaml:"to,omitempty"`
	Value          any            `json:"value,omitempty" yaml:"value,omitempty"`
	Type           any            `json:"type,omitempty" yaml:"type,omitempty"`
	Base           any            `json:"base,omitempty" yaml:"base,omitempty"`
	Theory         string         `json:"theory,omitempty" yaml:"theory,omitempty"`
	Successor      string         `json:"successor,omitempty" yaml:"successor,omitempty"`
	Targets        []string       `json:"targets,omitempty" yaml:"targets,omitempty"`
	Cases          []CaseDoc      `json:"cases,omitempty" yaml:"cases,omitempty"`
	Rule           *RuleDoc       `json:"rule,omitempty" yaml:"rule,omitempty"`
	Rules          []RuleDoc      `json:"rules,omitempty" yaml:"rules,omitempty"`
	Direction      string         `json:"direction,omitempty" yaml:"direction,omitempty"`
	Instantiations map[string]any `json:"instantiations,omitempty" yaml:"instantiations,omitempty"`
	Target         *TargetDoc     `json:"target,omitempty" yaml:"target,omitempty"`
	Theorems       []string       `json:"theorems,omitempty" yaml:"theorems,omitempty"`
	MaxSteps       int            `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	MaxDepth       int            `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	Tactics        []TacticDoc    `json:"tactics,omitempty" yaml:"tactics,omitempty"`
}

func identOrEmpty(id term.Identifier) string {
	if id.IsZero() {
		return ""
	}
	return FormatIdent(id)
}

func encodeRule(r tactic.RuleSource) RuleDoc {
	return RuleDoc{Hypothesis: identOrEmpty(r.Hypothesis), Theorem: r.TheoremID, Node: r.NodeIndex}
}

func encodeTarget(t goal.Target) *TargetDoc {
	if t.Scope == "" && t.ID == "" && len(t.Indices) == 0 && len(t.Entries) == 0 && !t.AllowReorder {
		return nil
	}
	d := &TargetDoc{Scope: string(t.Scope), ID: string(t.ID), Indices: t.Indices, AllowReorder: t.AllowReorder}
	for _, e := range t.Entries {
		d.Entries = append(d.Entries, FormatIdent(e))
	}
	return d
}

// EncodeTactic converts t to its document form.
func EncodeTactic(t tactic.Tactic) TacticDoc {
	d := TacticDoc{Kind: string(t.Kind())}
	switch x := t.(type) {
	case tactic.AssumeAntecedent:
		d.Name = x.HypothesisName
	case tactic.IntroduceVariable:
		d.Variable = identOrEmpty(x.Variable)
	case tactic.SplitConjunction:
		d.Index = x.Index
	case tactic.SplitDisjunction:
		d.Index = x.Index
	case tactic.ProvideWitness:
		d.Value = EncodeExpr(x.Value)
	case tactic.CaseAnalysis:
		for _, id := range x.Targets {
			d.Targets = append(d.Targets, FormatIdent(id))
		}
		for _, c := range x.Cases {
			d.Cases = append(d.Cases, CaseDoc{
				Hypothesis: c.HypothesisName,
				Statement:  EncodeRel(c.Hypothesis),
				Values:     encodeExprs(c.Values),
			})
		}
	case tactic.Induction:
		d.Variable = FormatIdent(x.Variable)
		d.Base = EncodeExpr(x.Base)
		d.Theory = x.Theory
		d.Successor = x.Successor
		d.Name = x.HypothesisName
	case tactic.SplitHypothesisConjunction:
		d.Hypothesis = FormatIdent(x.Hypothesis)
		d.Names = x.Names
	case tactic.SplitHypothesisDisjunction:
		d.Hypothesis = FormatIdent(x.Hypothesis)
		d.Names = x.Names
	case tactic.ExactHypothesis:
		d.Hypothesis = FormatIdent(x.Hypothesis)
	case tactic.Contradiction:
		d.Hypothesis = FormatIdent(x.Hypothesis)
		d.Negation = FormatIdent(x.Negation)
	case tactic.ContradictHypothesis:
		d.Hypothesis = FormatIdent(x.Hypothesis)
	case tactic.Rewrite:
		r := encodeRule(x.Rule)
		d.Rule = &r
		d.Direction = string(x.Direction)
		d.Target = encodeTarget(x.Target)
		if len(x.Instantiations) > 0 {
			d.Instantiations = make(map[string]any, len(x.Instantiations))
			for _, in := range x.Instantiations {
				d.Instantiations[FormatIdent(in.Variable)] = EncodeExpr(in.Value)
			}
		}
	case tactic.UnfoldDefinition:
		d.Name = FormatIdent(x.Name)
		d.Target = encodeTarget(x.Target)
	case tactic.IntroduceLet:
		d.Name = x.Name
		d.Type = EncodeExpr(x.Type)
		d.Value = EncodeExpr(x.Value)
	case tactic.RenameBound:
		d.From = FormatIdent(x.From)
		d.To = FormatIdent(x.To)
	case tactic.RevertHypothesis:
		d.Name = FormatIdent(x.Name)
	case tactic.SearchTheorems:
		d.Theorems = x.TheoremIDs
	case tactic.Search:
		d.Theorems = x.TheoremIDs
	case tactic.Simplify:
		for _, r := range x.Rules {
			d.Rules = append(d.Rules, encodeRule(r))
		}
		d.MaxSteps = x.MaxSteps
	case tactic.Auto:
		for _, sub := range x.Tactics {
			d.Tactics = append(d.Tactics, EncodeTactic(sub))
		}
		d.MaxDepth = x.MaxDepth
	case tactic.DisproveByTheorem:
		r := encodeRule(x.Rule)
		d.Rule = &r
	}
	return d
}

func optIdent(s string) (term.Identifier, error) {
	if s == "" {
		return term.Identifier{}, nil
	}
	return ParseIdent(s)
}

func decodeRule(d *RuleDoc) (tactic.RuleSource, error) {
	if d == nil {
		return tactic.RuleSource{}, malformed("rule", "missing")
	}
	if (d.Hypothesis == "") == (d.Theorem == "") {
		return tactic.RuleSource{}, malformed("rule", "exactly one of hypothesis or theorem")
	}
	h, err := optIdent(d.Hypothesis)
	if err != nil {
		return tactic.RuleSource{}, err
	}
	return tactic.RuleSource{Hypothesis: h, TheoremID: d.Theorem, NodeIndex: d.Node}, nil
}

func decodeTarget(d *TargetDoc) (goal.Target, error) {
	if d == nil {
		return goal.StatementTarget(), nil
	}
	t := goal.Target{
		Scope:        goal.Scope(d.Scope),
		ID:           term.Address(d.ID),
		Indices:      d.Indices,
		AllowReorder: d.AllowReorder,
	}
	switch t.Scope {
	case "":
		t.Scope = goal.ScopeStatement
	case goal.ScopeStatement, goal.ScopeContext, goal.ScopeBoth:
	default:
		return t, malformed("target scope", d.Scope)
	}
	for _, e := range d.Entries {
		id, err := ParseIdent(e)
		if err != nil {
			return t, err
		}
		t.Entries = append(t.Entries, id)
	}
	return t, nil
}

// DecodeTactic converts a tactic document into a tactic.
func DecodeTactic(d TacticDoc) (tactic.Tactic, error) {
	t, err := decodeTactic(d)
	if err != nil {
		return nil, fmt.Errorf("tactic %s: %w", d.Kind, err)
	}
	return t, nil
}

func decodeTactic(d TacticDoc) (tactic.Tactic, error) {
	switch tactic.Kind(d.Kind) {
	case tactic.KindAssumeAntecedent:
		return tactic.AssumeAntecedent{HypothesisName: d.Name}, nil
	case tactic.KindIntroduceVariable:
		v, err := optIdent(d.Variable)
		return tactic.IntroduceVariable{Variable: v}, err
	case tactic.KindSplitConjunction:
		return tactic.SplitConjunction{Index: d.Index}, nil
	case tactic.KindSplitDisjunction:
		return tactic.SplitDisjunction{Index: d.Index}, nil
	case tactic.KindProvideWitness:
		v, err := DecodeExpr(d.Value)
		return tactic.ProvideWitness{Value: v}, err
	case tactic.KindCaseAnalysis:
		return decodeCases(d)
	case tactic.KindInduction:
		v, err := ParseIdent(d.Variable)
		if err != nil {
			return nil, err
		}
		base, err := DecodeExpr(d.Base)
		if err != nil {
			return nil, err
		}
		return tactic.Induction{Variable: v, Base: base, Theory: d.Theory, Successor: d.Successor, HypothesisName: d.Name}, nil
	case tactic.KindSplitHypothesisConjunction:
		h, err := ParseIdent(d.Hypothesis)
		return tactic.SplitHypothesisConjunction{Hypothesis: h, Names: d.Names}, err
	case tactic.KindSplitHypothesisDisjunction:
		h, err := ParseIdent(d.Hypothesis)
		return tactic.SplitHypothesisDisjunction{Hypothesis: h, Names: d.Names}, err
	case tactic.KindExactHypothesis:
		h, err := ParseIdent(d.Hypothesis)
		return tactic.ExactHypothesis{Hypothesis: h}, err
	case tactic.KindReflexivity:
		return tactic.Reflexivity{}, nil
	case tactic.KindContradiction:
		h, err := ParseIdent(d.Hypothesis)
		if err != nil {
			return nil, err
		}
		n, err := ParseIdent(d.Negation)
		return tactic.Contradiction{Hypothesis: h, Negation: n}, err
	case tactic.KindContradictHypothesis:
		h, err := ParseIdent(d.Hypothesis)
		return tactic.ContradictHypothesis{Hypothesis: h}, err
	case tactic.KindRewrite:
		return decodeRewrite(d)
	case tactic.KindUnfoldDefinition:
		n, err := ParseIdent(d.Name)
		if err != nil {
			return nil, err
		}
		target, err := decodeTarget(d.Target)
		return tactic.UnfoldDefinition{Name: n, Target: target}, err
	case tactic.KindIntroduceLet:
		if d.Name == "" {
			return nil, malformed("name", `""`)
		}
		typ, err := decodeOptExpr(d.Type)
		if err != nil {
			return nil, err
		}
		v, err := DecodeExpr(d.Value)
		return tactic.IntroduceLet{Name: d.Name, Type: typ, Value: v}, err
	case tactic.KindRenameBound:
		from, err := ParseIdent(d.From)
		if err != nil {
			return nil, err
		}
		to, err := ParseIdent(d.To)
		return tactic.RenameBound{From: from, To: to}, err
	case tactic.KindRevertHypothesis:
		n, err := ParseIdent(d.Name)
		return tactic.RevertHypothesis{Name: n}, err
	case tactic.KindSearchAssumptions:
		return tactic.SearchAssumptions{}, nil
	case tactic.KindSearchTheorems:
		return tactic.SearchTheorems{TheoremIDs: d.Theorems}, nil
	case tactic.KindSearch:
		return tactic.Search{TheoremIDs: d.Theorems}, nil
	case tactic.KindSimplify:
		s := tactic.Simplify{MaxSteps: d.MaxSteps}
		for i := range d.Rules {
			r, err := decodeRule(&d.Rules[i])
			if err != nil {
				return nil, err
			}
			s.Rules = append(s.Rules, r)
		}
		return s, nil
	case tactic.KindAuto:
		a := tactic.Auto{MaxDepth: d.MaxDepth}
		for _, sub := range d.Tactics {
			st, err := DecodeTactic(sub)
			if err != nil {
				return nil, err
			}
			a.Tactics = append(a.Tactics, st)
		}
		return a, nil
	case tactic.KindDisproveByTheorem:
		r, err := decodeRule(d.Rule)
		return tactic.DisproveByTheorem{Rule: r}, err
	}
	return nil, fmt.Errorf("%w: tactic kind %q", ErrUnknownTag, d.Kind)
}

func decodeOptExpr(v any) (term.Expr, error) {
	if v == nil {
		return term.Expr{}, nil
	}
	return DecodeExpr(v)
}

func decodeCases(d TacticDoc) (tactic.Tactic, error) {
	ca := tactic.CaseAnalysis{}
	for _, s := range d.Targets {
		id, err := ParseIdent(s)
		if err != nil {
			return nil, err
		}
		ca.Targets = append(ca.Targets, id)
	}
	for i, cd := range d.Cases {
		hyp, err := DecodeRel(cd.Statement)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		values, err := decodeExprs(cd.Values)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		ca.Cases = append(ca.Cases, tactic.Case{HypothesisName: cd.Hypothesis, Hypothesis: hyp, Values: values})
	}
	return ca, nil
}

func decodeRewrite(d TacticDoc) (tactic.Tactic, error) {
	rule, err := decodeRule(d.Rule)
	if err != nil {
		return nil, err
	}
	target, err := decodeTarget(d.Target)
	if err != nil {
		return nil, err
	}
	rw := tactic.Rewrite{Rule: rule, Direction: tactic.Direction(d.Direction), Target: target}
	switch rw.Direction {
	case "":
		rw.Direction = tactic.Forward
	case tactic.Forward, tactic.Backward:
	default:
		return nil, malformed("direction", d.Direction)
	}
	for _, k := range sortedKeys(d.Instantiations) {
		id, err := ParseIdent(k)
		if err != nil {
			return nil, err
		}
		v, err := DecodeExpr(d.Instantiations[k])
		if err != nil {
			return nil, err
		}
		rw.Instantiations = append(rw.Instantiations, tactic.Instantiation{Variable: id, Value: v})
	}
	return rw, nil
}
