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
	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

// QuantifierDoc is the document form of a goal quantifier.
type QuantifierDoc struct {
	Variable string `json:"variable" yaml:"variable"`
	Kind     string `json:"kind" yaml:"kind"`
	Domain   any    `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// EntryDoc is the document form of a context entry. Value is set only for
// concretely defined entries.
type EntryDoc struct {
	Name        string `json:"name" yaml:"name"`
	Type        any    `json:"type" yaml:"type"`
	Value       any    `json:"value,omitempty" yaml:"value,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// GoalDoc is the document form of a goal.
type GoalDoc struct {
	Quantifiers []QuantifierDoc `json:"quantifiers,omitempty" yaml:"quantifiers,omitempty"`
	Context     []EntryDoc      `json:"context,omitempty" yaml:"context,omitempty"`
	Statement   any             `json:"statement" yaml:"statement"`
}

// EncodeGoal converts g to its document form.
func EncodeGoal(g goal.Goal) GoalDoc {
	doc := GoalDoc{Statement: EncodeRel(g.Statement)}
	for _, q := range g.Quantifiers {
		doc.Quantifiers = append(doc.Quantifiers, QuantifierDoc{
			Variable: FormatIdent(q.Variable),
			Kind:     string(q.Kind),
			Domain:   EncodeExpr(q.Domain),
		})
	}
	for _, e := range g.Context {
		ed := EntryDoc{
			Name:        FormatIdent(e.Name),
			Type:        EncodeExpr(e.Type),
			Description: e.Description,
		}
		if v, ok := e.Definition.Value(); ok {
			ed.Value = EncodeExpr(v)
		}
		doc.Context = append(doc.Context, ed)
	}
	return doc
}

// DecodeGoal converts a goal document into a validated goal.
//
// Outputs:
//   - goal.Goal: The decoded goal with fresh addresses.
//   - error: A decoding error or the goal.Validate failure.
func DecodeGoal(doc GoalDoc) (goal.Goal, error) {
	var g goal.Goal
	stmt, err := DecodeRel(doc.Statement)
	if err != nil {
		return g, fmt.Errorf("statement: %w", err)
	}
	g.Statement = stmt

	for i, qd := range doc.Quantifiers {
		id, err := ParseIdent(qd.Variable)
		if err != nil {
			return g, fmt.Errorf("quantifier %d: %w", i, err)
		}
		kind := goal.QuantifierKind(qd.Kind)
		switch kind {
		case goal.Universal, goal.Existential, goal.UniqueExistential:
		case "":
			kind = goal.Universal
		default:
			return g, fmt.Errorf("quantifier %d: %w: kind %q", i, ErrMalformed, qd.Kind)
		}
		q := goal.Quantifier{Variable: id, Kind: kind}
		if qd.Domain != nil {
			if q.Domain, err = DecodeExpr(qd.Domain); err != nil {
				return g, fmt.Errorf("quantifier %s: %w", qd.Variable, err)
			}
		}
		g.Quantifiers = append(g.Quantifiers, q)
	}

	for _, ed := range doc.Context {
		e, err := decodeEntry(ed)
		if err != nil {
			return g, fmt.Errorf("context entry %s: %w", ed.Name, err)
		}
		g.Context = append(g.Context, e)
	}
	return g, g.Validate()
}

func decodeEntry(ed EntryDoc) (goal.Entry, error) {
	id, err := ParseIdent(ed.Name)
	if err != nil {
		return goal.Entry{}, err
	}
	typ, err := decodeType(ed.Type)
	if err != nil {
		return goal.Entry{}, err
	}
	e := goal.Entry{Name: id, Type: typ, Definition: goal.Abstract(), Description: ed.Description}
	if ed.Value != nil {
		v, err := DecodeExpr(ed.Value)
		if err != nil {
			return goal.Entry{}, err
		}
		e.Definition = goal.Defined(v)
	}
	return e, nil
}

// decodeType accepts an expression, or a bare relation as shorthand for a
// hypothesis type.
func decodeType(v any) (term.Expr, error) {
	if e, err := DecodeExpr(v); err == nil {
		return e, nil
	}
	r, err := DecodeRel(v)
	if err != nil {
		return term.Expr{}, err
	}
	return term.Lift(r), nil
}
