// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codec converts terms, goals and tactics to and from a tagged
// document form shared by JSON and YAML.
//
// Document form:
//
//	expressions  {"var": "x"}  {"meta": "X"}  {"num": 3}  {"obj": "G"}
//	             {"obj": {"name": "G", "sort": "Group"}}
//	             {"op": {"theory": "group", "name": "mul", "args": [...]}}
//	             {"view": {"as": "ring", "of": <expr>}}
//	             {"rel": <relation>}
//	relations    "true"  "false"  {"meta": "P"}
//	             {"eq": [l, r]}  {"and": [...]}  {"or": [...]}  {"not": r}
//	             {"implies": [a, c]}  {"iff": [l, r]}
//	             {"pred": {"name": "P", "args": [...]}}
//	             {"theory_rel": {"theory": "t", "name": "n", "args": [...]}}
//
// Identifiers are written "name", or "name#index" when the index is not
// zero. Addresses are not encoded; decoding mints fresh ones.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Turnersoft/turn-formal-sub002/services/prover/term"
)

var (
	// ErrMalformed indicates a document that does not match the form above.
	ErrMalformed = errors.New("malformed document")

	// ErrUnknownTag indicates an unrecognised node tag.
	ErrUnknownTag = errors.New("unknown tag")
)

func malformed(what string, v any) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, what, v)
}

// FormatIdent renders an identifier in document form.
func FormatIdent(id term.Identifier) string {
	if id.Index == 0 {
		return id.Name
	}
	return id.Name + "#" + strconv.Itoa(id.Index)
}

// ParseIdent parses "name" or "name#index".
func ParseIdent(s string) (term.Identifier, error) {
	if s == "" {
		return term.Identifier{}, malformed("identifier", `""`)
	}
	name, idx, found := strings.Cut(s, "#")
	if !found {
		return term.Ident(s), nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || name == "" {
		return term.Identifier{}, malformed("identifier", s)
	}
	return term.Identifier{Name: name, Index: n}, nil
}

// EncodeExpr converts e to its document form.
func EncodeExpr(e term.Expr) any {
	if e.IsZero() {
		return nil
	}
	if id, ok := e.Variable(); ok {
		return map[string]any{"meta": FormatIdent(id)}
	}
	v, _ := e.ConcreteValue()
	switch x := v.(type) {
	case term.Var:
		return map[string]any{"var": FormatIdent(x.ID)}
	case term.Number:
		return map[string]any{"num": x.Value}
	case term.Object:
		if x.Sort == "" {
			return map[string]any{"obj": x.Name}
		}
		return map[string]any{"obj": map[string]any{"name": x.Name, "sort": x.Sort}}
	case term.TheoryExpr:
		return map[string]any{"op": map[string]any{"theory": x.Theory, "name": x.Op, "args": encodeExprs(x.Args)}}
	case term.ViewAs:
		return map[string]any{"view": map[string]any{"as": x.View, "of": EncodeExpr(x.Inner)}}
	case term.RelationExpr:
		return map[string]any{"rel": EncodeRel(x.Rel)}
	}
	return nil
}

// EncodeRel converts r to its document form.
func EncodeRel(r term.Rel) any {
	if r.IsZero() {
		return nil
	}
	if id, ok := r.Variable(); ok {
		return map[string]any{"meta": FormatIdent(id)}
	}
	v, _ := r.ConcreteValue()
	switch x := v.(type) {
	case term.True:
		return "true"
	case term.False:
		return "false"
	case term.Equal:
		return map[string]any{"eq": []any{EncodeExpr(x.Left), EncodeExpr(x.Right)}}
	case term.And:
		return map[string]any{"and": encodeRels(x.Items)}
	case term.Or:
		return map[string]any{"or": encodeRels(x.Items)}
	case term.Not:
		return map[string]any{"not": EncodeRel(x.Inner)}
	case term.Implies:
		return map[string]any{"implies": []any{EncodeRel(x.Antecedent), EncodeRel(x.Consequent)}}
	case term.Equivalent:
		return map[string]any{"iff": []any{EncodeRel(x.Left), EncodeRel(x.Right)}}
	case term.Predicate:
		return map[string]any{"pred": map[string]any{"name": x.Name, "args": encodeExprs(x.Args)}}
	case term.TheoryRelation:
		return map[string]any{"theory_rel": map[string]any{"theory": x.Theory, "name": x.Name, "args": encodeExprs(x.Args)}}
	}
	return nil
}

func encodeExprs(in []term.Expr) []any {
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = EncodeExpr(e)
	}
	return out
}

func encodeRels(in []term.Rel) []any {
	out := make([]any, len(in))
	for i, r := range in {
		out[i] = EncodeRel(r)
	}
	return out
}

// single returns the only key and value of a tagged node.
func single(v any) (string, any, error) {
	m, ok := asMap(v)
	if !ok || len(m) != 1 {
		return "", nil, malformed("tagged node", v)
	}
	for k, val := range m {
		return k, val, nil
	}
	return "", nil, malformed("tagged node", v)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, malformed("number", v)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, malformed("integer", v)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	}
	return 0, malformed("number", v)
}

// DecodeExpr converts a document node into an expression.
func DecodeExpr(v any) (term.Expr, error) {
	tag, body, err := single(v)
	if err != nil {
		return term.Expr{}, err
	}
	switch tag {
	case "var", "meta":
		s, ok := asString(body)
		if !ok {
			return term.Expr{}, malformed(tag, body)
		}
		id, err := ParseIdent(s)
		if err != nil {
			return term.Expr{}, err
		}
		if tag == "meta" {
			return term.Meta[term.Expression](id), nil
		}
		return term.VarOf(id), nil
	case "num":
		n, err := asInt(body)
		if err != nil {
			return term.Expr{}, err
		}
		return term.Num(n), nil
	case "obj":
		if s, ok := asString(body); ok {
			return term.Obj(s), nil
		}
		m, ok := asMap(body)
		if !ok {
			return term.Expr{}, malformed("obj", body)
		}
		name, _ := asString(m["name"])
		srt, _ := asString(m["sort"])
		if name == "" {
			return term.Expr{}, malformed("obj", body)
		}
		return term.Concrete[term.Expression](term.Object{Name: name, Sort: srt}), nil
	case "op":
		m, ok := asMap(body)
		if !ok {
			return term.Expr{}, malformed("op", body)
		}
		theory, _ := asString(m["theory"])
		name, _ := asString(m["name"])
		if theory == "" || name == "" {
			return term.Expr{}, malformed("op", body)
		}
		args, err := decodeExprs(m["args"])
		if err != nil {
			return term.Expr{}, err
		}
		return term.Apply(theory, name, args...), nil
	case "view":
		m, ok := asMap(body)
		if !ok {
			return term.Expr{}, malformed("view", body)
		}
		as, _ := asString(m["as"])
		if as == "" {
			return term.Expr{}, malformed("view", body)
		}
		inner, err := DecodeExpr(m["of"])
		if err != nil {
			return term.Expr{}, err
		}
		return term.View(as, inner), nil
	case "rel":
		r, err := DecodeRel(body)
		if err != nil {
			return term.Expr{}, err
		}
		return term.Lift(r), nil
	}
	return term.Expr{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

// DecodeRel converts a document node into a relation.
func DecodeRel(v any) (term.Rel, error) {
	if s, ok := asString(v); ok {
		switch s {
		case "true":
			return term.Truth(), nil
		case "false":
			return term.Falsity(), nil
		}
		return term.Rel{}, fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}

	tag, body, err := single(v)
	if err != nil {
		return term.Rel{}, err
	}
	switch tag {
	case "meta":
		s, ok := asString(body)
		if !ok {
			return term.Rel{}, malformed(tag, body)
		}
		id, err := ParseIdent(s)
		if err != nil {
			return term.Rel{}, err
		}
		return term.Meta[term.Relation](id), nil
	case "eq":
		pair, err := decodeExprs(body)
		if err != nil {
			return term.Rel{}, err
		}
		if len(pair) != 2 {
			return term.Rel{}, malformed("eq", body)
		}
		return term.Eq(pair[0], pair[1]), nil
	case "and", "or":
		items, err := decodeRels(body)
		if err != nil {
			return term.Rel{}, err
		}
		if tag == "and" {
			return term.Conj(items...), nil
		}
		return term.Disj(items...), nil
	case "not":
		inner, err := DecodeRel(body)
		if err != nil {
			return term.Rel{}, err
		}
		return term.Neg(inner), nil
	case "implies", "iff":
		pair, err := decodeRels(body)
		if err != nil {
			return term.Rel{}, err
		}
		if len(pair) != 2 {
			return term.Rel{}, malformed(tag, body)
		}
		if tag == "implies" {
			return term.Imp(pair[0], pair[1]), nil
		}
		return term.Iff(pair[0], pair[1]), nil
	case "pred", "theory_rel":
		m, ok := asMap(body)
		if !ok {
			return term.Rel{}, malformed(tag, body)
		}
		name, _ := asString(m["name"])
		if name == "" {
			return term.Rel{}, malformed(tag, body)
		}
		args, err := decodeExprs(m["args"])
		if err != nil {
			return term.Rel{}, err
		}
		if tag == "pred" {
			return term.Pred(name, args...), nil
		}
		theory, _ := asString(m["theory"])
		if theory == "" {
			return term.Rel{}, malformed(tag, body)
		}
		return term.TheoryRel(theory, name, args...), nil
	}
	return term.Rel{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

func decodeExprs(v any) ([]term.Expr, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := asList(v)
	if !ok {
		return nil, malformed("list", v)
	}
	out := make([]term.Expr, len(l))
	for i, item := range l {
		e, err := DecodeExpr(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeRels(v any) ([]term.Rel, error) {
	l, ok := asList(v)
	if !ok {
		return nil, malformed("list", v)
	}
	out := make([]term.Rel, len(l))
	for i, item := range l {
		r, err := DecodeRel(item)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// sortedKeys returns the keys of m in order, for deterministic output.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
