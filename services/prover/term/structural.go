// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package term

// -----------------------------------------------------------------------------
// Structural equality (addresses ignored)
// -----------------------------------------------------------------------------

// EqualExpr reports structural equality of two expressions.
//
// Addresses are ignored. Two meta-variables are equal when their
// identifiers are equal; a meta-variable never equals a concrete term.
func EqualExpr(a, b Expr) bool {
	if ida, ok := a.Variable(); ok {
		idb, ok := b.Variable()
		return ok && ida == idb
	}
	if b.IsVariable() {
		return false
	}
	va, oka := a.ConcreteValue()
	vb, okb := b.ConcreteValue()
	if !oka || !okb {
		return oka == okb
	}

	switch x := va.(type) {
	case Var:
		y, ok := vb.(Var)
		return ok && x.ID == y.ID
	case Number:
		y, ok := vb.(Number)
		return ok && x.Value == y.Value
	case Object:
		y, ok := vb.(Object)
		return ok && x == y
	case RelationExpr:
		y, ok := vb.(RelationExpr)
		return ok && EqualRel(x.Rel, y.Rel)
	case TheoryExpr:
		y, ok := vb.(TheoryExpr)
		return ok && x.Theory == y.Theory && x.Op == y.Op && equalExprList(x.Args, y.Args)
	case ViewAs:
		y, ok := vb.(ViewAs)
		return ok && x.View == y.View && EqualExpr(x.Inner, y.Inner)
	}
	return false
}

// EqualRel reports structural equality of two relations, ignoring addresses.
func EqualRel(a, b Rel) bool {
	if ida, ok := a.Variable(); ok {
		idb, ok := b.Variable()
		return ok && ida == idb
	}
	if b.IsVariable() {
		return false
	}
	va, oka := a.ConcreteValue()
	vb, okb := b.ConcreteValue()
	if !oka || !okb {
		return oka == okb
	}

	switch x := va.(type) {
	case Equal:
		y, ok := vb.(Equal)
		return ok && EqualExpr(x.Left, y.Left) && EqualExpr(x.Right, y.Right)
	case And:
		y, ok := vb.(And)
		return ok && equalRelList(x.Items, y.Items)
	case Or:
		y, ok := vb.(Or)
		return ok && equalRelList(x.Items, y.Items)
	case Not:
		y, ok := vb.(Not)
		return ok && EqualRel(x.Inner, y.Inner)
	case Implies:
		y, ok := vb.(Implies)
		return ok && EqualRel(x.Antecedent, y.Antecedent) && EqualRel(x.Consequent, y.Consequent)
	case Equivalent:
		y, ok := vb.(Equivalent)
		return ok && EqualRel(x.Left, y.Left) && EqualRel(x.Right, y.Right)
	case True:
		_, ok := vb.(True)
		return ok
	case False:
		_, ok := vb.(False)
		return ok
	case Predicate:
		y, ok := vb.(Predicate)
		return ok && x.Name == y.Name && equalExprList(x.Args, y.Args)
	case TheoryRelation:
		y, ok := vb.(TheoryRelation)
		return ok && x.Theory == y.Theory && x.Name == y.Name && equalExprList(x.Args, y.Args)
	}
	return false
}

func equalExprList(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualExpr(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalRelList(a, b []Rel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualRel(a[i], b[i]) {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Copying
// -----------------------------------------------------------------------------

// addrFunc chooses the address of a copied node.
type addrFunc func(Address) Address

func keepAddr(a Address) Address { return a }
func freshAddr(Address) Address  { return NewAddress() }

// CloneExpr deep-copies e, preserving every address.
func CloneExpr(e Expr) Expr { return copyExpr(e, keepAddr) }

// CloneRel deep-copies r, preserving every address.
func CloneRel(r Rel) Rel { return copyRel(r, keepAddr) }

// RemintExpr deep-copies e, assigning fresh addresses throughout.
func RemintExpr(e Expr) Expr { return copyExpr(e, freshAddr) }

// RemintRel deep-copies r, assigning fresh addresses throughout.
func RemintRel(r Rel) Rel { return copyRel(r, freshAddr) }

func copyExpr(e Expr, addr addrFunc) Expr {
	if e.IsZero() {
		return e
	}
	if id, ok := e.Variable(); ok {
		return MetaAt[Expression](addr(e.Addr), id)
	}
	v, _ := e.ConcreteValue()
	switch x := v.(type) {
	case RelationExpr:
		v = RelationExpr{Rel: copyRel(x.Rel, addr)}
	case TheoryExpr:
		v = TheoryExpr{Theory: x.Theory, Op: x.Op, Args: copyExprList(x.Args, addr)}
	case ViewAs:
		v = ViewAs{View: x.View, Inner: copyExpr(x.Inner, addr)}
	}
	return At(addr(e.Addr), v)
}

func copyRel(r Rel, addr addrFunc) Rel {
	if r.IsZero() {
		return r
	}
	if id, ok := r.Variable(); ok {
		return MetaAt[Relation](addr(r.Addr), id)
	}
	v, _ := r.ConcreteValue()
	switch x := v.(type) {
	case Equal:
		v = Equal{Left: copyExpr(x.Left, addr), Right: copyExpr(x.Right, addr)}
	case And:
		v = And{Items: copyRelList(x.Items, addr)}
	case Or:
		v = Or{Items: copyRelList(x.Items, addr)}
	case Not:
		v = Not{Inner: copyRel(x.Inner, addr)}
	case Implies:
		v = Implies{Antecedent: copyRel(x.Antecedent, addr), Consequent: copyRel(x.Consequent, addr)}
	case Equivalent:
		v = Equivalent{Left: copyRel(x.Left, addr), Right: copyRel(x.Right, addr)}
	case Predicate:
		v = Predicate{Name: x.Name, Args: copyExprList(x.Args, addr)}
	case TheoryRelation:
		v = TheoryRelation{Theory: x.Theory, Name: x.Name, Args: copyExprList(x.Args, addr)}
	}
	return At(addr(r.Addr), v)
}

func copyExprList(in []Expr, addr addrFunc) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = copyExpr(e, addr)
	}
	return out
}

func copyRelList(in []Rel, addr addrFunc) []Rel {
	if in == nil {
		return nil
	}
	out := make([]Rel, len(in))
	for i, r := range in {
		out[i] = copyRel(r, addr)
	}
	return out
}

// -----------------------------------------------------------------------------
// Variable collection
// -----------------------------------------------------------------------------

// Occurrences collects the identifiers referenced by a term.
type Occurrences struct {
	// Vars holds object-level variable references in first-seen order.
	Vars []Identifier
	// Metas holds meta-variables in first-seen order.
	Metas []Identifier

	seenVar  map[Identifier]bool
	seenMeta map[Identifier]bool
}

func newOccurrences() *Occurrences {
	return &Occurrences{seenVar: map[Identifier]bool{}, seenMeta: map[Identifier]bool{}}
}

// HasVar reports whether id occurs as an object variable.
func (o *Occurrences) HasVar(id Identifier) bool { return o.seenVar[id] }

// HasMeta reports whether id occurs as a meta-variable.
func (o *Occurrences) HasMeta(id Identifier) bool { return o.seenMeta[id] }

// CollectExpr returns the variables occurring in e.
func CollectExpr(e Expr) *Occurrences {
	o := newOccurrences()
	o.expr(e)
	return o
}

// CollectRel returns the variables occurring in r.
func CollectRel(r Rel) *Occurrences {
	o := newOccurrences()
	o.rel(r)
	return o
}

func (o *Occurrences) addVar(id Identifier) {
	if !o.seenVar[id] {
		o.seenVar[id] = true
		o.Vars = append(o.Vars, id)
	}
}

func (o *Occurrences) addMeta(id Identifier) {
	if !o.seenMeta[id] {
		o.seenMeta[id] = true
		o.Metas = append(o.Metas, id)
	}
}

func (o *Occurrences) expr(e Expr) {
	if id, ok := e.Variable(); ok {
		o.addMeta(id)
		return
	}
	v, ok := e.ConcreteValue()
	if !ok {
		return
	}
	switch x := v.(type) {
	case Var:
		o.addVar(x.ID)
	case RelationExpr:
		o.rel(x.Rel)
	case TheoryExpr:
		for _, a := range x.Args {
			o.expr(a)
		}
	case ViewAs:
		o.expr(x.Inner)
	}
}

func (o *Occurrences) rel(r Rel) {
	if id, ok := r.Variable(); ok {
		o.addMeta(id)
		return
	}
	v, ok := r.ConcreteValue()
	if !ok {
		return
	}
	switch x := v.(type) {
	case Equal:
		o.expr(x.Left)
		o.expr(x.Right)
	case And:
		for _, it := range x.Items {
			o.rel(it)
		}
	case Or:
		for _, it := range x.Items {
			o.rel(it)
		}
	case Not:
		o.rel(x.Inner)
	case Implies:
		o.rel(x.Antecedent)
		o.rel(x.Consequent)
	case Equivalent:
		o.rel(x.Left)
		o.rel(x.Right)
	case Predicate:
		for _, a := range x.Args {
			o.expr(a)
		}
	case TheoryRelation:
		for _, a := range x.Args {
			o.expr(a)
		}
	}
}
