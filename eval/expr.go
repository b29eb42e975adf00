// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package eval

import "github.com/WalterWj/dbgen/internal/base"

// Expr produces a single scalar value from a State — a column's generator
// expression, or a DerivedEdge's row-count expression.
type Expr interface {
	Eval(state *State) (base.Value, error)
}

// RowExpr produces a whole row's worth of column values, evaluated column by
// column against a shared State so later columns may reference earlier
// ones' values via state.Row.
type RowExpr interface {
	Eval(state *State) (Row, error)
}

// Columns is the straightforward RowExpr: evaluate each column Expr in
// order, appending each result to state.Row as it's produced.
type Columns []Expr

func (cs Columns) Eval(state *State) (Row, error) {
	row := make(Row, 0, len(cs))
	for _, c := range cs {
		v, err := c.Eval(state)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
		state.Row = append(state.Row, v)
	}
	return row, nil
}

// Literal always evaluates to the same fixed Value.
type Literal struct {
	Value base.Value
}

func (l Literal) Eval(*State) (base.Value, error) { return l.Value, nil }

// RowNumRef evaluates to the RowNum of the Levels-th ancestor State (0 for
// the current row itself), as a Number.
type RowNumRef struct {
	Levels int
}

func (r RowNumRef) Eval(state *State) (base.Value, error) {
	s := state.Ancestor(r.Levels)
	if s == nil {
		return base.Null(), nil
	}
	return base.NumberValue(base.NumberFromUint64(s.RowNum)), nil
}

// SubRowNumRef evaluates to the SubRowNum of the Levels-th ancestor State.
type SubRowNumRef struct {
	Levels int
}

func (r SubRowNumRef) Eval(state *State) (base.Value, error) {
	s := state.Ancestor(r.Levels)
	if s == nil {
		return base.Null(), nil
	}
	return base.NumberValue(base.NumberFromUint64(s.SubRowNum)), nil
}

// ColumnRef evaluates to the Index-th already-evaluated column of the
// Levels-th ancestor row.
type ColumnRef struct {
	Levels int
	Index  int
}

func (r ColumnRef) Eval(state *State) (base.Value, error) {
	s := state.Ancestor(r.Levels)
	if s == nil || r.Index >= len(s.Row) {
		return base.Null(), nil
	}
	return s.Row[r.Index], nil
}

// ArithOp names the arithmetic operator a BinaryArith expression applies.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

// BinaryArith applies an ArithOp across two Number-valued sub-expressions,
// propagating Null per spec.md §4.1 ("an arithmetic op on Null is Null").
type BinaryArith struct {
	Op          ArithOp
	Left, Right Expr
}

func (b BinaryArith) Eval(state *State) (base.Value, error) {
	lv, err := b.Left.Eval(state)
	if err != nil {
		return base.Value{}, err
	}
	rv, err := b.Right.Eval(state)
	if err != nil {
		return base.Value{}, err
	}
	if lv.IsNull() || rv.IsNull() {
		return base.Null(), nil
	}
	ln, ok := lv.Number()
	if !ok {
		return base.Value{}, base.ErrInvalidArguments
	}
	rn, ok := rv.Number()
	if !ok {
		return base.Value{}, base.ErrInvalidArguments
	}
	switch b.Op {
	case OpAdd:
		return base.NumberValue(ln.Add(rn)), nil
	case OpSub:
		return base.NumberValue(ln.Sub(rn)), nil
	case OpMul:
		return base.NumberValue(ln.Mul(rn)), nil
	case OpDiv:
		return base.NumberValue(ln.Div(rn)), nil
	default:
		return base.Value{}, base.ErrInvalidArguments
	}
}

// Concat evaluates every sub-expression and joins the results with
// base.TrySQLConcat, propagating Null the moment any operand is Null.
type Concat []Expr

func (c Concat) Eval(state *State) (base.Value, error) {
	values := make([]base.Value, 0, len(c))
	for _, e := range c {
		v, err := e.Eval(state)
		if err != nil {
			return base.Value{}, err
		}
		values = append(values, v)
	}
	return base.TrySQLConcat(values)
}
