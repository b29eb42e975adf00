// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package eval

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/WalterWj/dbgen/internal/base"
	"github.com/WalterWj/dbgen/internal/rng"
)

// renderedRow renders each column's SQL text, sidestepping base.Value's
// unexported fields so the row can be diffed with cmp.
func renderedRow(t *testing.T, row Row) []string {
	t.Helper()
	out := make([]string, len(row))
	for i, v := range row {
		var buf bytes.Buffer
		if err := v.WriteSQL(&buf); err != nil {
			t.Fatal(err)
		}
		out[i] = buf.String()
	}
	return out
}

func newTestState(t *testing.T, rowNum uint64) *State {
	t.Helper()
	e, err := rng.New(rng.Step, [32]byte{1})
	if err != nil {
		t.Fatal(err)
	}
	root := &State{Rng: e, GlobalRng: e, Now: time.Unix(0, 0).UTC(), TimeZone: time.UTC}
	return root.Root(rowNum, 4)
}

func TestColumnsAndRowNum(t *testing.T) {
	state := newTestState(t, 7)
	cols := Columns{
		RowNumRef{},
		Literal{Value: base.StringValue("x")},
		BinaryArith{Op: OpAdd, Left: RowNumRef{}, Right: Literal{Value: base.NumberValue(base.NumberFromInt64(1))}},
	}
	row, err := cols.Eval(state)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := row[0].Number(); !ok || n.String() != "7" {
		t.Fatalf("row_num: got %+v", row[0])
	}
	if s, ok := row[1].String(); !ok || s != "x" {
		t.Fatalf("literal: got %+v", row[1])
	}
	if n, ok := row[2].Number(); !ok || n.String() != "8" {
		t.Fatalf("row_num+1: got %+v", row[2])
	}
}

func TestBinaryArithNullPropagation(t *testing.T) {
	state := newTestState(t, 1)
	expr := BinaryArith{Op: OpMul, Left: Literal{Value: base.Null()}, Right: RowNumRef{}}
	v, err := expr.Eval(state)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNull() {
		t.Fatalf("expected Null, got %+v", v)
	}
}

func TestChildStateAncestry(t *testing.T) {
	parent := newTestState(t, 3)
	parent.Row = Row{base.NumberValue(base.NumberFromInt64(42))}
	child := parent.Child(1, 2, 1)

	v, err := (RowNumRef{Levels: 1}).Eval(child)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := v.Number(); !ok || n.String() != "3" {
		t.Fatalf("ancestor row_num: got %+v", v)
	}

	col, err := (ColumnRef{Levels: 1, Index: 0}).Eval(child)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := col.Number(); !ok || n.String() != "42" {
		t.Fatalf("ancestor column: got %+v", col)
	}
}

func TestColumnsRenderedRowMatchesExpected(t *testing.T) {
	state := newTestState(t, 7)
	cols := Columns{
		RowNumRef{},
		Literal{Value: base.StringValue("x")},
		BinaryArith{Op: OpAdd, Left: RowNumRef{}, Right: Literal{Value: base.NumberValue(base.NumberFromInt64(1))}},
	}
	row, err := cols.Eval(state)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"7", "'x'", "8"}
	if diff := cmp.Diff(want, renderedRow(t, row)); diff != "" {
		t.Fatalf("rendered row mismatch (-want +got):\n%s", diff)
	}
}

func TestConcatPropagatesNull(t *testing.T) {
	state := newTestState(t, 1)
	c := Concat{Literal{Value: base.StringValue("a")}, Literal{Value: base.Null()}}
	v, err := c.Eval(state)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNull() {
		t.Fatalf("expected Null, got %+v", v)
	}
}
