// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package eval defines the contract between dbgen's writer/scheduler and a
// compiled template: the Table/State shapes a real template compiler
// produces, plus a small library of concrete Expr implementations enough to
// drive the engine end to end in tests. Template parsing and expression
// compilation themselves are out of scope here — see spec.md §1's "external
// collaborator" boundary.
package eval

import "github.com/WalterWj/dbgen/internal/base"

// QualifiedName identifies a table by schema and name, e.g. the compiled
// form of a template's `CREATE TABLE schema.table` header.
type QualifiedName struct {
	Schema string
	Table  string
}

func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Table
	}
	return q.Schema + "." + q.Table
}

// Row is one row's worth of column values, in column-declaration order.
type Row []base.Value

// DerivedEdge attaches a derived (child) table to whichever table declares
// it: Child is that child table's index within the same Compile call's
// returned table set (spec.md §3's `(child_table_index, count_expr)` pair),
// and Count is evaluated once per parent row — state rooted at that row —
// to determine how many of the child's rows to emit under it.
type DerivedEdge struct {
	Child int
	Count Expr
}

// Table is the compiled representation of one table declared by a template.
// A template compiles to a flat set of Tables (spec.md §1: "one or more
// tables"); parent/child relationships are expressed as Derived edges
// naming indices into that same set, not by nesting — every table, derived
// or not, gets its own output file per shard (spec.md §4.4/§6, GLOSSARY
// "every table has exactly one shard file per partition").
type Table struct {
	Name    QualifiedName
	Columns []string

	// Content produces one row of values for a single row of this table.
	Content RowExpr

	// Derived lists the tables produced under each row of this one, in
	// declaration order (spec.md §4.4.2 step 4).
	Derived []DerivedEdge

	// SchemaSQL is the literal `CREATE TABLE ...` statement text to emit
	// into the schema file, already fully resolved at compile time.
	SchemaSQL string
}
