// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"

	"github.com/WalterWj/dbgen/eval"
	"github.com/WalterWj/dbgen/internal/base"
	"github.com/WalterWj/dbgen/internal/rng"
)

func newTestBaseState(t *testing.T) *eval.State {
	t.Helper()
	e, err := rng.New(rng.Step, [32]byte{1})
	if err != nil {
		t.Fatal(err)
	}
	return &eval.State{Rng: e, GlobalRng: e}
}

func TestCountingSinkTracksBytesAndChecksum(t *testing.T) {
	var buf bytes.Buffer
	sink := newCountingSink(&buf)
	if _, err := sink.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := sink.Write([]byte(" world")); err != nil {
		t.Fatal(err)
	}
	if sink.n != uint64(len("hello world")) {
		t.Fatalf("n = %d, want %d", sink.n, len("hello world"))
	}
	if sink.hash.Sum64() == 0 {
		t.Fatalf("expected a non-zero checksum")
	}
	if buf.String() != "hello world" {
		t.Fatalf("underlying writer got %q", buf.String())
	}
}

func TestShardPlanLastFileAndInsertOverrides(t *testing.T) {
	plan := ShardPlan{
		FilesCount:           2,
		InsertsCount:         3,
		RowsCount:            10,
		LastFileInsertsCount: 1,
		LastInsertRowsCount:  4,
	}
	if got := plan.insertsInFile(0); got != 3 {
		t.Fatalf("file 0 inserts = %d, want 3", got)
	}
	if got := plan.insertsInFile(1); got != 1 {
		t.Fatalf("last file inserts = %d, want 1", got)
	}
	if got := plan.rowsInInsert(0, 0); got != 10 {
		t.Fatalf("file 0 insert 0 rows = %d, want 10", got)
	}
	if got := plan.rowsInInsert(1, 0); got != 4 {
		t.Fatalf("last file's last insert rows = %d, want 4", got)
	}
}

// leafTable builds a table with no derived edges whose sole column echoes
// its row number.
func leafTable(name string) *eval.Table {
	return &eval.Table{
		Name:      eval.QualifiedName{Schema: "public", Table: name},
		Columns:   []string{"id"},
		Content:   eval.Columns{eval.RowNumRef{Levels: 0}},
		SchemaSQL: "CREATE TABLE " + name + " (id bigint);\n",
	}
}

func TestWriteShardLeafTableBatchesRows(t *testing.T) {
	ResetProgress()
	dir := t.TempDir()
	tables := []*eval.Table{leafTable("widgets")}
	plan := ShardPlan{
		FilesCount:   1,
		InsertsCount: 1,
		RowsCount:    3,
		FirstRow:     1,
		RowCount:     3,
		OutDir:       dir,
	}
	results, err := WriteShard(tables, SQLFormat{}, nil, 0, plan, newTestBaseState(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 file, got %d", len(results))
	}
	if results[0].Rows != 3 {
		t.Fatalf("rows = %d, want 3", results[0].Rows)
	}
	data, err := os.ReadFile(results[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO public.widgets VALUES\n(1),\n(2),\n(3);\n"
	if string(data) != want {
		t.Fatalf("got:\n%s\nwant:\n%s", data, want)
	}
}

// parentAndChildTables builds a flat, two-table set: "orders" (index 0) and
// its derived child "items" (index 1), wired via a DerivedEdge on orders.
// Each orders row produces exactly 2 items rows, each echoing the parent's
// RowNum and its own SubRowNum.
func parentAndChildTables() []*eval.Table {
	const childIndex = 1
	child := &eval.Table{
		Name:    eval.QualifiedName{Schema: "public", Table: "items"},
		Columns: []string{"order_id", "item_no"},
		Content: eval.Columns{
			eval.RowNumRef{Levels: 1},
			eval.SubRowNumRef{Levels: 0},
		},
		SchemaSQL: "CREATE TABLE items (order_id bigint, item_no bigint);\n",
	}
	parent := &eval.Table{
		Name:    eval.QualifiedName{Schema: "public", Table: "orders"},
		Columns: []string{"id"},
		Content: eval.Columns{eval.RowNumRef{Levels: 0}},
		Derived: []eval.DerivedEdge{
			{Child: childIndex, Count: eval.Literal{Value: base.NumberValue(base.NumberFromInt64(2))}},
		},
		SchemaSQL: "CREATE TABLE orders (id bigint);\n",
	}
	return []*eval.Table{parent, child}
}

func TestWriteShardParentAndChildGetSeparateFiles(t *testing.T) {
	ResetProgress()
	dir := t.TempDir()
	tables := parentAndChildTables()
	plan := ShardPlan{
		FilesCount:   1,
		InsertsCount: 1,
		RowsCount:    2,
		FirstRow:     1,
		RowCount:     2,
		OutDir:       dir,
	}
	results, err := WriteShard(tables, SQLFormat{}, nil, 0, plan, newTestBaseState(t))
	if err != nil {
		t.Fatal(err)
	}
	// One file per table per shard (spec.md §6): orders and items each get
	// their own file, never sharing a statement stream.
	if len(results) != 2 {
		t.Fatalf("expected 2 files (one per table), got %d:\n%# v", len(results), pretty.Formatter(results))
	}

	ordersData, err := os.ReadFile(results[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	wantOrders := "INSERT INTO public.orders VALUES\n(1),\n(2);\n"
	if string(ordersData) != wantOrders {
		t.Fatalf("orders file:\ngot:\n%s\nwant:\n%s", ordersData, wantOrders)
	}
	if results[0].Rows != 2 {
		t.Fatalf("orders rows = %d, want 2", results[0].Rows)
	}

	itemsData, err := os.ReadFile(results[1].Path)
	if err != nil {
		t.Fatal(err)
	}
	wantItems := "INSERT INTO public.items VALUES\n(1,1),\n(1,2),\n(2,1),\n(2,2);\n"
	if string(itemsData) != wantItems {
		t.Fatalf("items file:\ngot:\n%s\nwant:\n%s", itemsData, wantItems)
	}
	if results[1].Rows != 4 {
		t.Fatalf("items rows = %d, want 4", results[1].Rows)
	}

	snap := ReadProgress()
	if snap.Rows != 2 {
		t.Fatalf("progress rows = %d, want 2 (only main rows advance WRITE_PROGRESS)", snap.Rows)
	}
	if snap.ShardsFinished != 1 {
		t.Fatalf("shards finished = %d, want 1", snap.ShardsFinished)
	}
}

func TestDataFilePathNamesShardsAndFiles(t *testing.T) {
	table := leafTable("widgets")
	plan := ShardPlan{OutDir: "/out", FilesCount: 1, ShardIndex: 0}
	if got, want := dataFilePath(plan, table, 0, SQLFormat{}, nil), "/out/widgets.sql"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	plan2 := ShardPlan{OutDir: "/out", FilesCount: 2, ShardIndex: 1}
	if got, want := dataFilePath(plan2, table, 0, SQLFormat{}, nil), "/out/widgets.1.0.sql"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteShardFileNamesUnderOutDir(t *testing.T) {
	ResetProgress()
	dir := t.TempDir()
	tables := []*eval.Table{leafTable("widgets")}
	plan := ShardPlan{
		FilesCount:   2,
		InsertsCount: 1,
		RowsCount:    1,
		FirstRow:     1,
		RowCount:     2,
		OutDir:       dir,
	}
	results, err := WriteShard(tables, SQLFormat{}, nil, 0, plan, newTestBaseState(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 files, got %d", len(results))
	}
	for _, r := range results {
		if filepath.Dir(r.Path) != dir {
			t.Fatalf("file %q not under %q", r.Path, dir)
		}
	}
}
