// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"bytes"
	"testing"

	"github.com/WalterWj/dbgen/eval"
	"github.com/WalterWj/dbgen/internal/base"
)

func testTable() *eval.Table {
	return &eval.Table{
		Name:      eval.QualifiedName{Schema: "public", Table: "widgets"},
		Columns:   []string{"id", "name"},
		SchemaSQL: "CREATE TABLE widgets (id bigint, name text);\n",
	}
}

func TestSQLFormatRoundtrip(t *testing.T) {
	f := SQLFormat{}
	table := testTable()
	var buf bytes.Buffer

	if err := f.BeginInsert(&buf, table); err != nil {
		t.Fatal(err)
	}
	rows := []eval.Row{
		{base.NumberValue(base.NumberFromInt64(1)), base.StringValue("a")},
		{base.NumberValue(base.NumberFromInt64(2)), base.Null()},
	}
	for i, row := range rows {
		if err := f.BeginRow(&buf, i == 0); err != nil {
			t.Fatal(err)
		}
		for j, v := range row {
			if j > 0 {
				if err := f.WriteColumnSep(&buf); err != nil {
					t.Fatal(err)
				}
			}
			if err := f.WriteValue(&buf, v, false); err != nil {
				t.Fatal(err)
			}
		}
		if err := f.EndRow(&buf); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.EndInsert(&buf); err != nil {
		t.Fatal(err)
	}

	want := "INSERT INTO public.widgets VALUES\n(1,'a'),\n(2,NULL);\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSQLFormatEscapeBackslash(t *testing.T) {
	f := SQLFormat{}
	var buf bytes.Buffer
	if err := f.WriteValue(&buf, base.StringValue(`a\b'c`), true); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), `'a\\b''c'`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCSVFormatRoundtrip(t *testing.T) {
	f := CSVFormat{}
	var buf bytes.Buffer
	row := eval.Row{base.NumberValue(base.NumberFromInt64(1)), base.StringValue("a,b")}
	for i, v := range row {
		if i > 0 {
			if err := f.WriteColumnSep(&buf); err != nil {
				t.Fatal(err)
			}
		}
		if err := f.WriteValue(&buf, v, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.EndRow(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "1,\"a,b\"\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCSVFormatNullIsEmptyField(t *testing.T) {
	f := CSVFormat{}
	var buf bytes.Buffer
	if err := f.WriteValue(&buf, base.Null(), false); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("NULL should render as an empty field, got %q", buf.String())
	}
}

func TestNewFormatUnknown(t *testing.T) {
	if _, err := NewFormat("xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
