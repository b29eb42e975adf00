// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package base

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

func parseValueLine(t *testing.T, line string) Value {
	t.Helper()
	if line == "null" {
		return Null()
	}
	kind, rest, ok := strings.Cut(line, " ")
	if !ok {
		t.Fatalf("malformed value line %q", line)
	}
	switch kind {
	case "str":
		return StringValue(rest)
	case "num":
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			t.Fatalf("parsing %q as int64: %v", rest, err)
		}
		return NumberValue(NumberFromInt64(n))
	case "bytes":
		b, err := hex.DecodeString(rest)
		if err != nil {
			t.Fatalf("decoding %q as hex: %v", rest, err)
		}
		return Value{kind: KindBytes, byt: b}
	default:
		t.Fatalf("unknown value kind %q in line %q", kind, line)
		return Value{}
	}
}

func parseValueLines(t *testing.T, input string) []Value {
	t.Helper()
	var values []Value
	for _, line := range strings.Split(strings.TrimSpace(input), "\n") {
		if line == "" {
			continue
		}
		values = append(values, parseValueLine(t, line))
	}
	return values
}

// TestConcatAndCompareDataDriven exercises TrySQLConcat and SQLCompare
// against fixed-format input/output pairs, the way pebble's own tests lean on
// datadriven rather than one Go test function per case.
func TestConcatAndCompareDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/concat", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "concat":
			values := parseValueLines(t, d.Input)
			v, err := TrySQLConcat(values)
			if err != nil {
				return fmt.Sprintf("error: %s\n", err)
			}
			var buf strings.Builder
			if err := v.WriteSQL(&buf); err != nil {
				t.Fatal(err)
			}
			return buf.String() + "\n"

		case "compare":
			var fn string
			d.ScanArgs(t, "fn", &fn)
			values := parseValueLines(t, d.Input)
			if len(values) != 2 {
				t.Fatalf("compare needs exactly 2 values, got %d", len(values))
			}
			cmp, ok, err := values[0].SQLCompare(values[1], fn)
			if err != nil {
				return fmt.Sprintf("error: %s\n", err)
			}
			return fmt.Sprintf("cmp=%d ok=%v\n", cmp, ok)

		default:
			t.Fatalf("unknown command %q", d.Cmd)
			return ""
		}
	})
}
