// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import "testing"

func TestNewCompressionAliases(t *testing.T) {
	cases := map[string]string{
		"gzip": "gzip",
		"gz":   "gzip",
		"xz":   "xz",
		"zstd": "zstd",
		"zst":  "zstd",
	}
	for alias, want := range cases {
		c, err := NewCompression(alias)
		if err != nil {
			t.Fatalf("NewCompression(%q): %v", alias, err)
		}
		if c.Name() != want {
			t.Fatalf("NewCompression(%q).Name() = %q, want %q", alias, c.Name(), want)
		}
	}
}

func TestNewCompressionNone(t *testing.T) {
	c, err := NewCompression("")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Fatalf("expected nil Compression for empty string, got %v", c)
	}
}

func TestNewCompressionUnknown(t *testing.T) {
	if _, err := NewCompression("bogus"); err == nil {
		t.Fatal("expected an error for an unknown compression name")
	}
}
