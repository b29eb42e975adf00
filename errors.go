// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import "github.com/cockroachdb/errors"

// Sentinel error kinds (spec.md §7), matched with errors.Is/errors.Mark so
// callers can branch on error class without parsing message text.
var (
	// ErrConfig marks a bad CLI/config combination (e.g. conflicting flags).
	ErrConfig = errors.New("invalid configuration")
	// ErrTemplate marks a problem reading or compiling the template.
	ErrTemplate = errors.New("template error")
	// ErrGeneration marks a failure while evaluating or writing a row.
	ErrGeneration = errors.New("generation error")
	// ErrIO marks a failure opening, writing, or closing an output file.
	ErrIO = errors.New("output error")
	// ErrInternal marks a condition that should be unreachable given a
	// correctly compiled Table (e.g. a column count mismatch).
	ErrInternal = errors.New("internal error")
)

func errUnknownFormat(name string) error {
	return errors.Mark(errors.Newf("unknown format %q (want sql or csv)", name), ErrConfig)
}

func errUnknownCompression(name string) error {
	return errors.Mark(errors.Newf("unknown compression %q (want gzip, xz, or zstd)", name), ErrConfig)
}
