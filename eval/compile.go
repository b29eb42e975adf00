// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package eval

import "github.com/cockroachdb/errors"

// Compiler turns template source bytes into a flat, ordered set of compiled
// Tables (spec.md §3's Derived edges reference each other by index into this
// same slice). This is the external-collaborator seam spec.md §1
// deliberately leaves out of scope: a real template language's parser/
// compiler lives in a separate package and registers itself here, so
// dbgen's engine, scheduler, and CLI can all be built, tested, and shipped
// against this contract without ever depending on a specific template
// syntax.
type Compiler interface {
	Compile(src []byte, ctx CompileContext) ([]*Table, error)
}

// DefaultCompiler is nil until a template-language package sets it (in that
// package's init, typically). cmd/dbgen fails with a clear error if asked to
// read a template before one is registered.
var DefaultCompiler Compiler

// Compile delegates to DefaultCompiler, giving a precise, actionable error
// when the CLI is run without one linked in.
func Compile(src []byte, ctx CompileContext) ([]*Table, error) {
	if DefaultCompiler == nil {
		return nil, errors.New("eval: no template compiler registered (DefaultCompiler is nil)")
	}
	return DefaultCompiler.Compile(src, ctx)
}
