// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build !unix

package dbgen

// fsyncDir is a no-op on non-unix platforms; the durability guarantee it
// provides on unix is best-effort there too, so skipping it here doesn't
// change dbgen's correctness contract, only its crash-durability margin.
func fsyncDir(path string) {}
