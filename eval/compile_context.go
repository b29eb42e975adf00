// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package eval

import "time"

// CompileContext carries the run-level settings a real template compiler
// needs in order to fold constants and choose between integer and float
// arithmetic paths while building a Table — e.g. the declared time zone
// affects how a `--now`-relative timestamp literal compiles, and
// --escape-backslash affects how string escapes in literals are interpreted.
// dbgen's own code only constructs this value and hands it to the external
// compiler; nothing here is evaluated at row-generation time (that's State's
// job).
type CompileContext struct {
	TimeZone        *time.Location
	Now             time.Time
	EscapeBackslash bool
	Seed            [32]byte
}
