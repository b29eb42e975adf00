// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Command dbgen generates large synthetic relational datasets from a
// compiled template, writing reproducible sharded SQL or CSV output.
package main

import (
	"fmt"
	"os"

	"github.com/WalterWj/dbgen/internal/rlog"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbgen:", err)
		rlog.Sync()
		os.Exit(1)
	}
	rlog.Sync()
}
