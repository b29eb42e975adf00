// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build unix

package dbgen

import (
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/WalterWj/dbgen/internal/rlog"
)

// fsyncDir fsyncs the parent directory of path, so a crash immediately after
// a successful run can't leave a fully-written shard file unreferenced in
// its directory's metadata. Best-effort: failures are logged, not
// propagated (spec.md §7's "no retries, no recovery" policy applies to this
// belt-and-suspenders step too).
func fsyncDir(path string) {
	dir := filepath.Dir(path)
	fd, err := unix.Open(dir, unix.O_RDONLY, 0)
	if err != nil {
		rlog.L().Warn("fsync directory: open failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	defer unix.Close(fd)
	if err := unix.Fsync(fd); err != nil {
		rlog.L().Warn("fsync directory failed", zap.String("dir", dir), zap.Error(err))
	}
}
