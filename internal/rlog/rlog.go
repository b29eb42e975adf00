// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package rlog wraps a process-wide zap logger for dbgen's handful of
// informational and best-effort-warning log lines (the run-complete report, a
// failed shard, a failed fsync, the metrics server exiting). Nothing in the
// generation hot path logs;
// this exists for the run's bookkeeping messages only.
package rlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Init installs the process logger: zap's production config with console
// encoding, at warn level when quiet is true and info level otherwise.
func Init(quiet bool) error {
	mu.Lock()
	defer mu.Unlock()

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// L returns the current logger, falling back to zap.NewNop() before Init is
// called (e.g. in tests that exercise a package without a CLI entry point).
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes any buffered log entries; call once before process exit.
func Sync() {
	_ = L().Sync()
}
