// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package eval

import (
	"time"

	"github.com/WalterWj/dbgen/internal/rng"
)

// State is the per-row evaluation context threaded through Expr.Eval. A top-
// level row gets a fresh State rooted at that row; each derived row built
// under it links back via Parent, so a child expression can reach up to any
// ancestor's RowNum/SubRowNum or column values (spec.md §4.4's "row_num" /
// "sub_row_num" row references).
type State struct {
	Parent *State

	// RowNum is the 1-based number of the main row this row belongs to,
	// counted globally across every shard (spec.md §4.4/§5's "global row
	// numbering" invariant) — not reset per shard. A derived row carries its
	// parent's RowNum rather than a count of its own table's rows.
	RowNum uint64

	// SubRowNum is this row's position among its siblings under the same
	// parent row, 1-based, reset to 1 at the start of each parent visit.
	SubRowNum uint64

	// Row holds this row's already-evaluated column values, populated as
	// Content runs column by column, so later columns' expressions may refer
	// back to earlier ones.
	Row Row

	// Rng is this shard's per-stream RNG (spec.md §4.5's per-stream seeding:
	// every shard gets its own independent stream so shard count doesn't
	// perturb any other shard's output).
	Rng rng.Engine

	// GlobalRng is the single RNG stream shared by every "global" expression
	// in the template (e.g. ones used to size a derived table), seeded once
	// per run rather than once per shard.
	GlobalRng rng.Engine

	Now      time.Time
	TimeZone *time.Location
}

// Root builds a fresh top-level State for a table row, linking the two
// shared RNG streams and clock fields straight through.
func (s *State) Root(rowNum uint64, columnCount int) *State {
	return &State{
		Parent:    nil,
		RowNum:    rowNum,
		SubRowNum: 1,
		Row:       make(Row, 0, columnCount),
		Rng:       s.Rng,
		GlobalRng: s.GlobalRng,
		Now:       s.Now,
		TimeZone:  s.TimeZone,
	}
}

// Child builds a derived-row State nested under s, for the subRowNum-th
// child row produced under this parent visit.
func (s *State) Child(rowNum, subRowNum uint64, columnCount int) *State {
	return &State{
		Parent:    s,
		RowNum:    rowNum,
		SubRowNum: subRowNum,
		Row:       make(Row, 0, columnCount),
		Rng:       s.Rng,
		GlobalRng: s.GlobalRng,
		Now:       s.Now,
		TimeZone:  s.TimeZone,
	}
}

// Ancestor walks up levels parent links (0 == s itself), returning nil if
// the chain isn't that deep.
func (s *State) Ancestor(levels int) *State {
	cur := s
	for i := 0; i < levels && cur != nil; i++ {
		cur = cur.Parent
	}
	return cur
}
