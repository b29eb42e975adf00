// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"bufio"
	"io"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"github.com/WalterWj/dbgen/eval"
	"github.com/WalterWj/dbgen/internal/base"
)

// Global run-wide progress counters (spec.md §2/C6): every shard writer
// updates these with plain atomics as it goes, and the progress reporter
// (progress.go) polls them on its own schedule. Neither side blocks on the
// other — this is advisory, not a synchronization primitive.
var (
	writeProgress uint64 // main rows written across every shard so far
	writtenSize   uint64 // post-compression bytes written across every shard
	writeFinished uint64 // shards fully closed so far
)

// ResetProgress zeroes the global counters; callers that run more than one
// generation in the same process (e.g. tests) should call this first.
func ResetProgress() {
	atomic.StoreUint64(&writeProgress, 0)
	atomic.StoreUint64(&writtenSize, 0)
	atomic.StoreUint64(&writeFinished, 0)
}

// ProgressSnapshot is a point-in-time read of the global counters.
type ProgressSnapshot struct {
	Rows           uint64
	Bytes          uint64
	ShardsFinished uint64
}

// ReadProgress takes a relaxed snapshot of the run-wide counters.
func ReadProgress() ProgressSnapshot {
	return ProgressSnapshot{
		Rows:           atomic.LoadUint64(&writeProgress),
		Bytes:          atomic.LoadUint64(&writtenSize),
		ShardsFinished: atomic.LoadUint64(&writeFinished),
	}
}

// countingSink wraps an io.Writer, counting bytes written and incrementally
// hashing them with xxhash64 so a shard's manifest entry (spec.md §4.4) can
// be produced without a second read pass over the file.
type countingSink struct {
	w    io.Writer
	n    uint64
	hash *xxhash.Digest
}

func newCountingSink(w io.Writer) *countingSink {
	return &countingSink{w: w, hash: xxhash.New()}
}

func (s *countingSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if n > 0 {
		s.n += uint64(n)
		_, _ = s.hash.Write(p[:n])
		atomic.AddUint64(&writtenSize, uint64(n))
	}
	return n, err
}

// ShardResult summarizes one completed table's data file for the run
// manifest.
type ShardResult struct {
	Path     string
	Rows     uint64
	Bytes    uint64
	Checksum uint64
}

// ShardPlan describes the rows one shard is responsible for: a contiguous,
// globally-numbered range of main rows split across filesCount .sql/.csv
// files per table, each containing insertsCount batches of rowsCount rows
// (the final file/batch may hold fewer, per
// lastFileInsertsCount/lastInsertRowsCount — spec.md §4.4/§6).
type ShardPlan struct {
	ShardIndex int
	FirstRow   uint64 // 1-based global row number of this shard's first row
	RowCount   uint64 // total main rows this shard must produce

	FilesCount           int
	InsertsCount         int
	RowsCount            int
	LastFileInsertsCount int // 0 => same as InsertsCount
	LastInsertRowsCount  int // 0 => same as RowsCount

	OutDir          string
	EscapeBackslash bool
}

func (p ShardPlan) insertsInFile(fileIdx int) int {
	if fileIdx == p.FilesCount-1 && p.LastFileInsertsCount > 0 {
		return p.LastFileInsertsCount
	}
	return p.InsertsCount
}

func (p ShardPlan) rowsInInsert(fileIdx, insertIdx int) int {
	if fileIdx == p.FilesCount-1 && insertIdx == p.insertsInFile(fileIdx)-1 && p.LastInsertRowsCount > 0 {
		return p.LastInsertRowsCount
	}
	return p.RowsCount
}

// WriteShard writes every table's data files for one shard (spec.md §4.4's
// write_data_file): tables is the flat, compiled table set, indexed by
// DerivedEdge.Child. Every table — main or derived — gets its own file per
// shard/file index; the recursive per-row expansion (write_row /
// write_one_row) streams each derived row straight into its own table's
// file rather than the parent's. Returns one ShardResult per table per
// file written.
func WriteShard(
	tables []*eval.Table,
	format Format,
	comp Compression,
	level int,
	plan ShardPlan,
	baseState *eval.State,
) ([]ShardResult, error) {
	results := make([]ShardResult, 0, plan.FilesCount*len(tables))
	rowNum := plan.FirstRow
	for fileIdx := 0; fileIdx < plan.FilesCount; fileIdx++ {
		inserts := plan.insertsInFile(fileIdx)
		res, nextRowNum, err := writeDataFile(tables, format, comp, level, plan, fileIdx, inserts, rowNum, baseState)
		if err != nil {
			return results, errors.Wrapf(err, "writing shard %d file %d", plan.ShardIndex, fileIdx)
		}
		rowNum = nextRowNum
		results = append(results, res...)
	}
	atomic.AddUint64(&writeFinished, 1)
	return results, nil
}

func dataFilePath(plan ShardPlan, table *eval.Table, fileIdx int, format Format, comp Compression) string {
	name := table.Name.Table
	if plan.FilesCount > 1 || plan.ShardIndex > 0 {
		name = name + "." + itoa(plan.ShardIndex) + "." + itoa(fileIdx)
	}
	ext := "." + format.Name()
	if comp != nil {
		ext += comp.Extension()
	}
	return plan.OutDir + "/" + name + ext
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// openTableFile holds one table's open output handle for the data file
// currently being written: the raw file, its (possibly compressing)
// byte-counting sink, and the INSERT-batching bookkeeping spec.md §4.4
// calls actual_rows[i].
type openTableFile struct {
	path       string
	sink       *countingSink
	bw         *bufio.Writer
	closer     io.Closer
	actualRows uint64 // rows in the currently open INSERT statement
	totalRows  uint64 // rows ever written to this file
}

func closeTableFiles(files []*openTableFile) {
	for _, tf := range files {
		if tf != nil {
			tf.closer.Close()
		}
	}
}

// writeDataFile writes the data files for one file index of a shard, one per
// table, end to end: open every table's file wrapped in the chosen compressor and
// byte-counting sink, emit `inserts` batches of main rows (each one
// recursively expanding into every table's derived rows), close and fsync
// every file. Returns one ShardResult per table and the next global row
// number to continue from.
func writeDataFile(
	tables []*eval.Table,
	format Format,
	comp Compression,
	level int,
	plan ShardPlan,
	fileIdx int,
	inserts int,
	startRowNum uint64,
	baseState *eval.State,
) ([]ShardResult, uint64, error) {
	files := make([]*openTableFile, len(tables))
	for i, table := range tables {
		path := dataFilePath(plan, table, fileIdx, format, comp)
		f, err := os.Create(path)
		if err != nil {
			closeTableFiles(files)
			return nil, startRowNum, errors.Mark(errors.Wrapf(err, "creating %s", path), ErrIO)
		}
		sink := newCountingSink(f)
		var closer io.Closer = f
		var out io.Writer = sink
		if comp != nil {
			cw, err := comp.NewWriter(sink, level)
			if err != nil {
				f.Close()
				closeTableFiles(files)
				return nil, startRowNum, errors.Mark(errors.Wrapf(err, "opening %s compressor", path), ErrIO)
			}
			out = cw
			closer = multiCloser{cw, f}
		}
		files[i] = &openTableFile{path: path, sink: sink, bw: bufio.NewWriterSize(out, 64*1024), closer: closer}
	}

	visited := make([]bool, len(tables))
	rowNum := startRowNum
	for insertIdx := 0; insertIdx < inserts; insertIdx++ {
		rowsInInsert := plan.rowsInInsert(fileIdx, insertIdx)
		for r := 0; r < rowsInInsert; r++ {
			if err := writeMainRow(tables, files, format, baseState, rowNum, visited, plan.EscapeBackslash); err != nil {
				closeTableFiles(files)
				return nil, rowNum, errors.Wrapf(err, "writing row %d", rowNum)
			}
			rowNum++
			atomic.AddUint64(&writeProgress, 1)
		}
		// write_trailer (spec.md §4.4): every table with an open INSERT gets
		// its trailer now, regardless of how many rows it accumulated —
		// derived tables may have collected a multiple of rowsInInsert.
		for _, tf := range files {
			if tf.actualRows > 0 {
				if err := format.EndInsert(tf.bw); err != nil {
					closeTableFiles(files)
					return nil, rowNum, errors.Mark(err, ErrIO)
				}
				tf.actualRows = 0
			}
		}
	}

	results := make([]ShardResult, len(tables))
	for i, tf := range files {
		if err := tf.bw.Flush(); err != nil {
			closeTableFiles(files)
			return nil, rowNum, errors.Mark(errors.Wrapf(err, "flushing %s", tf.path), ErrIO)
		}
		if err := tf.closer.Close(); err != nil {
			return nil, rowNum, errors.Mark(errors.Wrapf(err, "closing %s", tf.path), ErrIO)
		}
		fsyncDir(tf.path)
		results[i] = ShardResult{
			Path:     tf.path,
			Rows:     tf.totalRows,
			Bytes:    tf.sink.n,
			Checksum: tf.sink.hash.Sum64(),
		}
	}
	return results, rowNum, nil
}

// writeMainRow implements spec.md §4.4.1's write_row: it clears the
// per-table visited set, then visits every table not already marked
// visited, in index order. A table becomes pre-visited only by being
// another table's derived child (writeOneRow marks it before recursing),
// so this loop naturally covers every table with no incoming derived edge
// — there may be more than one — while skipping every table that was
// reached as someone's child.
func writeMainRow(
	tables []*eval.Table,
	files []*openTableFile,
	format Format,
	baseState *eval.State,
	rowNum uint64,
	visited []bool,
	escapeBackslash bool,
) error {
	for i := range visited {
		visited[i] = false
	}
	for i, table := range tables {
		if visited[i] {
			continue
		}
		visited[i] = true
		state := baseState.Root(rowNum, len(table.Columns))
		if err := writeOneRow(tables, files, format, i, state, visited, escapeBackslash); err != nil {
			return err
		}
	}
	return nil
}

// writeOneRow implements spec.md §4.4.2's write_one_row: evaluate
// tableIndex's row expression against state, write it into that table's own
// file (opening a new INSERT if this is the first row since the last
// trailer), then recurse into every derived edge, evaluating each child's
// row count against state and writing that many child rows — each sharing
// state's RowNum (spec.md's GLOSSARY: a sub-row "does not advance row_num")
// but with its own SubRowNum counting 1..count within this parent visit.
func writeOneRow(
	tables []*eval.Table,
	files []*openTableFile,
	format Format,
	tableIndex int,
	state *eval.State,
	visited []bool,
	escapeBackslash bool,
) error {
	table := tables[tableIndex]
	tf := files[tableIndex]

	isFirstInInsert := state.SubRowNum == 1 && tf.actualRows == 0
	if isFirstInInsert {
		if err := format.BeginInsert(tf.bw, table); err != nil {
			return errors.Mark(err, ErrIO)
		}
	}

	row, err := table.Content.Eval(state)
	if err != nil {
		return errors.Mark(err, ErrGeneration)
	}
	if len(row) != len(table.Columns) {
		return errors.Mark(errors.Newf(
			"table %s: content produced %d values for %d columns",
			table.Name, len(row), len(table.Columns),
		), ErrInternal)
	}

	if err := format.BeginRow(tf.bw, isFirstInInsert); err != nil {
		return err
	}
	for i, v := range row {
		if i > 0 {
			if err := format.WriteColumnSep(tf.bw); err != nil {
				return err
			}
		}
		if err := format.WriteValue(tf.bw, v, escapeBackslash); err != nil {
			return err
		}
	}
	if err := format.EndRow(tf.bw); err != nil {
		return err
	}
	tf.actualRows++
	tf.totalRows++

	for _, edge := range table.Derived {
		child := tables[edge.Child]
		count, err := derivedRowCount(child, edge.Count, state)
		if err != nil {
			return errors.Wrapf(err, "table %s: derived count", child.Name)
		}
		visited[edge.Child] = true
		for r := uint64(1); r <= count; r++ {
			childState := state.Child(state.RowNum, r, len(child.Columns))
			if err := writeOneRow(tables, files, format, edge.Child, childState, visited, escapeBackslash); err != nil {
				return err
			}
		}
	}
	return nil
}

func derivedRowCount(child *eval.Table, countExpr eval.Expr, parent *eval.State) (uint64, error) {
	v, err := countExpr.Eval(parent)
	if err != nil {
		return 0, err
	}
	n, ok := v.Number()
	if !ok {
		return 0, errors.Mark(errors.Mark(errors.Newf("derived count for %s is not numeric", child.Name), ErrGeneration), base.ErrInvalidArguments)
	}
	count, err := n.ToUint64()
	if err != nil {
		return 0, errors.Mark(err, base.ErrInvalidArguments)
	}
	return count, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
