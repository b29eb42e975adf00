// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/WalterWj/dbgen/eval"
	"github.com/WalterWj/dbgen/internal/rlog"
	"github.com/WalterWj/dbgen/internal/rng"
)

// RunConfig is everything the scheduler needs to generate the table set's
// sharded output (spec.md §4.5/§6). Jobs <= 0 means "use one worker per
// available core" (runtime.GOMAXPROCS).
type RunConfig struct {
	Tables        []*eval.Table
	Format        Format
	Compression   Compression
	CompressLevel int

	RngName rng.Name
	Seed    [32]byte
	Jobs    int

	OutDir          string
	EscapeBackslash bool

	ShardsCount          int
	FilesCount           int
	InsertsCount         int
	RowsCount            int
	LastFileInsertsCount int
	LastInsertRowsCount  int

	Now      time.Time
	TimeZone *time.Location
}

// RunReport summarizes a completed run: every shard file produced plus
// shard-duration percentiles (spec.md §4.5's straggler-spotting addition).
type RunReport struct {
	Shards        []ShardResult
	TotalRows     uint64
	TotalBytes    uint64
	P50, P90, P99 time.Duration
}

// SafeFormat implements redact.SafeFormatter: every field a RunReport
// carries is either a count dbgen computed itself or a duration, never
// template-evaluated row content, so the whole thing is safe to include in a
// redacted log verbatim.
func (r *RunReport) SafeFormat(s redact.SafePrinter, _ rune) {
	s.Printf("rows=%d bytes=%d shards=%d p50=%s p90=%s p99=%s",
		redact.Safe(r.TotalRows), redact.Safe(r.TotalBytes), redact.Safe(len(r.Shards)),
		redact.Safe(r.P50), redact.Safe(r.P90), redact.Safe(r.P99))
}

// Run seeds one RNG stream per shard plus one shared "global" stream from a
// single meta-RNG, in shard-index order, entirely before any shard starts
// running — so the draw order (and therefore every stream's output) is
// independent of how the worker pool happens to schedule goroutines
// (spec.md §4.5/§5's determinism invariant). It then fans the shards out
// across an errgroup-bounded worker pool, preserving each shard's
// contiguous slice of the global, monotonically increasing row-number space
// (spec.md §5).
func Run(ctx context.Context, cfg RunConfig) (*RunReport, error) {
	if cfg.ShardsCount <= 0 {
		return nil, errors.Mark(errors.New("shards count must be positive"), ErrConfig)
	}
	ResetProgress()

	metaEngine, err := rng.New(cfg.RngName, cfg.Seed)
	if err != nil {
		return nil, errors.Mark(err, ErrConfig)
	}

	globalSeed := drawSeed(metaEngine)
	shardSeeds := make([][32]byte, cfg.ShardsCount)
	for i := range shardSeeds {
		shardSeeds[i] = drawSeed(metaEngine)
	}

	globalRng, err := rng.New(cfg.RngName, globalSeed)
	if err != nil {
		return nil, errors.Mark(err, ErrConfig)
	}

	plans, err := buildShardPlans(cfg)
	if err != nil {
		return nil, err
	}

	hist := hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)
	var (
		mu      sync.Mutex
		results []ShardResult
	)

	g, gctx := errgroup.WithContext(ctx)
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)

	for i, plan := range plans {
		i, plan := i, plan
		shardRng, err := rng.New(cfg.RngName, shardSeeds[i])
		if err != nil {
			return nil, errors.Mark(err, ErrConfig)
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			state := &eval.State{Rng: shardRng, GlobalRng: globalRng, Now: cfg.Now, TimeZone: cfg.TimeZone}
			res, err := WriteShard(cfg.Tables, cfg.Format, cfg.Compression, cfg.CompressLevel, plan, state)
			elapsed := time.Since(start)

			mu.Lock()
			_ = hist.RecordValue(int64(elapsed / time.Microsecond))
			results = append(results, res...)
			mu.Unlock()

			if err != nil {
				rlog.L().Warn("shard failed", zap.Int("shard", plan.ShardIndex), zap.Error(err))
				return err
			}
			return nil
		})
	}

	runErr := g.Wait()

	// Shards finish in whatever order the worker pool happens to schedule
	// them, not shard order — sort by output path (which embeds the shard
	// and file indices) so the manifest and report are reproducible byte for
	// byte regardless of scheduling, not just regardless of seed.
	slices.SortFunc(results, func(a, b ShardResult) bool { return a.Path < b.Path })

	report := &RunReport{
		Shards: results,
		P50:    time.Duration(hist.ValueAtPercentile(50)) * time.Microsecond,
		P90:    time.Duration(hist.ValueAtPercentile(90)) * time.Microsecond,
		P99:    time.Duration(hist.ValueAtPercentile(99)) * time.Microsecond,
	}
	for _, r := range results {
		report.TotalRows += r.Rows
		report.TotalBytes += r.Bytes
	}
	if runErr != nil {
		return report, errors.Mark(runErr, ErrGeneration)
	}
	return report, nil
}

func drawSeed(e rng.Engine) [32]byte {
	var seed [32]byte
	for i := 0; i < 4; i++ {
		v := e.Uint64()
		seed[i*8+0] = byte(v)
		seed[i*8+1] = byte(v >> 8)
		seed[i*8+2] = byte(v >> 16)
		seed[i*8+3] = byte(v >> 24)
		seed[i*8+4] = byte(v >> 32)
		seed[i*8+5] = byte(v >> 40)
		seed[i*8+6] = byte(v >> 48)
		seed[i*8+7] = byte(v >> 56)
	}
	return seed
}

// buildShardPlans partitions the table's total row range across
// cfg.ShardsCount contiguous, globally-numbered slices, applying the
// last-file/last-insert row-count overrides only to the final shard
// (spec.md §4.4/§9: earlier shards never need a shared mutable "is this the
// last one" check, since only the very last ShardPlan in the slice carries
// non-zero LastFileInsertsCount/LastInsertRowsCount).
func buildShardPlans(cfg RunConfig) ([]ShardPlan, error) {
	full := ShardPlan{
		FilesCount:      cfg.FilesCount,
		InsertsCount:    cfg.InsertsCount,
		RowsCount:       cfg.RowsCount,
		OutDir:          cfg.OutDir,
		EscapeBackslash: cfg.EscapeBackslash,
	}
	rowsPerFullShard := uint64(cfg.FilesCount) * uint64(cfg.InsertsCount) * uint64(cfg.RowsCount)

	plans := make([]ShardPlan, cfg.ShardsCount)
	var rowNum uint64 = 1
	for i := 0; i < cfg.ShardsCount; i++ {
		p := full
		p.ShardIndex = i
		p.FirstRow = rowNum
		rows := rowsPerFullShard
		if i == cfg.ShardsCount-1 {
			p.LastFileInsertsCount = cfg.LastFileInsertsCount
			p.LastInsertRowsCount = cfg.LastInsertRowsCount
			rows = lastShardRowCount(cfg)
		}
		p.RowCount = rows
		rowNum += rows
		plans[i] = p
	}
	return plans, nil
}

func lastShardRowCount(cfg RunConfig) uint64 {
	files := cfg.FilesCount
	var total uint64
	for f := 0; f < files; f++ {
		inserts := cfg.InsertsCount
		if f == files-1 && cfg.LastFileInsertsCount > 0 {
			inserts = cfg.LastFileInsertsCount
		}
		for ins := 0; ins < inserts; ins++ {
			rows := cfg.RowsCount
			if f == files-1 && ins == inserts-1 && cfg.LastInsertRowsCount > 0 {
				rows = cfg.LastInsertRowsCount
			}
			total += uint64(rows)
		}
	}
	return total
}
