// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

// ProgressReporter polls the global counters writer.go maintains and renders
// a two-bar display (rows, bytes), mirroring the original's pbr::MultiBar —
// the closest Go relative being cheggaaa/pb/v3's Pool. It also samples the
// rows/sec rate on every tick so a post-run throughput sparkline can be
// printed (spec.md §4.6's addition).
type ProgressReporter struct {
	rowsBar  *pb.ProgressBar
	bytesBar *pb.ProgressBar
	pool     *pb.Pool

	tick     *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	samples  []float64
	lastRows uint64
	lastTime time.Time
}

// NewProgressReporter builds a reporter for a run expected to produce
// totalRows rows and roughly totalBytes bytes; either may be 0 if unknown,
// in which case the corresponding bar runs in "count up" mode instead of
// showing a percentage.
func NewProgressReporter(totalRows, totalBytes uint64) *ProgressReporter {
	rowsBar := pb.New64(int64(totalRows))
	rowsBar.Set(pb.Bytes, false)
	rowsBar.SetTemplateString(`rows {{counters . }} {{bar . }} {{percent . }} {{etime . }}`)

	bytesBar := pb.New64(int64(totalBytes))
	bytesBar.Set(pb.Bytes, true)
	bytesBar.SetTemplateString(`bytes {{counters . }} {{bar . }} {{percent . }} {{speed . }}`)

	return &ProgressReporter{
		rowsBar:  rowsBar,
		bytesBar: bytesBar,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins rendering and sampling on a fixed interval, returning
// immediately; the caller must call Stop once the run finishes.
func (r *ProgressReporter) Start() {
	pool, err := pb.StartPool(r.rowsBar, r.bytesBar)
	if err != nil {
		// rendering is purely cosmetic; a failure to attach to the terminal
		// shouldn't abort generation.
		close(r.done)
		return
	}
	r.pool = pool
	r.tick = time.NewTicker(250 * time.Millisecond)
	r.lastTime = time.Now()

	go func() {
		defer close(r.done)
		for {
			select {
			case <-r.tick.C:
				r.sample()
			case <-r.stop:
				r.sample()
				r.tick.Stop()
				return
			}
		}
	}()
}

func (r *ProgressReporter) sample() {
	snap := ReadProgress()
	r.rowsBar.SetCurrent(int64(snap.Rows))
	r.bytesBar.SetCurrent(int64(snap.Bytes))

	now := time.Now()
	elapsed := now.Sub(r.lastTime).Seconds()
	if elapsed > 0 {
		rate := float64(snap.Rows-r.lastRows) / elapsed
		r.samples = append(r.samples, rate)
	}
	r.lastRows = snap.Rows
	r.lastTime = now
}

// Stop finalizes rendering and waits for the sampling goroutine to exit.
func (r *ProgressReporter) Stop() {
	close(r.stop)
	<-r.done
	if r.pool != nil {
		_ = r.pool.Stop()
	}
}

// Sparkline renders the sampled rows/sec series as an ASCII chart, or a
// one-line note if fewer than two samples were collected (a run too short
// to have a meaningful shape).
func (r *ProgressReporter) Sparkline() string {
	if len(r.samples) < 2 {
		return "(run too short for a throughput chart)"
	}
	return asciigraph.Plot(r.samples, asciigraph.Height(8), asciigraph.Caption("rows/sec"))
}

// Summary renders a one-line human-readable totals line; the CLI prints it
// after the progress bars finish, and not at all under --quiet.
func Summary(report *RunReport) string {
	return fmt.Sprintf(
		"%s rows, %s written across %d shard file(s) (p50=%s p90=%s p99=%s per shard)",
		humanize.Comma(int64(report.TotalRows)),
		humanize.Bytes(report.TotalBytes),
		len(report.Shards),
		report.P50, report.P90, report.P99,
	)
}
