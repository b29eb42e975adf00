// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the run-wide counters writer.go maintains (spec.md §5's
// "additionally exposed as Prometheus instruments" addition) as a
// prometheus.Collector, so a caller running dbgen as a library can register
// it on their own registry instead of going through --metrics-addr.
type Metrics struct {
	rows   prometheus.Gauge
	bytes  prometheus.Gauge
	shards prometheus.Gauge
}

// NewMetrics builds a Metrics collector reading from the package-level
// progress counters. The engine itself never depends on these being
// registered or scraped — ReadProgress via sync/atomic is always the source
// of truth (spec.md §5's "relaxed, advisory" invariant).
func NewMetrics() *Metrics {
	return &Metrics{
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgen",
			Name:      "rows_written_total",
			Help:      "Rows written across every shard so far in the current run.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgen",
			Name:      "bytes_written_total",
			Help:      "Post-compression bytes written across every shard so far.",
		}),
		shards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgen",
			Name:      "shards_finished_total",
			Help:      "Shards fully closed so far in the current run.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.rows.Describe(ch)
	m.bytes.Describe(ch)
	m.shards.Describe(ch)
}

// Collect implements prometheus.Collector, refreshing each gauge from the
// live counters immediately before it's reported.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	snap := ReadProgress()
	m.rows.Set(float64(snap.Rows))
	m.bytes.Set(float64(snap.Bytes))
	m.shards.Set(float64(snap.ShardsFinished))

	m.rows.Collect(ch)
	m.bytes.Collect(ch)
	m.shards.Collect(ch)
}

// ServeMetrics starts an HTTP server on addr exposing this Metrics on /metrics
// until ctx is canceled, for the CLI's --metrics-addr flag (spec.md §5/§6).
// It runs in the foreground; callers typically launch it in its own
// goroutine.
func ServeMetrics(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewMetrics())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
