// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// ManifestEntry is one shard file's reproducibility record (spec.md §4.4's
// addition): path, row/byte counts, and an xxhash64 checksum of the
// post-compression bytes, letting a caller verify a re-run reproduced the
// same output without re-reading multi-gigabyte files.
type ManifestEntry struct {
	Path     string `json:"path"`
	Rows     uint64 `json:"rows"`
	Bytes    uint64 `json:"bytes"`
	Checksum string `json:"xxhash64"`
}

// Manifest is the full run's reproducibility record.
type Manifest struct {
	Seed    string          `json:"seed"`
	Entries []ManifestEntry `json:"entries"`
}

// BuildManifest converts a RunReport's shard results into a Manifest, hex-
// encoding each checksum and the run's seed for stable JSON output.
func BuildManifest(seed [32]byte, report *RunReport) Manifest {
	m := Manifest{Seed: hexEncode(seed[:]), Entries: make([]ManifestEntry, 0, len(report.Shards))}
	for _, s := range report.Shards {
		m.Entries = append(m.Entries, ManifestEntry{
			Path:     s.Path,
			Rows:     s.Rows,
			Bytes:    s.Bytes,
			Checksum: hexEncodeUint64(s.Checksum),
		})
	}
	return m
}

// WriteManifest writes m as indented JSON to path (spec.md §6's
// --manifest/--no-manifest flag).
func WriteManifest(path string, m Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "creating manifest %s", path), ErrIO)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return errors.Mark(errors.Wrapf(err, "writing manifest %s", path), ErrIO)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

func hexEncodeUint64(v uint64) string {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return hexEncode(b[:])
}
