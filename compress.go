// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"io"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Compression wraps one of the three codecs spec.md §4.7/§6 supports behind
// a common constructor. Compression level isn't validated against the
// chosen codec (spec.md §9's open question, resolved in DESIGN.md): it's
// passed straight to the underlying library, which rejects it on its own
// terms if out of range.
type Compression interface {
	Name() string
	Extension() string
	NewWriter(w io.Writer, level int) (io.WriteCloser, error)
}

// GzipCompression uses klauspost/compress's drop-in faster gzip.
type GzipCompression struct{}

func (GzipCompression) Name() string      { return "gzip" }
func (GzipCompression) Extension() string { return ".gz" }
func (GzipCompression) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, level)
}

// ZstdCompression uses DataDog/zstd's cgo libzstd bindings.
type ZstdCompression struct{}

func (ZstdCompression) Name() string      { return "zstd" }
func (ZstdCompression) Extension() string { return ".zst" }
func (ZstdCompression) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriterLevel(w, level), nil
}

// XzCompression uses ulikunitz/xz, a pure-Go implementation. The underlying
// library doesn't expose a simple numeric compression level the way gzip and
// zstd do, so level is accepted for CLI-flag symmetry but otherwise unused —
// consistent with §9's decision to leave level validation to the codec
// rather than dbgen.
type XzCompression struct{}

func (XzCompression) Name() string      { return "xz" }
func (XzCompression) Extension() string { return ".xz" }
func (XzCompression) NewWriter(w io.Writer, _ int) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

// NewCompression resolves a --compression flag value, accepting spec.md
// §6's short aliases (gz, zst) alongside the canonical names.
func NewCompression(name string) (Compression, error) {
	switch name {
	case "gzip", "gz":
		return GzipCompression{}, nil
	case "xz":
		return XzCompression{}, nil
	case "zstd", "zst":
		return ZstdCompression{}, nil
	case "", "none":
		return nil, nil
	default:
		return nil, errUnknownCompression(name)
	}
}
