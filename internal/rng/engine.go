// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package rng implements the pseudo-random engines dbgen's scheduler seeds
// per-shard and for global expression evaluation (spec §4.5, §6 "--rng").
package rng

import "github.com/cockroachdb/errors"

// Engine is a 64-bit pseudo-random source. Implementations need not be
// cryptographically secure except chacha; dbgen's reproducibility contract
// only requires that the same 32-byte seed always produces the same stream.
type Engine interface {
	Uint64() uint64
}

// Name identifies one of the seven engines spec.md §6's `--rng` flag
// accepts.
type Name string

const (
	ChaCha   Name = "chacha"
	HC128    Name = "hc128"
	ISAAC    Name = "isaac"
	ISAAC64  Name = "isaac64"
	XorShift Name = "xorshift"
	PCG32    Name = "pcg32"
	Step     Name = "step"
)

// New builds the engine named by name, seeded from a 32-byte key. The key is
// typically itself drawn from a meta-RNG (spec §4.5) so that every stream in
// a run, including this one, is reproducible from a single top-level seed.
func New(name Name, seed [32]byte) (Engine, error) {
	switch name {
	case ChaCha:
		return newChaCha(seed)
	case HC128:
		return newHC128(seed), nil
	case ISAAC:
		return newISAAC(seed), nil
	case ISAAC64:
		return newISAAC64(seed), nil
	case XorShift:
		return newXorShift(seed), nil
	case PCG32:
		return newPCG32(seed), nil
	case Step:
		return newStep(seed), nil
	default:
		return nil, errors.Newf("unknown rng engine %q", name)
	}
}

func le64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func rotl32(x uint32, k uint) uint32 { return (x << k) | (x >> (32 - k)) }
func rotr32(x uint32, k uint) uint32 { return (x >> k) | (x << (32 - k)) }
