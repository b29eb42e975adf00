// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allNames() []Name {
	return []Name{ChaCha, HC128, ISAAC, ISAAC64, XorShift, PCG32, Step}
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(Name("bogus"), [32]byte{})
	require.Error(t, err)
}

// TestDeterministic checks that constructing the same engine twice from the
// same seed produces an identical stream — the reproducibility contract
// every shard's per-stream seeding depends on.
func TestDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i * 7)
	}
	for _, name := range allNames() {
		name := name
		t.Run(string(name), func(t *testing.T) {
			a, err := New(name, seed)
			require.NoError(t, err)
			b, err := New(name, seed)
			require.NoError(t, err)
			for i := 0; i < 1000; i++ {
				av, bv := a.Uint64(), b.Uint64()
				require.Equalf(t, av, bv, "%s: diverged at draw %d", name, i)
			}
		})
	}
}

// TestDistinctSeeds checks that two different seeds produce different
// streams for every engine (a trivially weak but useful sanity check that
// the seed actually participates in the state).
func TestDistinctSeeds(t *testing.T) {
	var seedA, seedB [32]byte
	for i := range seedA {
		seedA[i] = byte(i)
		seedB[i] = byte(i + 1)
	}
	for _, name := range allNames() {
		name := name
		t.Run(string(name), func(t *testing.T) {
			a, err := New(name, seedA)
			if err != nil {
				t.Fatal(err)
			}
			b, err := New(name, seedB)
			if err != nil {
				t.Fatal(err)
			}
			same := true
			for i := 0; i < 8; i++ {
				if a.Uint64() != b.Uint64() {
					same = false
				}
			}
			if same {
				t.Fatalf("%s: first 8 draws identical across distinct seeds", name)
			}
		})
	}
}

// TestNotConstantZero is a smoke test that no engine degenerates into an
// all-zero stream for a representative seed.
func TestNotConstantZero(t *testing.T) {
	var seed [32]byte
	seed[0] = 1
	for _, name := range allNames() {
		name := name
		t.Run(string(name), func(t *testing.T) {
			e, err := New(name, seed)
			if err != nil {
				t.Fatal(err)
			}
			var nonzero bool
			for i := 0; i < 16; i++ {
				if e.Uint64() != 0 {
					nonzero = true
				}
			}
			if !nonzero {
				t.Fatalf("%s: first 16 draws all zero", name)
			}
		})
	}
}
