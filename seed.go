// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package dbgen

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// SeedFromString turns a --seed flag value into a 32-byte RNG seed
// (spec.md §6). An empty string asks for a fresh, non-reproducible seed
// drawn from the OS CSPRNG. Any other string is hashed deterministically so
// the same text always yields the same seed: four xxhash64 passes over the
// string, each salted with its output index, fill the 32 bytes.
func SeedFromString(s string) ([32]byte, error) {
	var seed [32]byte
	if s == "" {
		if _, err := rand.Read(seed[:]); err != nil {
			return seed, err
		}
		return seed, nil
	}
	for i := 0; i < 4; i++ {
		h := xxhash.New()
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write([]byte(s))
		binary.LittleEndian.PutUint64(seed[i*8:i*8+8], h.Sum64())
	}
	return seed, nil
}
