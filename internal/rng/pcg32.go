// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package rng

const pcgMultiplier = 6364136223846793005

// pcg32Engine is O'Neill's PCG32 (XSH-RR), matching the original's
// `rand_pcg::Pcg32`. Uint64 combines two successive 32-bit outputs, as
// rand_pcg's blanket next_u64-via-next_u32 impl does.
type pcg32Engine struct {
	state uint64
	inc   uint64
}

func newPCG32(seed [32]byte) *pcg32Engine {
	initstate := le64(seed[0:8])
	initseq := le64(seed[8:16])
	e := &pcg32Engine{inc: (initseq << 1) | 1}
	e.next32()
	e.state += initstate
	e.next32()
	return e
}

func (e *pcg32Engine) next32() uint32 {
	old := e.state
	e.state = old*pcgMultiplier + e.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((32 - rot) & 31))
}

func (e *pcg32Engine) Uint64() uint64 {
	lo := uint64(e.next32())
	hi := uint64(e.next32())
	return lo | hi<<32
}
