// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package rng

// hc128Engine implements the HC-128 stream cipher as a keystream generator,
// matching the original's `rand_hc::Hc128Rng`. It holds two 512-word tables
// (P, Q) that continuously update themselves as keystream words are drawn.
type hc128Engine struct {
	p, q [512]uint32
	cnt  uint32
	buf  [16]uint32 // eight Uint64s' worth of 32-bit words; unused, Uint64 calls step directly
	bufN int
}

func hc128F1(x uint32) uint32 { return rotr32(x, 7) ^ rotr32(x, 18) ^ (x >> 3) }
func hc128F2(x uint32) uint32 { return rotr32(x, 17) ^ rotr32(x, 19) ^ (x >> 10) }

func hc128G1(x, y, z uint32) uint32 { return (rotr32(x, 10) ^ rotr32(z, 23)) + rotr32(y, 8) }
func hc128G2(x, y, z uint32) uint32 { return (rotl32(x, 10) ^ rotl32(z, 23)) + rotl32(y, 8) }

func newHC128(seed [32]byte) *hc128Engine {
	var key, iv [4]uint32
	for i := 0; i < 4; i++ {
		key[i] = le32(seed[i*4 : i*4+4])
		iv[i] = le32(seed[16+i*4 : 16+i*4+4])
	}

	// W[0..7] is the key repeated twice, W[8..15] the IV repeated twice.
	var w [1280]uint32
	for i := 0; i < 8; i++ {
		w[i] = key[i%4]
		w[8+i] = iv[i%4]
	}
	for i := 16; i < 1280; i++ {
		w[i] = hc128F2(w[i-2]) + w[i-7] + hc128F1(w[i-15]) + w[i-16] + uint32(i)
	}

	e := &hc128Engine{}
	copy(e.p[:], w[256:768])
	copy(e.q[:], w[768:1280])

	// The 1024 setup steps feed each output word back into the table slot
	// it was computed from.
	for i := 0; i < 1024; i++ {
		j := e.cnt % 512
		out := e.step()
		if i < 512 {
			e.p[j] = out
		} else {
			e.q[j] = out
		}
	}
	return e
}

func (e *hc128Engine) h1(x uint32) uint32 {
	return e.q[x&0xff] + e.q[256+((x>>16)&0xff)]
}

func (e *hc128Engine) h2(x uint32) uint32 {
	return e.p[x&0xff] + e.p[256+((x>>16)&0xff)]
}

// step produces the next 32-bit keystream word and advances the internal
// counter, updating P or Q in place depending on which half of the 1024-step
// cycle it's in.
func (e *hc128Engine) step() uint32 {
	j := e.cnt % 512
	var out uint32
	if e.cnt%1024 < 512 {
		e.p[j] += hc128G1(e.p[(j+512-3)%512], e.p[(j+512-10)%512], e.p[(j+1)%512])
		out = e.h1(e.p[(j+512-12)%512]) ^ e.p[j]
	} else {
		e.q[j] += hc128G2(e.q[(j+512-3)%512], e.q[(j+512-10)%512], e.q[(j+1)%512])
		out = e.h2(e.q[(j+512-12)%512]) ^ e.q[j]
	}
	e.cnt = (e.cnt + 1) % 1024
	return out
}

func (e *hc128Engine) Uint64() uint64 {
	lo := uint64(e.step())
	hi := uint64(e.step())
	return lo | hi<<32
}
