// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package rng

import "golang.org/x/crypto/chacha20"

// chachaEngine uses ChaCha20's keystream as a CSPRNG, the same technique the
// original's `rand_chacha` crate applies: encrypt an all-zero plaintext and
// read the resulting keystream bytes eight at a time.
type chachaEngine struct {
	cipher *chacha20.Cipher
	buf    [64]byte
	zero   [64]byte
	pos    int
}

func newChaCha(seed [32]byte) (*chachaEngine, error) {
	var nonce [chacha20.NonceSize]byte // fixed zero nonce: the seed alone determines the stream
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	e := &chachaEngine{cipher: c}
	e.pos = len(e.buf) // force a refill on first Uint64
	return e, nil
}

func (e *chachaEngine) refill() {
	e.cipher.XORKeyStream(e.buf[:], e.zero[:])
	e.pos = 0
}

func (e *chachaEngine) Uint64() uint64 {
	if e.pos+8 > len(e.buf) {
		e.refill()
	}
	v := le64(e.buf[e.pos : e.pos+8])
	e.pos += 8
	return v
}
