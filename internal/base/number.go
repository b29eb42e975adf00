// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package base defines the core numeric and scalar value types shared by
// every part of dbgen: the 65-bit integer-or-float Number, and the
// Null/Number/String/Bytes scalar Value built on top of it.
package base

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// i65 is a 65-bit signed integer, represented as a 64-bit "most significant"
// half plus one extra low bit. The combined value is (msb<<1)|lsbit. This is
// exactly wide enough to hold every int64 and every uint64 without loss,
// which is what lets Number do exact integer arithmetic on both signed and
// unsigned template inputs before falling back to float64.
type i65 struct {
	lsbit bool
	msb   int64
}

// toI128 widens v to a signed 128-bit (hi:lo) pair: sign-extend msb to 128
// bits, arithmetic-shift left by one (msb*2), then fold in lsbit.
func (v i65) toI128() (hi int64, lo uint64) {
	loM := uint64(v.msb)
	carry := loM >> 63
	lo = loM << 1
	if v.lsbit {
		lo |= 1
	}
	hiM := v.msb >> 63 // 0 or -1
	hi = (hiM << 1) | int64(carry)
	return hi, lo
}

// i65FromI128 narrows a 128-bit two's-complement value (hi:lo) back to i65.
// The value fits in 65 bits iff hi, taken as a whole int64, is entirely 0s or
// entirely 1s (i.e. hi == 0 or hi == -1) — the 65-bit two's complement range
// is exactly [-2^64, 2^64-1], so every bit above bit 64 must agree with bit
// 64 itself. msb is then the arithmetic right shift of the full value by
// one bit (msb*2+lsbit == value, and msb must fit in int64 given the above).
func i65FromI128(hi int64, lo uint64) (i65, bool) {
	if hi != 0 && hi != -1 {
		return i65{}, false
	}
	lsbit := lo&1 != 0
	newLo := (lo >> 1) | (uint64(hi&1) << 63)
	return i65{lsbit: lsbit, msb: int64(newLo)}, true
}

func (v i65) float64() float64 {
	return float64(v.msb)*2.0 + boolToFloat(v.lsbit)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// wrappingNeg returns the two's-complement negation of v, matching the
// original implementation's note: -(2*msb+lsbit) = 2*(-msb-lsbit) + lsbit.
func (v i65) wrappingNeg() i65 {
	return i65{
		lsbit: v.lsbit,
		msb:   -(v.msb + boolToInt64(v.lsbit)),
	}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (a i65) cmp(b i65) int {
	if a.msb != b.msb {
		if a.msb < b.msb {
			return -1
		}
		return 1
	}
	if a.lsbit == b.lsbit {
		return 0
	}
	if !a.lsbit {
		return -1
	}
	return 1
}

// numKind tags which representation a Number currently holds.
type numKind uint8

const (
	numInt numKind = iota
	numFloat
)

// Number is dbgen's exact-where-possible numeric scalar: a 65-bit signed
// integer that demotes to float64 the instant an operation would overflow
// 65 bits, or on any mixed int/float operation. See spec §3/§4.1.
type Number struct {
	kind numKind
	ival i65
	fval float64
}

// NumberFromInt64 builds an exact integer Number from an int64.
func NumberFromInt64(v int64) Number {
	return Number{kind: numInt, ival: i65{lsbit: v&1 != 0, msb: v >> 1}}
}

// NumberFromUint64 builds an exact integer Number from a uint64. Unlike
// int64, a uint64 needs the full 65 bits to represent losslessly, which is
// exactly why Number exists instead of reusing int64.
func NumberFromUint64(v uint64) Number {
	return Number{kind: numInt, ival: i65{lsbit: v&1 != 0, msb: int64(v >> 1)}}
}

// NumberFromBool builds a Number from a SQL boolean (0 or 1).
func NumberFromBool(v bool) Number {
	return Number{kind: numInt, ival: i65{lsbit: v}}
}

// NumberFromFloat64 builds a (possibly inexact) floating Number.
func NumberFromFloat64(v float64) Number {
	return Number{kind: numFloat, fval: v}
}

// IsInt reports whether n currently holds an exact integer representation.
func (n Number) IsInt() bool { return n.kind == numInt }

func (n Number) float64() float64 {
	if n.kind == numInt {
		return n.ival.float64()
	}
	return n.fval
}

// String renders the number the way the original Display impl does: the
// full-precision integer text, or Go's default float formatting.
func (n Number) String() string {
	if n.kind == numInt {
		hi, lo := n.ival.toI128()
		return formatI128(hi, lo)
	}
	return fmt.Sprintf("%v", n.fval)
}

// formatI128 renders a two's-complement 128-bit (hi:lo) pair as decimal. Only
// ever called with values that actually fit in 65 bits, so after taking the
// absolute value the magnitude fits in lo, except for -2^64 whose magnitude
// is one past MaxUint64.
func formatI128(hi int64, lo uint64) string {
	neg := hi < 0
	if neg {
		// two's-complement negate (hi:lo)
		lo = ^lo + 1
		hi = ^hi
		if lo == 0 {
			hi++
		}
	}
	if hi == 0 {
		if neg {
			return "-" + fmtU64(lo)
		}
		return fmtU64(lo)
	}
	if neg && hi == 1 && lo == 0 {
		// -2^64, the minimum of the 65-bit range
		return "-18446744073709551616"
	}
	// Any other hi needs more than 65 bits, so this branch is unreachable for
	// a valid Number; it exists defensively rather than panicking on a
	// malformed one.
	sign := ""
	if neg {
		sign = "-"
	}
	return sign + fmt.Sprintf("%d:%d", hi, lo)
}

func fmtU64(v uint64) string {
	return fmt.Sprintf("%d", v)
}

// Neg returns -n, matching the original's wrapping (two's-complement)
// semantics for the integer case.
func (n Number) Neg() Number {
	if n.kind == numInt {
		return Number{kind: numInt, ival: n.ival.wrappingNeg()}
	}
	return Number{kind: numFloat, fval: -n.fval}
}

func (a Number) binOp(b Number, intOp func(ahi, alo, bhi, blo int64) (int64, uint64, bool), floatOp func(x, y float64) float64) Number {
	if a.kind == numInt && b.kind == numInt {
		ahi, alo := a.ival.toI128()
		bhi, blo := b.ival.toI128()
		if rhi, rlo, ok := intOp(ahi, int64(alo), bhi, int64(blo)); ok {
			if v, fits := i65FromI128(rhi, uint64(rlo)); fits {
				return Number{kind: numInt, ival: v}
			}
		}
	}
	return Number{kind: numFloat, fval: floatOp(a.float64(), b.float64())}
}

// Add returns a+b, demoting to float on 65-bit overflow.
func (a Number) Add(b Number) Number {
	return a.binOp(b, add128, func(x, y float64) float64 { return x + y })
}

// Sub returns a-b, demoting to float on 65-bit overflow.
func (a Number) Sub(b Number) Number {
	return a.binOp(b, sub128, func(x, y float64) float64 { return x - y })
}

// Mul returns a*b, demoting to float on 65-bit overflow.
func (a Number) Mul(b Number) Number {
	return a.binOp(b, mul128, func(x, y float64) float64 { return x * y })
}

// Div always returns a Float, per spec §4.1: "Division always yields Float."
func (a Number) Div(b Number) Number {
	return Number{kind: numFloat, fval: a.float64() / b.float64()}
}

// Equal implements Number/Number equality: exact for Int/Int, via float64
// projection otherwise.
func (a Number) Equal(b Number) bool {
	if a.kind == numInt && b.kind == numInt {
		return a.ival == b.ival
	}
	return a.float64() == b.float64()
}

// Compare returns -1/0/1 for a<b/a==b/a>b, or (0, false) if the values are
// incomparable (e.g. either side is NaN).
func (a Number) Compare(b Number) (int, bool) {
	if a.kind == numInt && b.kind == numInt {
		return a.ival.cmp(b.ival), true
	}
	x, y := a.float64(), b.float64()
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	default:
		return 0, true
	}
}

// ToInt64 converts n to an int64, returning an error if it doesn't fit or
// (for floats) isn't integral.
func (n Number) ToInt64() (int64, error) {
	if n.kind == numInt {
		hi, lo := n.ival.toI128()
		if hi == 0 && lo <= math.MaxInt64 {
			return int64(lo), nil
		}
		if hi == -1 && int64(lo) < 0 {
			return int64(lo), nil
		}
		return 0, errors.Newf("number %s does not fit in a 64-bit signed integer", n)
	}
	if n.fval != math.Trunc(n.fval) || math.IsNaN(n.fval) || math.IsInf(n.fval, 0) {
		return 0, errors.Newf("number %v is not an integer", n.fval)
	}
	if n.fval < math.MinInt64 || n.fval >= 1<<63 {
		return 0, errors.Newf("number %v does not fit in a 64-bit signed integer", n.fval)
	}
	return int64(n.fval), nil
}

// ToUint64 converts n to a non-negative uint64, used for derived row counts
// (spec §4.4.2).
func (n Number) ToUint64() (uint64, error) {
	i, err := n.ToInt64()
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.Newf("number %d is negative", i)
	}
	return uint64(i), nil
}

// ToSQLBool implements spec §4.1's to_sql_bool(): Int -> msb!=0||lsbit, Float
// NaN -> absent, other float -> x!=0.0.
func (n Number) ToSQLBool() (bool, bool) {
	if n.kind == numInt {
		return n.ival.msb != 0 || n.ival.lsbit, true
	}
	if math.IsNaN(n.fval) {
		return false, false
	}
	return n.fval != 0.0, true
}

func add128(ahi, alo, bhi, blo int64) (hi int64, lo uint64, ok bool) {
	rlo, carry := bits64Add(uint64(alo), uint64(blo))
	rhi := ahi + bhi + int64(carry)
	return rhi, rlo, true
}

func sub128(ahi, alo, bhi, blo int64) (hi int64, lo uint64, ok bool) {
	rlo, borrow := bits64Sub(uint64(alo), uint64(blo))
	rhi := ahi - bhi - int64(borrow)
	return rhi, rlo, true
}

func bits64Add(a, b uint64) (sum uint64, carry uint64) {
	sum = a + b
	if sum < a {
		carry = 1
	}
	return sum, carry
}

func bits64Sub(a, b uint64) (diff uint64, borrow uint64) {
	diff = a - b
	if a < b {
		borrow = 1
	}
	return diff, borrow
}

// mul128 computes the truncated-mod-2^128 product of two 128-bit
// two's-complement values given as (hi, lo) pairs. Two's complement
// arithmetic mod 2^n is ring-homomorphic regardless of how the bits are
// interpreted, so this multiplies the raw bit patterns as unsigned limbs;
// the result is the exact mathematical product whenever that product
// actually fits in 128 bits (which i65FromI128 then narrows and verifies
// fits in 65). When neither operand fits in an int64, both magnitudes are at
// least 2^63, so the product needs at least 127 bits and may wrap mod 2^128;
// that case reports ok=false.
func mul128(ahi, alo, bhi, blo int64) (hi int64, lo uint64, ok bool) {
	if ahi != alo>>63 && bhi != blo>>63 {
		return 0, 0, false
	}
	uAlo, uAhi := uint64(alo), uint64(ahi)
	uBlo, uBhi := uint64(blo), uint64(bhi)

	hiProd, loProd := mulU64(uAlo, uBlo)
	hiProd += uAhi*uBlo + uAlo*uBhi
	return int64(hiProd), loProd, true
}

func mulU64(a, b uint64) (hi, lo uint64) {
	const mask = 0xffffffff
	aLo, aHi := a&mask, a>>32
	bLo, bHi := b&mask, b>>32

	t := aLo * bLo
	w0 := t & mask
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	lo = (t << 32) | w0
	hi = aHi*bHi + w2 + k
	return hi, lo
}
