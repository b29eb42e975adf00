// Copyright 2024 The dbgen Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package base

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// valueKind tags which variant a Value currently holds.
type valueKind uint8

const (
	// KindNull is the SQL NULL value.
	KindNull valueKind = iota
	// KindNumber wraps a Number.
	KindNumber
	// KindString holds valid UTF-8 text.
	KindString
	// KindBytes holds a byte sequence known not to be valid UTF-8.
	KindBytes
)

// Value is dbgen's scalar column value: Null, Number, String, or Bytes. See
// spec §3/§4.2.
type Value struct {
	kind valueKind
	num  Number
	str  string
	byt  []byte
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// NumberValue wraps a Number as a Value.
func NumberValue(n Number) Value { return Value{kind: KindNumber, num: n} }

// StringValue wraps valid UTF-8 text as a Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BytesValue constructs a Value from a byte sequence, upgrading to String
// when the bytes happen to be valid UTF-8 — matching the original's
// `impl From<Vec<u8>> for Value`.
func BytesValue(b []byte) Value {
	if utf8.Valid(b) {
		return Value{kind: KindString, str: string(b)}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, byt: cp}
}

// Kind reports which variant v holds.
func (v Value) Kind() valueKind { return v.kind }

// IsNull reports whether v is SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Number returns the wrapped Number and true, or (zero, false) if v isn't a
// number.
func (v Value) Number() (Number, bool) {
	if v.kind == KindNumber {
		return v.num, true
	}
	return Number{}, false
}

// String returns the wrapped text and true, or ("", false) if v isn't a
// string.
func (v Value) String() (string, bool) {
	if v.kind == KindString {
		return v.str, true
	}
	return "", false
}

// Bytes returns the wrapped bytes and true, or (nil, false) if v isn't a
// byte string.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind == KindBytes {
		return v.byt, true
	}
	return nil, false
}

// WriteSQL writes the SQL-literal rendering of v to out: NULL, the number's
// default text, a single-quoted string (with `'` doubled, no other escaping
// at this layer — see Format.WriteValue for the escape_backslash option), or
// x'HEXHEX...' for bytes.
func (v Value) WriteSQL(out io.Writer) error {
	switch v.kind {
	case KindNull:
		_, err := io.WriteString(out, "NULL")
		return err
	case KindNumber:
		_, err := io.WriteString(out, v.num.String())
		return err
	case KindString:
		if _, err := io.WriteString(out, "'"); err != nil {
			return err
		}
		for i := 0; i < len(v.str); i++ {
			b := v.str[i]
			if b == '\'' {
				if _, err := io.WriteString(out, "''"); err != nil {
					return err
				}
				continue
			}
			if _, err := out.Write([]byte{b}); err != nil {
				return err
			}
		}
		_, err := io.WriteString(out, "'")
		return err
	case KindBytes:
		if _, err := io.WriteString(out, "x'"); err != nil {
			return err
		}
		for _, b := range v.byt {
			if _, err := fmt.Fprintf(out, "%02X", b); err != nil {
				return err
			}
		}
		_, err := io.WriteString(out, "'")
		return err
	default:
		return errors.Newf("unknown value kind %d", v.kind)
	}
}

// SQLCompare implements spec §4.2's sql_cmp: NULL on either side is
// "unknown" (ok=false); Number/Number and String/String use their natural
// orders; String/Bytes and Bytes/String compare the string's UTF-8 bytes
// against the byte string; Bytes/Bytes is byte-wise; any other cross-type
// pairing is an InvalidArguments error naming fnTag.
func (a Value) SQLCompare(b Value, fnTag string) (cmp int, ok bool, err error) {
	if a.kind == KindNull || b.kind == KindNull {
		return 0, false, nil
	}
	switch {
	case a.kind == KindNumber && b.kind == KindNumber:
		c, valid := a.num.Compare(b.num)
		return c, valid, nil
	case a.kind == KindString && b.kind == KindString:
		return bytes.Compare([]byte(a.str), []byte(b.str)), true, nil
	case a.kind == KindString && b.kind == KindBytes:
		return bytes.Compare([]byte(a.str), b.byt), true, nil
	case a.kind == KindBytes && b.kind == KindString:
		return bytes.Compare(a.byt, []byte(b.str)), true, nil
	case a.kind == KindBytes && b.kind == KindBytes:
		return bytes.Compare(a.byt, b.byt), true, nil
	default:
		return 0, false, errors.Mark(
			errors.Newf("%s: comparing values of different types", fnTag),
			ErrInvalidArguments,
		)
	}
}

// TrySQLConcat implements spec §4.2's try_sql_concat. Note: this preserves
// the original implementation's quirk (spec §9 open question) where the
// `is_utf8` flag is set false on any Bytes input but never set true on a
// String input, so isUTF8 is always false and the StringValue branch is
// never taken. Unlike the accumulator flag, though, the
// original's final conversion (`Vec<u8> -> Value`'s `From` impl) re-checks
// the accumulated bytes for UTF-8 validity and upgrades to String whenever
// they happen to be valid — exactly like BytesValue does here — so
// concatenating only Strings/Numbers still yields a String, not Bytes.
func TrySQLConcat(values []Value) (Value, error) {
	var buf bytes.Buffer
	isUTF8 := false
	for _, item := range values {
		switch item.kind {
		case KindNull:
			return Null(), nil
		case KindNumber:
			buf.WriteString(item.num.String())
		case KindString:
			buf.WriteString(item.str)
		case KindBytes:
			isUTF8 = false
			buf.Write(item.byt)
		}
	}
	if isUTF8 {
		return StringValue(buf.String()), nil
	}
	return BytesValue(buf.Bytes()), nil
}

// ErrInvalidArguments marks errors raised by function/feature misuse, e.g.
// comparing incompatible value types or a non-integer derived row count
// (spec §7).
var ErrInvalidArguments = errors.New("invalid arguments")
