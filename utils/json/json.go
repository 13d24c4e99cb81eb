// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides string-encoded numeric types for RPC arguments.
// JavaScript clients lose precision above 2^53, so amounts travel as
// decimal strings.
package json

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/luxfi/amm/utils/math"
)

const Null = "null"

var errNotInteger = errors.New("not a base 10 integer")

func unquote(b []byte) string {
	str := string(b)
	if len(str) >= 2 {
		if last := len(str) - 1; str[0] == '"' && str[last] == '"' {
			str = str[1:last]
		}
	}
	return str
}

func quote(s string) []byte {
	return []byte(`"` + s + `"`)
}

// Uint32 is a uint32 that can be JSON marshaled as a string.
type Uint32 uint32

func (u Uint32) MarshalJSON() ([]byte, error) {
	return quote(strconv.FormatUint(uint64(u), 10)), nil
}

func (u *Uint32) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 32)
	*u = Uint32(val)
	return err
}

// Uint64 is a uint64 that can be JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return quote(strconv.FormatUint(uint64(u), 10)), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 64)
	*u = Uint64(val)
	return err
}

// Int128 is a signed 128-bit amount marshaled as a decimal string. The zero
// value is 0.
type Int128 struct {
	v *big.Int
}

// NewInt128 wraps v. A nil v is 0.
func NewInt128(v *big.Int) Int128 {
	if v == nil {
		return Int128{}
	}
	return Int128{v: new(big.Int).Set(v)}
}

// Int128FromInt64 is a convenience for literals.
func Int128FromInt64(v int64) Int128 {
	return Int128{v: big.NewInt(v)}
}

// Big returns a copy of the value.
func (i Int128) Big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.v)
}

func (i Int128) String() string {
	return i.Big().String()
}

func (i Int128) MarshalJSON() ([]byte, error) {
	return quote(i.String()), nil
}

func (i *Int128) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	str := unquote(b)
	v, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return fmt.Errorf("%w: %q", errNotInteger, str)
	}
	if !math.InRange128(v) {
		return fmt.Errorf("%w: %s", math.ErrOverflow, str)
	}
	i.v = v
	return nil
}
