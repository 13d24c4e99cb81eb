// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// MaxInt128 is 2^127 - 1.
	MaxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	// MinInt128 is -2^127.
	MinInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// InRange128 reports whether v is representable as a signed 128-bit integer.
func InRange128(v *big.Int) bool {
	return v.Cmp(MinInt128) >= 0 && v.Cmp(MaxInt128) <= 0
}

// Add128 returns a + b, or ErrOverflow if the sum leaves the 128-bit domain.
func Add128(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if !InRange128(sum) {
		return nil, ErrOverflow
	}
	return sum, nil
}

// Sub128 returns a - b, or ErrUnderflow if the difference leaves the 128-bit
// domain.
func Sub128(a, b *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(a, b)
	if !InRange128(diff) {
		return nil, ErrUnderflow
	}
	return diff, nil
}

// Mul128 returns a * b, or ErrOverflow if the product leaves the 128-bit
// domain.
func Mul128(a, b *big.Int) (*big.Int, error) {
	prod := new(big.Int).Mul(a, b)
	if !InRange128(prod) {
		return nil, ErrOverflow
	}
	return prod, nil
}

// Div128 returns a / b truncated toward zero.
func Div128(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	quo := new(big.Int).Quo(a, b)
	if !InRange128(quo) {
		// MinInt128 / -1
		return nil, ErrOverflow
	}
	return quo, nil
}

// MulDivDown returns floor(a*b/c).
//
// a*b is formed in a 256-bit intermediate, so the result is exact whenever
// it fits in 128 bits even if the product does not. Inputs must be
// non-negative.
func MulDivDown(a, b, c *big.Int) (*big.Int, error) {
	return mulDiv(a, b, c, false)
}

// MulDivUp returns ceil(a*b/c). See MulDivDown.
func MulDivUp(a, b, c *big.Int) (*big.Int, error) {
	return mulDiv(a, b, c, true)
}

func mulDiv(a, b, c *big.Int, roundUp bool) (*big.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 || c.Sign() < 0 {
		return nil, ErrInvalidInput
	}
	if c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	x, y, d, err := wide3(a, b, c)
	if err != nil {
		return nil, err
	}

	// x, y < 2^127 so the product is below 2^254.
	prod := new(uint256.Int).Mul(x, y)
	quo := new(uint256.Int).Div(prod, d)
	if roundUp {
		rem := new(uint256.Int).Mod(prod, d)
		if !rem.IsZero() {
			quo.AddUint64(quo, 1)
		}
	}

	result := quo.ToBig()
	if result.Cmp(MaxInt128) > 0 {
		return nil, ErrOverflow
	}
	return result, nil
}

// MulWide returns a*b as a 256-bit value. Both inputs must be non-negative
// 128-bit integers, so the product cannot overflow.
func MulWide(a, b *big.Int) (*uint256.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrInvalidInput
	}
	x, err := toWide(a)
	if err != nil {
		return nil, err
	}
	y, err := toWide(b)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Mul(x, y), nil
}

// Sqrt returns floor(sqrt(v)) computed with Newton's method, or 0 for v <= 0.
func Sqrt(v *big.Int) *big.Int {
	if v.Sign() <= 0 {
		return new(big.Int)
	}
	if v.Cmp(big.NewInt(4)) < 0 {
		return big.NewInt(1)
	}

	// Start above the root so the iteration decreases monotonically.
	x := new(big.Int).Lsh(one, uint(v.BitLen()+1)/2)
	for {
		// y = (x + v/x) / 2
		y := new(big.Int).Quo(v, x)
		y.Add(y, x)
		y.Rsh(y, 1)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// IsZero reports whether v is nil or zero.
func IsZero(v *big.Int) bool {
	return v == nil || v.Sign() == 0
}

// Zero returns a new zero value.
func Zero() *big.Int {
	return new(big.Int).Set(zero)
}

func wide3(a, b, c *big.Int) (*uint256.Int, *uint256.Int, *uint256.Int, error) {
	x, err := toWide(a)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := toWide(b)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := toWide(c)
	if err != nil {
		return nil, nil, nil, err
	}
	return x, y, d, nil
}

func toWide(v *big.Int) (*uint256.Int, error) {
	if v.Cmp(MaxInt128) > 0 {
		return nil, ErrOverflow
	}
	w, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return w, nil
}

// MulScaleDivUp returns ceil(a*b*scale/c).
//
// a*b is formed at 256 bits and split as q*c + r, so the result is
// q*scale + ceil(r*scale/c) and no intermediate exceeds 256 bits.
func MulScaleDivUp(a, b *big.Int, scale uint64, c *big.Int) (*big.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 || c.Sign() < 0 {
		return nil, ErrInvalidInput
	}
	if c.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if c.BitLen() > 192 {
		return nil, ErrOverflow
	}
	x, y, d, err := wide3(a, b, c)
	if err != nil {
		return nil, err
	}
	s := uint256.NewInt(scale)

	prod := new(uint256.Int).Mul(x, y)
	q := new(uint256.Int).Div(prod, d)
	r := new(uint256.Int).Mod(prod, d)

	hi, overflow := new(uint256.Int).MulOverflow(q, s)
	if overflow {
		return nil, ErrOverflow
	}
	// r < c < 2^192 and scale < 2^64.
	lo := new(uint256.Int).Mul(r, s)
	loQ := new(uint256.Int).Div(lo, d)
	if !new(uint256.Int).Mod(lo, d).IsZero() {
		loQ.AddUint64(loQ, 1)
	}
	sum, overflow := new(uint256.Int).AddOverflow(hi, loQ)
	if overflow {
		return nil, ErrOverflow
	}

	result := sum.ToBig()
	if result.Cmp(MaxInt128) > 0 {
		return nil, ErrOverflow
	}
	return result, nil
}
