// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer literal " + s)
	}
	return v
}

func TestInt128Bounds(t *testing.T) {
	require := require.New(t)

	require.Equal("170141183460469231731687303715884105727", MaxInt128.String())
	require.Equal("-170141183460469231731687303715884105728", MinInt128.String())
	require.True(InRange128(MaxInt128))
	require.True(InRange128(MinInt128))
	require.False(InRange128(new(big.Int).Add(MaxInt128, one)))
	require.False(InRange128(new(big.Int).Sub(MinInt128, one)))
}

func TestAdd128(t *testing.T) {
	require := require.New(t)

	sum, err := Add128(big.NewInt(7), big.NewInt(-3))
	require.NoError(err)
	require.Equal(int64(4), sum.Int64())

	_, err = Add128(MaxInt128, one)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub128(t *testing.T) {
	require := require.New(t)

	diff, err := Sub128(big.NewInt(3), big.NewInt(7))
	require.NoError(err)
	require.Equal(int64(-4), diff.Int64())

	_, err = Sub128(MinInt128, one)
	require.ErrorIs(err, ErrUnderflow)
}

func TestMul128(t *testing.T) {
	require := require.New(t)

	prod, err := Mul128(big.NewInt(1<<62), big.NewInt(4))
	require.NoError(err)
	require.Equal(new(big.Int).Lsh(one, 64), prod)

	_, err = Mul128(MaxInt128, big.NewInt(2))
	require.ErrorIs(err, ErrOverflow)
}

func TestDiv128(t *testing.T) {
	tests := []struct {
		name    string
		a, b    *big.Int
		want    *big.Int
		wantErr error
	}{
		{"exact", big.NewInt(100), big.NewInt(4), big.NewInt(25), nil},
		{"truncates toward zero", big.NewInt(-7), big.NewInt(2), big.NewInt(-3), nil},
		{"by zero", big.NewInt(1), big.NewInt(0), nil, ErrDivisionByZero},
		{"min by minus one", MinInt128, big.NewInt(-1), nil, ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, err := Div128(tt.a, tt.b)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr == nil {
				require.Zero(tt.want.Cmp(got))
			}
		})
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  *big.Int
		wantDown *big.Int
		wantUp   *big.Int
		wantErr  error
	}{
		{
			name:     "exact",
			a:        big.NewInt(100),
			b:        big.NewInt(30),
			c:        big.NewInt(10),
			wantDown: big.NewInt(300),
			wantUp:   big.NewInt(300),
		},
		{
			name:     "remainder",
			a:        big.NewInt(10),
			b:        big.NewInt(10),
			c:        big.NewInt(3),
			wantDown: big.NewInt(33),
			wantUp:   big.NewInt(34),
		},
		{
			// a*b is far above 2^127 but the quotient fits.
			name:     "phantom overflow",
			a:        MaxInt128,
			b:        MaxInt128,
			c:        MaxInt128,
			wantDown: MaxInt128,
			wantUp:   MaxInt128,
		},
		{
			name:     "phantom overflow with remainder",
			a:        mustBig("100000000000000000000000000000000000000"),
			b:        mustBig("3000000000000000000000"),
			c:        mustBig("7000000000000000000000"),
			wantDown: mustBig("42857142857142857142857142857142857142"),
			wantUp:   mustBig("42857142857142857142857142857142857143"),
		},
		{
			name:     "zero numerator",
			a:        big.NewInt(0),
			b:        MaxInt128,
			c:        big.NewInt(5),
			wantDown: big.NewInt(0),
			wantUp:   big.NewInt(0),
		},
		{
			name:    "result overflows",
			a:       MaxInt128,
			b:       big.NewInt(2),
			c:       big.NewInt(1),
			wantErr: ErrOverflow,
		},
		{
			name:    "division by zero",
			a:       big.NewInt(1),
			b:       big.NewInt(1),
			c:       big.NewInt(0),
			wantErr: ErrDivisionByZero,
		},
		{
			name:    "negative input",
			a:       big.NewInt(-1),
			b:       big.NewInt(1),
			c:       big.NewInt(1),
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative divisor",
			a:       big.NewInt(1),
			b:       big.NewInt(1),
			c:       big.NewInt(-1),
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			down, err := MulDivDown(tt.a, tt.b, tt.c)
			require.ErrorIs(err, tt.wantErr)
			up, upErr := MulDivUp(tt.a, tt.b, tt.c)
			require.ErrorIs(upErr, tt.wantErr)
			if tt.wantErr != nil {
				return
			}
			require.Zero(tt.wantDown.Cmp(down), "down: got %s", down)
			require.Zero(tt.wantUp.Cmp(up), "up: got %s", up)
		})
	}
}

func TestMulDivMatchesExactArithmetic(t *testing.T) {
	require := require.New(t)

	a := mustBig("98765432109876543210987654321098765")
	b := mustBig("12345678901234567890123456789")
	c := mustBig("55555555555555555555555555555")

	exact := new(big.Int).Mul(a, b)
	rem := new(big.Int)
	quo, rem := new(big.Int).QuoRem(exact, c, rem)

	down, err := MulDivDown(a, b, c)
	require.NoError(err)
	require.Zero(quo.Cmp(down))

	up, err := MulDivUp(a, b, c)
	require.NoError(err)
	if rem.Sign() == 0 {
		require.Zero(quo.Cmp(up))
	} else {
		require.Zero(new(big.Int).Add(quo, one).Cmp(up))
	}
}

func TestMulWide(t *testing.T) {
	require := require.New(t)

	k, err := MulWide(MaxInt128, MaxInt128)
	require.NoError(err)
	require.Zero(new(big.Int).Mul(MaxInt128, MaxInt128).Cmp(k.ToBig()))

	_, err = MulWide(big.NewInt(-1), big.NewInt(1))
	require.ErrorIs(err, ErrInvalidInput)
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in   *big.Int
		want int64
	}{
		{big.NewInt(-5), 0},
		{big.NewInt(0), 0},
		{big.NewInt(1), 1},
		{big.NewInt(3), 1},
		{big.NewInt(4), 2},
		{big.NewInt(15), 3},
		{big.NewInt(16), 4},
		{big.NewInt(1_000_000), 1_000},
		{big.NewInt(1_000_001), 1_000},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			require.Equal(t, tt.want, Sqrt(tt.in).Int64())
		})
	}
}

func TestSqrtLarge(t *testing.T) {
	require := require.New(t)

	for _, v := range []*big.Int{
		MaxInt128,
		mustBig("10000000000000000000000000000"),
		mustBig("99999999999999999999999999999999"),
	} {
		require.Zero(new(big.Int).Sqrt(v).Cmp(Sqrt(v)), v.String())
	}
}

func TestMulScaleDivUp(t *testing.T) {
	tests := []struct {
		name    string
		a, b    *big.Int
		scale   uint64
		c       *big.Int
		wantErr error
	}{
		{"small", big.NewInt(10_000), big.NewInt(906), 10_000, big.NewInt(9_094 * 9_970), nil},
		{"exact", big.NewInt(6), big.NewInt(5), 10, big.NewInt(3), nil},
		{"wide product", MaxInt128, mustBig("1000000000000000000000"), 10_000, mustBig("99999999999999999999999999999999999999"), nil},
		{"zero divisor", big.NewInt(1), big.NewInt(1), 1, big.NewInt(0), ErrDivisionByZero},
		{"negative", big.NewInt(-1), big.NewInt(1), 1, big.NewInt(1), ErrInvalidInput},
		{"result overflows", MaxInt128, MaxInt128, 10_000, big.NewInt(3), ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, err := MulScaleDivUp(tt.a, tt.b, tt.scale, tt.c)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				return
			}

			num := new(big.Int).Mul(tt.a, tt.b)
			num.Mul(num, new(big.Int).SetUint64(tt.scale))
			want, rem := new(big.Int).QuoRem(num, tt.c, new(big.Int))
			if rem.Sign() != 0 {
				want.Add(want, one)
			}
			require.Zero(want.Cmp(got), "got %s want %s", got, want)
		})
	}
}
