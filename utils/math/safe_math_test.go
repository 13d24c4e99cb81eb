// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxUint(t *testing.T) {
	require := require.New(t)

	require.Equal(uint(math.MaxUint), MaxUint[uint]())
	require.Equal(uint16(math.MaxUint16), MaxUint[uint16]())
	require.Equal(uint32(math.MaxUint32), MaxUint[uint32]())
	require.Equal(uint64(math.MaxUint64), MaxUint[uint64]())
}

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add(uint64(10), 5)
	require.NoError(err)
	require.Equal(uint64(15), sum)

	_, err = Add(uint64(math.MaxUint64), 1)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	got, err := Sub(uint32(10_000), 30)
	require.NoError(err)
	require.Equal(uint32(9_970), got)

	_, err = Sub(uint32(30), 10_000)
	require.ErrorIs(err, ErrUnderflow)
}
