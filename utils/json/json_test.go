// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package json

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/utils/math"
)

func TestUint32(t *testing.T) {
	require := require.New(t)

	b, err := stdjson.Marshal(Uint32(30))
	require.NoError(err)
	require.Equal(`"30"`, string(b))

	var u Uint32
	require.NoError(stdjson.Unmarshal([]byte(`"1000"`), &u))
	require.Equal(Uint32(1000), u)
	require.NoError(stdjson.Unmarshal([]byte(`25`), &u))
	require.Equal(Uint32(25), u)
	require.Error(stdjson.Unmarshal([]byte(`"4294967296"`), &u))
}

func TestUint64(t *testing.T) {
	require := require.New(t)

	var u Uint64
	require.NoError(stdjson.Unmarshal([]byte(`"18446744073709551615"`), &u))
	require.Equal(Uint64(18446744073709551615), u)
	require.NoError(stdjson.Unmarshal([]byte(Null), &u))
	require.Equal(Uint64(18446744073709551615), u)
}

func TestInt128(t *testing.T) {
	require := require.New(t)

	b, err := stdjson.Marshal(NewInt128(math.MaxInt128))
	require.NoError(err)
	require.Equal(`"170141183460469231731687303715884105727"`, string(b))

	var i Int128
	require.NoError(stdjson.Unmarshal(b, &i))
	require.Zero(math.MaxInt128.Cmp(i.Big()))

	require.NoError(stdjson.Unmarshal([]byte(`-42`), &i))
	require.Equal(int64(-42), i.Big().Int64())

	var zero Int128
	require.Equal("0", zero.String())
	b, err = stdjson.Marshal(zero)
	require.NoError(err)
	require.Equal(`"0"`, string(b))
}

func TestInt128Rejects(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"not a number", `"abc"`, errNotInteger},
		{"decimal", `"1.5"`, errNotInteger},
		{"above max", `"170141183460469231731687303715884105728"`, math.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i Int128
			require.ErrorIs(t, stdjson.Unmarshal([]byte(tt.in), &i), tt.wantErr)
		})
	}
}
