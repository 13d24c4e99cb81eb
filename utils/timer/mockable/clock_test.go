// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mockable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockSetAndAdvance(t *testing.T) {
	require := require.New(t)

	var c Clock
	start := time.Unix(1_700_000_000, 0)
	c.Set(start)
	require.Equal(start, c.Time())
	require.Equal(uint64(1_700_000_000), c.Unix())

	c.Advance(90 * time.Second)
	require.Equal(uint64(1_700_000_090), c.Unix())

	c.Sync()
	require.WithinDuration(time.Now(), c.Time(), time.Minute)
}

func TestClockExpired(t *testing.T) {
	require := require.New(t)

	var c Clock
	c.Set(time.Unix(1_000, 0))

	require.False(c.Expired(0))
	require.False(c.Expired(1_000))
	require.False(c.Expired(1_001))
	require.True(c.Expired(999))
}
