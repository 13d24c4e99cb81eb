// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"time"

	"github.com/luxfi/cache/lru"

	"github.com/luxfi/amm/utils/timer/mockable"
)

var _ TTLExtender = (*TTLTracker)(nil)

// TTLTracker records the expiry of recently renewed keys. It stands in for a
// host storage-rent mechanism and only remembers the most recent size keys.
type TTLTracker struct {
	clock  *mockable.Clock
	ttl    time.Duration
	expiry *lru.Cache[string, time.Time]
}

// NewTTLTracker returns a tracker that extends keys to now+ttl.
func NewTTLTracker(clock *mockable.Clock, ttl time.Duration, size int) *TTLTracker {
	return &TTLTracker{
		clock:  clock,
		ttl:    ttl,
		expiry: lru.NewCache[string, time.Time](size),
	}
}

func (t *TTLTracker) Extend(key []byte) {
	t.expiry.Put(string(key), t.clock.Time().Add(t.ttl))
}

// ExpiresAt returns when key expires, if it has been renewed recently.
func (t *TTLTracker) ExpiresAt(key []byte) (time.Time, bool) {
	return t.expiry.Get(string(key))
}
