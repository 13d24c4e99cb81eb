// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"sync/atomic"

	"github.com/luxfi/amm/errs"
)

// guard is a non-reentrant lock over one pool. A nested attempt fails
// instead of blocking.
type guard struct {
	locked atomic.Bool
}

func (g *guard) acquire() error {
	if !g.locked.CompareAndSwap(false, true) {
		return errs.ErrReentrancy
	}
	return nil
}

func (g *guard) release() {
	g.locked.Store(false)
}
