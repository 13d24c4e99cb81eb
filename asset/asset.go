// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset defines the fungible-asset transfer capability a pool moves
// its reserves through, and a database-backed implementation of it.
package asset

import (
	"context"
	"math/big"

	"github.com/luxfi/ids"
)

// Asset moves balances of a single fungible asset. A pool never mints or
// burns an underlying asset; it only transfers it.
type Asset interface {
	ID() ids.ID
	Transfer(ctx context.Context, from, to ids.ShortID, amount *big.Int) error
	BalanceOf(ctx context.Context, account ids.ShortID) (*big.Int, error)
}

// Resolver returns the transfer capability for an asset ID.
type Resolver interface {
	Asset(id ids.ID) (Asset, error)
}
