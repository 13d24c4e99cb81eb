// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"context"
	"math/big"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/state"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State) {
	t.Helper()
	s := state.New(memdb.New(), nil)
	return NewLedger(s), s
}

func TestLedgerResolve(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	id := ids.GenerateTestID()

	_, err := l.Asset(id)
	require.ErrorIs(err, errs.ErrInvalidToken)

	require.NoError(l.Register(id))
	a, err := l.Asset(id)
	require.NoError(err)
	require.Equal(id, a.ID())
}

func TestLedgerTransfer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l, _ := newTestLedger(t)
	id := ids.GenerateTestID()
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(l.Register(id))
	require.NoError(l.Mint(id, alice, big.NewInt(1_000)))

	a, err := l.Asset(id)
	require.NoError(err)
	require.NoError(a.Transfer(ctx, alice, bob, big.NewInt(400)))

	balance, err := a.BalanceOf(ctx, alice)
	require.NoError(err)
	require.Equal(int64(600), balance.Int64())

	balance, err = a.BalanceOf(ctx, bob)
	require.NoError(err)
	require.Equal(int64(400), balance.Int64())

	err = a.Transfer(ctx, bob, alice, big.NewInt(401))
	require.ErrorIs(err, errs.ErrInsufficientBalance)

	err = a.Transfer(ctx, bob, alice, big.NewInt(-1))
	require.ErrorIs(err, errs.ErrInvalidAmount)

	// Zero and self transfers are no-ops.
	require.NoError(a.Transfer(ctx, bob, alice, big.NewInt(0)))
	require.NoError(a.Transfer(ctx, bob, bob, big.NewInt(400)))
	balance, err = a.BalanceOf(ctx, bob)
	require.NoError(err)
	require.Equal(int64(400), balance.Int64())
}

func TestLedgerMintRejectsNonPositive(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	err := l.Mint(ids.GenerateTestID(), ids.GenerateTestShortID(), big.NewInt(0))
	require.ErrorIs(err, errs.ErrInvalidAmount)
}

func TestLedgerRollsBackWithState(t *testing.T) {
	require := require.New(t)

	l, s := newTestLedger(t)
	id := ids.GenerateTestID()
	alice := ids.GenerateTestShortID()

	require.NoError(l.Register(id))
	require.NoError(l.Mint(id, alice, big.NewInt(10)))
	require.NoError(s.Commit())

	require.NoError(l.Mint(id, alice, big.NewInt(5)))
	s.Abort()

	balance, err := l.BalanceOf(id, alice)
	require.NoError(err)
	require.Equal(int64(10), balance.Int64())
}
