// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package share

import (
	"math/big"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/state"
)

var testMetadata = Metadata{
	Name:     "Lux AMM LP Token",
	Symbol:   "LUX-LP",
	Decimals: 7,
}

type eventLog struct {
	events []Event
}

func (e *eventLog) record(ev Event) {
	e.events = append(e.events, ev)
}

func newTestLedger(t *testing.T) (*Ledger, *eventLog) {
	t.Helper()
	s := state.New(memdb.New(), nil)
	log := &eventLog{}
	return New(s.Store([]byte("share:")), testMetadata, log.record), log
}

func requireBalance(t *testing.T, l *Ledger, owner ids.ShortID, want int64) {
	t.Helper()
	balance, err := l.BalanceOf(owner)
	require.NoError(t, err)
	require.Equal(t, want, balance.Int64())
}

func TestMetadata(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	require.Equal("Lux AMM LP Token", l.Name())
	require.Equal("LUX-LP", l.Symbol())
	require.Equal(uint8(7), l.Decimals())
}

func TestMintBurn(t *testing.T) {
	require := require.New(t)

	l, log := newTestLedger(t)
	alice := ids.GenerateTestShortID()

	require.NoError(l.Mint(alice, big.NewInt(500)))
	requireBalance(t, l, alice, 500)

	require.NoError(l.Burn(alice, big.NewInt(200)))
	requireBalance(t, l, alice, 300)

	total, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(int64(300), total.Int64())

	err = l.Burn(alice, big.NewInt(301))
	require.ErrorIs(err, errs.ErrInsufficientBalance)

	require.ErrorIs(l.Mint(alice, big.NewInt(0)), errs.ErrInvalidAmount)
	require.ErrorIs(l.Burn(alice, big.NewInt(-1)), errs.ErrInvalidAmount)

	require.Equal([]Event{
		Mint{To: alice, Amount: big.NewInt(500)},
		Burn{From: alice, Amount: big.NewInt(200)},
	}, log.events)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(l.Mint(alice, big.NewInt(100)))
	require.NoError(l.Transfer(alice, bob, big.NewInt(60)))
	requireBalance(t, l, alice, 40)
	requireBalance(t, l, bob, 60)

	err := l.Transfer(alice, bob, big.NewInt(41))
	require.ErrorIs(err, errs.ErrInsufficientBalance)
	requireBalance(t, l, alice, 40)

	require.ErrorIs(l.Transfer(alice, bob, big.NewInt(0)), errs.ErrInvalidAmount)

	// Sending to yourself leaves the balance unchanged.
	require.NoError(l.Transfer(bob, bob, big.NewInt(60)))
	requireBalance(t, l, bob, 60)
}

func TestTransferFrom(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	owner := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()
	to := ids.GenerateTestShortID()

	require.NoError(l.Mint(owner, big.NewInt(100)))

	err := l.TransferFrom(spender, owner, to, big.NewInt(1))
	require.ErrorIs(err, errs.ErrInsufficientAllowance)

	require.NoError(l.Approve(owner, spender, big.NewInt(150)))
	require.NoError(l.TransferFrom(spender, owner, to, big.NewInt(70)))
	requireBalance(t, l, owner, 30)
	requireBalance(t, l, to, 70)

	allowance, err := l.Allowance(owner, spender)
	require.NoError(err)
	require.Equal(int64(80), allowance.Int64())

	// Allowance is sufficient but the balance is not.
	err = l.TransferFrom(spender, owner, to, big.NewInt(31))
	require.ErrorIs(err, errs.ErrInsufficientBalance)
}

func TestApprove(t *testing.T) {
	require := require.New(t)

	l, log := newTestLedger(t)
	owner := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()

	require.ErrorIs(l.Approve(owner, spender, big.NewInt(-1)), errs.ErrInvalidAmount)
	require.NoError(l.Approve(owner, spender, big.NewInt(10)))
	require.NoError(l.Approve(owner, spender, big.NewInt(0)))

	allowance, err := l.Allowance(owner, spender)
	require.NoError(err)
	require.Zero(allowance.Sign())
	require.Len(log.events, 2)
}

func TestBurnFrom(t *testing.T) {
	require := require.New(t)

	l, _ := newTestLedger(t)
	owner := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()

	require.NoError(l.Mint(owner, big.NewInt(100)))
	require.ErrorIs(l.BurnFrom(spender, owner, big.NewInt(10)), errs.ErrInsufficientAllowance)

	require.NoError(l.Approve(owner, spender, big.NewInt(10)))
	require.NoError(l.BurnFrom(spender, owner, big.NewInt(10)))
	requireBalance(t, l, owner, 90)

	total, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(int64(90), total.Int64())
}
