// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/config"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/timer/mockable"
)

var funding = big.NewInt(1_000_000_000_000)

type recordingExtender struct {
	keys map[string]int
}

func (r *recordingExtender) Extend(key []byte) {
	r.keys[string(key)]++
}

type testEnv struct {
	state   *state.State
	ledger  *asset.Ledger
	pool    *Pool
	sink    *Recorder
	clock   *mockable.Clock
	factory ids.ShortID
	asset0  ids.ID
	asset1  ids.ID
	alice   ids.ShortID
	bob     ids.ShortID
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, config.DefaultConfig(), nil)
}

func newTestEnvWith(t *testing.T, params config.Config, ttl state.TTLExtender) *testEnv {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	s := state.New(memdb.New(), ttl)
	ledger := asset.NewLedger(s)

	env := &testEnv{
		state:   s,
		ledger:  ledger,
		sink:    &Recorder{},
		clock:   &mockable.Clock{},
		factory: ids.GenerateTestShortID(),
		asset0:  ids.GenerateTestID(),
		asset1:  ids.GenerateTestID(),
		alice:   ids.GenerateTestShortID(),
		bob:     ids.GenerateTestShortID(),
	}
	if env.asset0.Compare(env.asset1) > 0 {
		env.asset0, env.asset1 = env.asset1, env.asset0
	}
	env.clock.Set(time.Unix(1_000, 0))

	for _, id := range []ids.ID{env.asset0, env.asset1} {
		require.NoError(ledger.Register(id))
		for _, account := range []ids.ShortID{env.alice, env.bob} {
			require.NoError(ledger.Mint(id, account, funding))
		}
	}
	require.NoError(s.Commit())

	env.pool = New(Config{
		ID:      ids.GenerateTestID(),
		Account: ids.GenerateTestShortID(),
		State:   s,
		Assets:  ledger,
		Params:  params,
		Clock:   env.clock,
		Sink:    env.sink,
	})
	require.NoError(env.pool.Create(ctx, env.factory, env.asset1, env.asset0))
	return env
}

// seed makes the first deposit of (amount0, amount1) from bob.
func (e *testEnv) seed(t *testing.T, amount0, amount1 int64) {
	t.Helper()
	_, err := e.pool.Deposit(context.Background(), e.bob, big.NewInt(amount0), big.NewInt(amount1), big.NewInt(0), big.NewInt(0))
	require.NoError(t, err)
	e.sink.Reset()
}

// donate moves amount of id from from to the pool's account outside of any
// pool call.
func (e *testEnv) donate(t *testing.T, id ids.ID, from ids.ShortID, amount int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.state.Atomic(ctx, func(context.Context) error {
		return e.ledger.Transfer(id, from, e.pool.Account(), big.NewInt(amount))
	}))
}

func (e *testEnv) assetBalance(t *testing.T, id ids.ID, account ids.ShortID) *big.Int {
	t.Helper()
	balance, err := e.ledger.BalanceOf(id, account)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) requireReserves(t *testing.T, reserve0, reserve1 int64) {
	t.Helper()
	ctx := context.Background()
	r0, r1, err := e.pool.Reserves(ctx)
	require.NoError(t, err)
	require.Equal(t, reserve0, r0.Int64(), "reserve0")
	require.Equal(t, reserve1, r1.Int64(), "reserve1")
}

// requireShareSupply checks that the known holders own every share.
func (e *testEnv) requireShareSupply(t *testing.T) {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	sum := new(big.Int)
	for _, owner := range []ids.ShortID{e.alice, e.bob, e.pool.Account()} {
		balance, err := e.pool.BalanceOf(ctx, owner)
		require.NoError(err)
		sum.Add(sum, balance)
	}
	total, err := e.pool.TotalShares(ctx)
	require.NoError(err)
	require.Zero(total.Cmp(sum), "total %s, balances %s", total, sum)
}

func (e *testEnv) k(t *testing.T) *big.Int {
	t.Helper()
	ctx := context.Background()
	r0, r1, err := e.pool.Reserves(ctx)
	require.NoError(t, err)
	return new(big.Int).Mul(r0, r1)
}
