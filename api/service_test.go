// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/config"
	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/factory"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/json"
)

type testEnv struct {
	t       *testing.T
	handler http.Handler
	admin   ids.ShortID
	alice   ids.ShortID
	bob     ids.ShortID
	assetA  ids.ID
	assetB  ids.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require := require.New(t)

	s := state.New(memdb.New(), nil)
	ledger := asset.NewLedger(s)
	admin := ids.GenerateTestShortID()
	f, err := factory.New(factory.Config{
		Account: ids.GenerateTestShortID(),
		Admin:   admin,
		State:   s,
		Assets:  ledger,
		Params:  config.DefaultConfig(),
	})
	require.NoError(err)

	handler, err := NewHandler(NewService(nil, f, s, ledger))
	require.NoError(err)

	env := &testEnv{
		t:       t,
		handler: handler,
		admin:   admin,
		alice:   ids.GenerateTestShortID(),
		bob:     ids.GenerateTestShortID(),
		assetA:  ids.GenerateTestID(),
		assetB:  ids.GenerateTestID(),
	}
	for _, id := range []ids.ID{env.assetA, env.assetB} {
		require.NoError(env.call("amm.registerAsset", &AssetArgs{AssetID: id}, &EmptyReply{}))
		require.NoError(env.call("amm.mintAsset", &AssetArgs{
			AssetID: id,
			Account: env.alice,
			Amount:  json.Int128FromInt64(1_000_000),
		}, &EmptyReply{}))
	}
	return env
}

func (e *testEnv) call(method string, args, reply any) error {
	e.t.Helper()

	body, err := json2.EncodeClientRequest(method, args)
	require.NoError(e.t, err)

	req := httptest.NewRequest(http.MethodPost, "/ext/amm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return json2.DecodeClientResponse(w.Body, reply)
}

func (e *testEnv) createPair() *PairReply {
	e.t.Helper()

	reply := &PairReply{}
	require.NoError(e.t, e.call("amm.createPair", &PairArgs{AssetA: e.assetB, AssetB: e.assetA}, reply))
	return reply
}

func (e *testEnv) deposit(pair *PairReply, amount0, amount1 int64) *DepositReply {
	e.t.Helper()

	reply := &DepositReply{}
	require.NoError(e.t, e.call("amm.deposit", &DepositArgs{
		PoolID:         pair.PoolID,
		Caller:         e.alice,
		Amount0Desired: json.Int128FromInt64(amount0),
		Amount1Desired: json.Int128FromInt64(amount1),
	}, reply))
	return reply
}

func requireCode(t *testing.T, err error, code errs.Code) {
	t.Helper()
	require := require.New(t)

	var rpcErr *json2.Error
	require.ErrorAs(err, &rpcErr)
	require.Equal(json2.E_SERVER, rpcErr.Code)
	require.Equal(float64(code), rpcErr.Data)
	require.Contains(rpcErr.Message, errs.Format(errs.New(code, "")))
}

func TestCreateAndGetPair(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	created := env.createPair()

	asset0, asset1 := factory.Sort(env.assetA, env.assetB)
	require.Equal(asset0, created.Asset0)
	require.Equal(asset1, created.Asset1)
	require.Equal(factory.PoolID(asset0, asset1), created.PoolID)
	require.Equal(factory.PoolAccount(created.PoolID), created.Account)

	found := &PairReply{}
	require.NoError(env.call("amm.getPair", &PairArgs{AssetA: env.assetA, AssetB: env.assetB}, found))
	require.Equal(created, found)

	list := &ListPairsReply{}
	require.NoError(env.call("amm.listPairs", struct{}{}, list))
	require.Equal([]ids.ID{created.PoolID}, list.PoolIDs)

	err := env.call("amm.createPair", &PairArgs{AssetA: env.assetA, AssetB: env.assetB}, &PairReply{})
	requireCode(t, err, errs.CodePairExists)

	err = env.call("amm.createPair", &PairArgs{AssetA: env.assetA, AssetB: env.assetA}, &PairReply{})
	requireCode(t, err, errs.CodeSameToken)
}

func TestDepositSwapWithdraw(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	pair := env.createPair()

	deposited := env.deposit(pair, 10_000, 10_000)
	require.Equal("10000", deposited.Amount0.String())
	require.Equal("10000", deposited.Amount1.String())
	require.Equal("9000", deposited.Shares.String())

	quote := &AmountReply{}
	require.NoError(env.call("amm.getAmountOut", &QuoteArgs{
		PoolID: pair.PoolID,
		Token:  pair.Asset0,
		Amount: json.Int128FromInt64(1_000),
	}, quote))
	require.Equal("906", quote.Amount.String())

	swapped := &SwapReply{}
	require.NoError(env.call("amm.swap", &SwapArgs{
		PoolID:   pair.PoolID,
		Caller:   env.alice,
		TokenIn:  pair.Asset0,
		AmountIn: json.Int128FromInt64(1_000),
		MinOut:   json.Int128FromInt64(900),
	}, swapped))
	require.Equal("1000", swapped.AmountIn.String())
	require.Equal("906", swapped.AmountOut.String())

	reserves := &ReservesReply{}
	require.NoError(env.call("amm.getReserves", &PoolArgs{PoolID: pair.PoolID}, reserves))
	require.Equal("11000", reserves.Reserve0.String())
	require.Equal("9094", reserves.Reserve1.String())

	info := &InfoReply{}
	require.NoError(env.call("amm.getInfo", &PoolArgs{PoolID: pair.PoolID}, info))
	require.Equal(pair.PoolID, info.PoolID)
	require.Equal("10000", info.TotalShares.String())
	require.Equal(json.Uint32(config.DefaultConfig().DefaultFeeBps), info.FeeBps)
	require.Equal("100000000", info.KLast)
	require.False(info.Paused)

	balance := &AmountReply{}
	require.NoError(env.call("amm.assetBalance", &AssetArgs{AssetID: pair.Asset1, Account: env.alice}, balance))
	require.Equal("990906", balance.Amount.String())

	withdrawn := &AmountsReply{}
	require.NoError(env.call("amm.withdraw", &WithdrawArgs{
		PoolID: pair.PoolID,
		Caller: env.alice,
		Shares: json.Int128FromInt64(9_000),
	}, withdrawn))
	require.Equal("9900", withdrawn.Amount0.String())
	require.Equal("8184", withdrawn.Amount1.String())

	supply := &AmountReply{}
	require.NoError(env.call("amm.totalShares", &PoolArgs{PoolID: pair.PoolID}, supply))
	require.Equal("1000", supply.Amount.String())
}

func TestSwapRejectsSlippage(t *testing.T) {
	env := newTestEnv(t)
	pair := env.createPair()
	env.deposit(pair, 10_000, 10_000)

	err := env.call("amm.swap", &SwapArgs{
		PoolID:   pair.PoolID,
		Caller:   env.alice,
		TokenIn:  pair.Asset0,
		AmountIn: json.Int128FromInt64(1_000),
		MinOut:   json.Int128FromInt64(907),
	}, &SwapReply{})
	requireCode(t, err, errs.CodeSlippageExceeded)
}

func TestShareMethods(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	pair := env.createPair()
	env.deposit(pair, 10_000, 10_000)

	require.NoError(env.call("amm.transfer", &ShareTransferArgs{
		PoolID: pair.PoolID,
		Caller: env.alice,
		To:     env.bob,
		Amount: json.Int128FromInt64(1_000),
	}, &EmptyReply{}))
	require.NoError(env.call("amm.approve", &ShareTransferArgs{
		PoolID: pair.PoolID,
		Caller: env.alice,
		To:     env.bob,
		Amount: json.Int128FromInt64(500),
	}, &EmptyReply{}))
	require.NoError(env.call("amm.transferFrom", &ShareTransferArgs{
		PoolID: pair.PoolID,
		Caller: env.bob,
		From:   env.alice,
		To:     env.bob,
		Amount: json.Int128FromInt64(200),
	}, &EmptyReply{}))

	allowance := &AmountReply{}
	require.NoError(env.call("amm.allowance", &AllowanceArgs{PoolID: pair.PoolID, Owner: env.alice, Spender: env.bob}, allowance))
	require.Equal("300", allowance.Amount.String())

	balance := &AmountReply{}
	require.NoError(env.call("amm.balanceOf", &OwnerArgs{PoolID: pair.PoolID, Owner: env.bob}, balance))
	require.Equal("1200", balance.Amount.String())

	err := env.call("amm.transfer", &ShareTransferArgs{
		PoolID: pair.PoolID,
		Caller: env.bob,
		To:     env.alice,
		Amount: json.Int128FromInt64(5_000),
	}, &EmptyReply{})
	requireCode(t, err, errs.CodeInsufficientBalance)
}

func TestAdminMethods(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	pair := env.createPair()

	err := env.call("amm.setFee", &AdminArgs{PoolID: pair.PoolID, Caller: env.alice, FeeBps: 50}, &EmptyReply{})
	requireCode(t, err, errs.CodeUnauthorized)

	require.NoError(env.call("amm.setFee", &AdminArgs{PoolID: pair.PoolID, Caller: env.admin, FeeBps: 50}, &EmptyReply{}))
	require.NoError(env.call("amm.setPaused", &AdminArgs{PoolID: pair.PoolID, Caller: env.admin, Paused: true}, &EmptyReply{}))

	info := &InfoReply{}
	require.NoError(env.call("amm.getInfo", &PoolArgs{PoolID: pair.PoolID}, info))
	require.Equal(json.Uint32(50), info.FeeBps)
	require.True(info.Paused)

	err = env.call("amm.deposit", &DepositArgs{
		PoolID:         pair.PoolID,
		Caller:         env.alice,
		Amount0Desired: json.Int128FromInt64(10_000),
		Amount1Desired: json.Int128FromInt64(10_000),
	}, &DepositReply{})
	requireCode(t, err, errs.CodeContractPaused)
}

func TestUnknownPool(t *testing.T) {
	env := newTestEnv(t)

	err := env.call("amm.getReserves", &PoolArgs{PoolID: ids.GenerateTestID()}, &ReservesReply{})
	requireCode(t, err, errs.CodePoolNotFound)
}

func TestMethodNameCase(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	env.createPair()

	lower := &ListPairsReply{}
	require.NoError(env.call("amm.listPairs", struct{}{}, lower))
	upper := &ListPairsReply{}
	require.NoError(env.call("amm.ListPairs", struct{}{}, upper))
	require.Equal(lower, upper)
}

func TestLedgerMethodsDisabled(t *testing.T) {
	require := require.New(t)

	s := state.New(memdb.New(), nil)
	f, err := factory.New(factory.Config{
		State:  s,
		Assets: asset.NewLedger(s),
		Params: config.DefaultConfig(),
	})
	require.NoError(err)
	handler, err := NewHandler(NewService(nil, f, nil, nil))
	require.NoError(err)

	env := &testEnv{t: t, handler: handler}
	err = env.call("amm.registerAsset", &AssetArgs{AssetID: ids.GenerateTestID()}, &EmptyReply{})

	var rpcErr *json2.Error
	require.ErrorAs(err, &rpcErr)
	require.Contains(rpcErr.Message, errNoLedger.Error())
	require.Nil(rpcErr.Data)
}
