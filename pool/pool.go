// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool implements a two-asset constant-product liquidity pool.
//
// Every mutating entry point runs under a non-reentrant guard and as a single
// transaction of the shared state.State: it either commits all of its writes,
// including the asset transfers made through a database-backed asset.Ledger,
// or none of them. Events are published only after a commit.
//
// Entry points take a context. An asset that calls back into a pool from
// Transfer or BalanceOf must pass on the context it was given: a call into a
// pool that is mid-operation, or any nested mutation, then fails with
// errs.ErrReentrancy, and reads of other pools observe the open transaction.
package pool

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/config"
	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/metrics"
	"github.com/luxfi/amm/share"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/timer/mockable"
)

const (
	opCreate          = "create"
	opDeposit         = "deposit"
	opWithdraw        = "withdraw"
	opSwap            = "swap"
	opSwapFromBalance = "swap_from_balance"
	opSync            = "sync"
	opSkim            = "skim"
	opSetPaused       = "set_paused"
	opSetFee          = "set_fee"
	opTransfer        = "transfer"
	opTransferFrom    = "transfer_from"
	opApprove         = "approve"
	opBurn            = "burn"
	opBurnFrom        = "burn_from"
)

var (
	keyInstance = []byte("instance")
	keyReserve0 = []byte("reserve0")
	keyReserve1 = []byte("reserve1")
	keyKLast    = []byte("kLast")

	prefixPool  = []byte("pool:")
	prefixShare = []byte("share:")
)

// mode is the lifecycle requirement of an entry point.
type mode uint8

const (
	// uninitialized entry points run only before create.
	uninitialized mode = iota
	// active entry points require an initialized, unpaused pool.
	active
	// initialized entry points also run while paused.
	initialized
)

// Config holds the dependencies of a pool.
type Config struct {
	// ID identifies the pool.
	ID ids.ID
	// Account is the pool's own account in the asset ledgers.
	Account ids.ShortID
	State   *state.State
	Assets  asset.Resolver
	Params  config.Config

	// Optional
	Clock   *mockable.Clock
	Log     log.Logger
	Metrics *metrics.Metrics
	Sink    EventSink
}

// PairInfo is a snapshot of a pool.
type PairInfo struct {
	ID          ids.ID      `json:"id"`
	Account     ids.ShortID `json:"account"`
	Asset0      ids.ID      `json:"asset0"`
	Asset1      ids.ID      `json:"asset1"`
	Reserve0    *big.Int    `json:"reserve0"`
	Reserve1    *big.Int    `json:"reserve1"`
	TotalShares *big.Int    `json:"totalShares"`
	FeeBps      uint32      `json:"feeBps"`
	KLast       *big.Int    `json:"kLast"`
	Paused      bool        `json:"paused"`
	Factory     ids.ShortID `json:"factory"`
}

// Pool is a constant-product market for one asset pair.
type Pool struct {
	id      ids.ID
	account ids.ShortID
	state   *state.State
	store   *state.Store
	shares  *share.Ledger
	assets  asset.Resolver
	params  config.Config
	clock   *mockable.Clock
	log     log.Logger
	metrics *metrics.Metrics
	sink    EventSink

	guard guard

	// pending and reserveUpdate belong to the operation holding the guard.
	pending       []Event
	reserveUpdate *reserves
}

type reserves struct {
	asset0, asset1     ids.ID
	reserve0, reserve1 *big.Int
}

// New returns the pool identified by c.ID. The pool is usable once Create has
// committed, either by this value or by an earlier one over the same state.
func New(c Config) *Pool {
	if c.Clock == nil {
		c.Clock = &mockable.Clock{}
	}
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}
	if c.Sink == nil {
		c.Sink = noopSink{}
	}

	p := &Pool{
		id:      c.ID,
		account: c.Account,
		state:   c.State,
		store:   c.State.Store(scopedPrefix(prefixPool, c.ID)),
		assets:  c.Assets,
		params:  c.Params,
		clock:   c.Clock,
		log:     c.Log,
		metrics: c.Metrics,
		sink:    c.Sink,
	}
	p.shares = share.New(
		c.State.Store(scopedPrefix(prefixShare, c.ID)),
		share.Metadata{
			Name:     c.Params.LPName,
			Symbol:   c.Params.LPSymbol,
			Decimals: c.Params.LPDecimals,
		},
		p.emitShareEvent,
	)
	return p
}

func scopedPrefix(prefix []byte, id ids.ID) []byte {
	scoped := make([]byte, 0, len(prefix)+len(id)+1)
	scoped = append(scoped, prefix...)
	scoped = append(scoped, id[:]...)
	return append(scoped, ':')
}

func (p *Pool) ID() ids.ID {
	return p.id
}

// Account is the account that holds the pool's assets.
func (p *Pool) Account() ids.ShortID {
	return p.account
}

// entryKey marks a context handed down by an operation of one pool.
type entryKey struct {
	pool *Pool
}

// execute runs fn as one guarded transaction.
func (p *Pool) execute(ctx context.Context, op string, m mode, fn func(context.Context, *instance) error) error {
	if err := p.guard.acquire(); err != nil {
		p.metrics.Observe(op, err)
		return err
	}
	defer p.guard.release()

	p.pending = nil
	p.reserveUpdate = nil

	ctx = context.WithValue(ctx, entryKey{pool: p}, struct{}{})
	err := p.state.Atomic(ctx, func(ctx context.Context) error {
		inst, err := p.loadInstance()
		switch {
		case m == uninitialized && err == nil:
			return errs.ErrAlreadyInitialized
		case m == uninitialized && errors.Is(err, errs.ErrNotInitialized):
			inst = nil
		case err != nil:
			return err
		case m == active && inst.paused:
			return errs.ErrContractPaused
		}

		if err := fn(ctx, inst); err != nil {
			return err
		}
		p.store.Touch(keyInstance)
		return nil
	})
	p.metrics.Observe(op, err)

	events, update := p.pending, p.reserveUpdate
	p.pending = nil
	p.reserveUpdate = nil

	if err != nil {
		p.log.Debug("pool operation failed",
			log.String("op", op),
			log.Stringer("pool", p.id),
			log.Err(err),
		)
		return err
	}

	if update != nil {
		p.metrics.SetReserve(p.id, update.asset0, update.reserve0)
		p.metrics.SetReserve(p.id, update.asset1, update.reserve1)
	}
	for _, event := range events {
		p.log.Debug("pool event",
			log.String("op", op),
			log.Stringer("pool", p.id),
			log.String("event", event.EventName()),
		)
		p.sink.Publish(p.id, event)
	}
	return nil
}

// read runs fn against the committed state of an initialized pool, or
// against the open transaction ctx was handed down by. The instance TTL is
// renewed on success.
func (p *Pool) read(ctx context.Context, fn func(*instance) error) error {
	if ctx.Value(entryKey{pool: p}) != nil {
		return fmt.Errorf("%w: pool %s is mid-operation", errs.ErrReentrancy, p.id)
	}
	return p.state.Read(ctx, func() error {
		inst, err := p.loadInstance()
		if err != nil {
			return err
		}
		if err := fn(inst); err != nil {
			return err
		}
		p.store.Extend(keyInstance)
		return nil
	})
}

func (p *Pool) emit(event Event) {
	p.pending = append(p.pending, event)
}

func (p *Pool) emitShareEvent(event share.Event) {
	p.emit(event)
}

func (p *Pool) loadInstance() (*instance, error) {
	b, err := p.store.Get(keyInstance)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return parseInstance(b)
}

func (p *Pool) putInstance(inst *instance) error {
	b, err := inst.bytes()
	if err != nil {
		return err
	}
	return p.store.Put(keyInstance, b)
}

func (p *Pool) getReserves() (*big.Int, *big.Int, error) {
	reserve0, err := p.store.GetInt128(keyReserve0)
	if err != nil {
		return nil, nil, err
	}
	reserve1, err := p.store.GetInt128(keyReserve1)
	if err != nil {
		return nil, nil, err
	}
	return reserve0, reserve1, nil
}

func (p *Pool) putReserves(inst *instance, reserve0, reserve1 *big.Int) error {
	if reserve0.Sign() < 0 || reserve1.Sign() < 0 {
		return fmt.Errorf("%w: reserves (%s, %s)", errs.ErrUnderflow, reserve0, reserve1)
	}
	if err := p.store.PutInt128(keyReserve0, reserve0); err != nil {
		return err
	}
	if err := p.store.PutInt128(keyReserve1, reserve1); err != nil {
		return err
	}
	p.reserveUpdate = &reserves{
		asset0:   inst.asset0,
		asset1:   inst.asset1,
		reserve0: new(big.Int).Set(reserve0),
		reserve1: new(big.Int).Set(reserve1),
	}
	return nil
}

func (p *Pool) putKLast(k *uint256.Int) error {
	return p.store.PutUint256(keyKLast, k)
}

func (p *Pool) resolve(inst *instance) (asset.Asset, asset.Asset, error) {
	asset0, err := p.assets.Asset(inst.asset0)
	if err != nil {
		return nil, nil, err
	}
	asset1, err := p.assets.Asset(inst.asset1)
	if err != nil {
		return nil, nil, err
	}
	return asset0, asset1, nil
}

// balances returns the pool's actual holdings of both assets.
func (p *Pool) balances(ctx context.Context, asset0, asset1 asset.Asset) (*big.Int, *big.Int, error) {
	balance0, err := asset0.BalanceOf(ctx, p.account)
	if err != nil {
		return nil, nil, err
	}
	balance1, err := asset1.BalanceOf(ctx, p.account)
	if err != nil {
		return nil, nil, err
	}
	return balance0, balance1, nil
}

// Info returns a snapshot of the pool.
func (p *Pool) Info(ctx context.Context) (*PairInfo, error) {
	var info *PairInfo
	err := p.read(ctx, func(inst *instance) error {
		reserve0, reserve1, err := p.getReserves()
		if err != nil {
			return err
		}
		total, err := p.shares.TotalSupply()
		if err != nil {
			return err
		}
		kLast, err := p.store.GetUint256(keyKLast)
		if err != nil {
			return err
		}
		info = &PairInfo{
			ID:          p.id,
			Account:     p.account,
			Asset0:      inst.asset0,
			Asset1:      inst.asset1,
			Reserve0:    reserve0,
			Reserve1:    reserve1,
			TotalShares: total,
			FeeBps:      inst.feeBps,
			KLast:       kLast.ToBig(),
			Paused:      inst.paused,
			Factory:     inst.factory,
		}
		return nil
	})
	return info, err
}

// Reserves returns the tracked reserves.
func (p *Pool) Reserves(ctx context.Context) (*big.Int, *big.Int, error) {
	var reserve0, reserve1 *big.Int
	err := p.read(ctx, func(*instance) error {
		var err error
		reserve0, reserve1, err = p.getReserves()
		return err
	})
	return reserve0, reserve1, err
}

// Assets returns the canonically ordered pair.
func (p *Pool) Assets(ctx context.Context) (ids.ID, ids.ID, error) {
	var asset0, asset1 ids.ID
	err := p.read(ctx, func(inst *instance) error {
		asset0, asset1 = inst.asset0, inst.asset1
		return nil
	})
	return asset0, asset1, err
}

// FeeBps returns the swap fee.
func (p *Pool) FeeBps(ctx context.Context) (uint32, error) {
	var fee uint32
	err := p.read(ctx, func(inst *instance) error {
		fee = inst.feeBps
		return nil
	})
	return fee, err
}

// Factory returns the account allowed to administer the pool.
func (p *Pool) Factory(ctx context.Context) (ids.ShortID, error) {
	var factory ids.ShortID
	err := p.read(ctx, func(inst *instance) error {
		factory = inst.factory
		return nil
	})
	return factory, err
}

// KLast returns the reserve product recorded by the last deposit or
// withdrawal.
func (p *Pool) KLast(ctx context.Context) (*uint256.Int, error) {
	var k *uint256.Int
	err := p.read(ctx, func(*instance) error {
		var err error
		k, err = p.store.GetUint256(keyKLast)
		return err
	})
	return k, err
}

func (p *Pool) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := p.read(ctx, func(inst *instance) error {
		paused = inst.paused
		return nil
	})
	return paused, err
}
