// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package factory creates and administers one pool per asset pair.
package factory

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/btree"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/config"
	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/metrics"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/math"
	"github.com/luxfi/amm/utils/timer/mockable"
	"github.com/luxfi/amm/utils/wrappers"
)

const defaultTreeDegree = 2

var (
	prefixFactory = []byte("factory:")

	keyPairCount = []byte("count")
	prefixPair   = byte('p')
)

// Config holds the dependencies of a factory.
type Config struct {
	// Account is the identity pools authorize for privileged calls.
	Account ids.ShortID
	// Admin is the only caller allowed to use the relayed admin operations.
	Admin  ids.ShortID
	State  *state.State
	Assets asset.Resolver
	Params config.Config

	// Optional
	Clock   *mockable.Clock
	Log     log.Logger
	Metrics *metrics.Metrics
	Sink    pool.EventSink
}

// Pair is a canonically ordered asset pair and the pool that trades it.
type Pair struct {
	Asset0 ids.ID
	Asset1 ids.ID
	PoolID ids.ID
}

// Less orders pairs by asset0, then asset1.
func (p Pair) Less(o Pair) bool {
	if c := p.Asset0.Compare(o.Asset0); c != 0 {
		return c < 0
	}
	return p.Asset1.Compare(o.Asset1) < 0
}

// Factory is the registry of pools.
type Factory struct {
	config Config
	store  *state.Store

	mu    sync.RWMutex
	index *btree.BTreeG[Pair]
	order []ids.ID
	pools map[ids.ID]*pool.Pool
}

// New returns a factory and loads the pairs it created earlier.
func New(c Config) (*Factory, error) {
	if c.Clock == nil {
		c.Clock = &mockable.Clock{}
	}
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}
	if err := c.Params.Verify(); err != nil {
		return nil, err
	}

	f := &Factory{
		config: c,
		store:  c.State.Store(prefixFactory),
		index:  btree.NewG(defaultTreeDegree, Pair.Less),
		pools:  make(map[ids.ID]*pool.Pool),
	}
	if err := c.State.Read(context.Background(), f.load); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Factory) load() error {
	count, err := f.pairCount()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		b, err := f.store.Get(pairKey(i))
		if err != nil {
			return fmt.Errorf("failed to load pair %d: %w", i, err)
		}
		pair, err := parsePair(b)
		if err != nil {
			return err
		}
		f.add(pair, f.newPool(pair.PoolID))
	}
	f.config.Log.Debug("loaded pairs", log.Uint64("count", count))
	return nil
}

func (f *Factory) pairCount() (uint64, error) {
	b, err := f.store.Get(keyPairCount)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(b) != wrappers.LongLen {
		return 0, state.ErrStateCorrupted
	}
	p := wrappers.Packer{Bytes: b}
	return p.UnpackLong(), p.Err
}

func (f *Factory) newPool(poolID ids.ID) *pool.Pool {
	return pool.New(pool.Config{
		ID:      poolID,
		Account: PoolAccount(poolID),
		State:   f.config.State,
		Assets:  f.config.Assets,
		Params:  f.config.Params,
		Clock:   f.config.Clock,
		Log:     f.config.Log,
		Metrics: f.config.Metrics,
		Sink:    f.config.Sink,
	})
}

func (f *Factory) add(pair Pair, p *pool.Pool) {
	f.index.ReplaceOrInsert(pair)
	f.order = append(f.order, pair.PoolID)
	f.pools[pair.PoolID] = p
}

// Sort returns the pair in canonical order.
func Sort(assetA, assetB ids.ID) (ids.ID, ids.ID) {
	if assetA.Compare(assetB) > 0 {
		return assetB, assetA
	}
	return assetA, assetB
}

// PoolID returns the deterministic ID of the pool for a canonical pair.
func PoolID(asset0, asset1 ids.ID) ids.ID {
	b := make([]byte, 0, len(asset0)+len(asset1))
	b = append(b, asset0[:]...)
	b = append(b, asset1[:]...)
	return ids.ID(hash.ComputeHash256Array(b))
}

// PoolAccount returns the account that holds a pool's assets.
func PoolAccount(poolID ids.ID) ids.ShortID {
	var account ids.ShortID
	copy(account[:], poolID[:])
	return account
}

// CreatePair creates the pool for (assetA, assetB), in either order. The pool
// and its registry entry commit in one transaction.
func (f *Factory) CreatePair(ctx context.Context, assetA, assetB ids.ID) (*pool.Pool, error) {
	if assetA == assetB {
		return nil, fmt.Errorf("%w: %s", errs.ErrSameToken, assetA)
	}
	asset0, asset1 := Sort(assetA, assetB)

	f.mu.Lock()
	defer f.mu.Unlock()

	pair := Pair{Asset0: asset0, Asset1: asset1}
	if f.index.Has(pair) {
		return nil, fmt.Errorf("%w: (%s, %s)", errs.ErrPairExists, asset0, asset1)
	}
	pair.PoolID = PoolID(asset0, asset1)

	var index uint64
	p := f.newPool(pair.PoolID)
	err := p.CreateWith(ctx, f.config.Account, asset0, asset1, func(context.Context) error {
		var err error
		index, err = f.register(pair)
		return err
	})
	if err != nil {
		return nil, err
	}
	f.add(pair, p)

	f.config.Log.Info("created pair",
		log.Stringer("pool", pair.PoolID),
		log.Stringer("asset0", asset0),
		log.Stringer("asset1", asset1),
		log.Uint64("index", index),
	)
	return p, nil
}

// register appends pair to the stored registry and returns its index.
func (f *Factory) register(pair Pair) (uint64, error) {
	index, err := f.pairCount()
	if err != nil {
		return 0, fmt.Errorf("failed to register pair: %w", err)
	}
	count, err := math.Add(index, 1)
	if err != nil {
		return 0, err
	}

	pk := wrappers.Packer{MaxSize: 2 * len(ids.ID{})}
	pk.PackFixedBytes(pair.Asset0[:])
	pk.PackFixedBytes(pair.Asset1[:])
	if pk.Err != nil {
		return 0, pk.Err
	}
	if err := f.store.Put(pairKey(index), pk.Bytes); err != nil {
		return 0, err
	}
	cp := wrappers.Packer{MaxSize: wrappers.LongLen}
	cp.PackLong(count)
	return index, f.store.Put(keyPairCount, cp.Bytes)
}

func pairKey(index uint64) []byte {
	p := wrappers.Packer{MaxSize: wrappers.ByteLen + wrappers.LongLen}
	p.PackByte(prefixPair)
	p.PackLong(index)
	return p.Bytes
}

func parsePair(b []byte) (Pair, error) {
	idLen := len(ids.ID{})
	if len(b) != 2*idLen {
		return Pair{}, state.ErrStateCorrupted
	}
	var pair Pair
	p := wrappers.Packer{Bytes: b}
	copy(pair.Asset0[:], p.UnpackFixedBytes(idLen))
	copy(pair.Asset1[:], p.UnpackFixedBytes(idLen))
	pair.PoolID = PoolID(pair.Asset0, pair.Asset1)
	return pair, p.Err
}

// GetPair returns the pool for (assetA, assetB), in either order.
func (f *Factory) GetPair(assetA, assetB ids.ID) (*pool.Pool, error) {
	asset0, asset1 := Sort(assetA, assetB)

	f.mu.RLock()
	defer f.mu.RUnlock()

	pair, ok := f.index.Get(Pair{Asset0: asset0, Asset1: asset1})
	if !ok {
		return nil, fmt.Errorf("%w: (%s, %s)", errs.ErrPairNotFound, asset0, asset1)
	}
	return f.pools[pair.PoolID], nil
}

// Pool returns the pool with the given ID.
func (f *Factory) Pool(poolID ids.ID) (*pool.Pool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrPoolNotFound, poolID)
	}
	return p, nil
}

// AllPairs returns the pool IDs in creation order.
func (f *Factory) AllPairs() []ids.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()

	pairs := make([]ids.ID, len(f.order))
	copy(pairs, f.order)
	return pairs
}

// PairAt returns the ID of the index-th pool created.
func (f *Factory) PairAt(index int) (ids.ID, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if index < 0 || index >= len(f.order) {
		return ids.Empty, fmt.Errorf("%w: pair index %d of %d", errs.ErrPairNotFound, index, len(f.order))
	}
	return f.order[index], nil
}

// SortedPairs returns every pair ordered by asset IDs.
func (f *Factory) SortedPairs() []Pair {
	f.mu.RLock()
	defer f.mu.RUnlock()

	pairs := make([]Pair, 0, f.index.Len())
	f.index.Ascend(func(pair Pair) bool {
		pairs = append(pairs, pair)
		return true
	})
	return pairs
}

func (f *Factory) requireAdmin(caller ids.ShortID) error {
	if caller != f.config.Admin {
		return fmt.Errorf("%w: %s is not the factory admin", errs.ErrUnauthorized, caller)
	}
	return nil
}

// SetFee changes the swap fee of a pool.
func (f *Factory) SetFee(ctx context.Context, caller ids.ShortID, poolID ids.ID, feeBps uint32) error {
	p, err := f.adminPool(caller, poolID)
	if err != nil {
		return err
	}
	return p.SetFee(ctx, f.config.Account, feeBps)
}

// SetPaused pauses or unpauses a pool.
func (f *Factory) SetPaused(ctx context.Context, caller ids.ShortID, poolID ids.ID, paused bool) error {
	p, err := f.adminPool(caller, poolID)
	if err != nil {
		return err
	}
	return p.SetPaused(ctx, f.config.Account, paused)
}

// Sync forces a pool's reserves to its balances.
func (f *Factory) Sync(ctx context.Context, caller ids.ShortID, poolID ids.ID) error {
	p, err := f.adminPool(caller, poolID)
	if err != nil {
		return err
	}
	return p.Sync(ctx, f.config.Account)
}

// Skim sends a pool's excess balances to to.
func (f *Factory) Skim(ctx context.Context, caller ids.ShortID, poolID ids.ID, to ids.ShortID) (*big.Int, *big.Int, error) {
	p, err := f.adminPool(caller, poolID)
	if err != nil {
		return nil, nil, err
	}
	return p.Skim(ctx, f.config.Account, to)
}

func (f *Factory) adminPool(caller ids.ShortID, poolID ids.ID) (*pool.Pool, error) {
	if err := f.requireAdmin(caller); err != nil {
		return nil, err
	}
	return f.Pool(poolID)
}
