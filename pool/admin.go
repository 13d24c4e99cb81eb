// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/formula"
	"github.com/luxfi/amm/utils/math"
)

// Create initializes the pool for the pair (assetA, assetB), in either order.
// factory becomes the only account allowed to administer the pool.
func (p *Pool) Create(ctx context.Context, factory ids.ShortID, assetA, assetB ids.ID) error {
	return p.CreateWith(ctx, factory, assetA, assetB, nil)
}

// CreateWith is Create with register run inside the same transaction, after
// the pool's own writes. If register fails the pool stays uninitialized.
func (p *Pool) CreateWith(
	ctx context.Context,
	factory ids.ShortID,
	assetA, assetB ids.ID,
	register func(context.Context) error,
) error {
	if assetA == assetB {
		return fmt.Errorf("%w: %s", errs.ErrSameToken, assetA)
	}
	asset0, asset1 := assetA, assetB
	if asset0.Compare(asset1) > 0 {
		asset0, asset1 = asset1, asset0
	}

	err := p.execute(ctx, opCreate, uninitialized, func(ctx context.Context, _ *instance) error {
		for _, id := range []ids.ID{asset0, asset1} {
			if _, err := p.assets.Asset(id); err != nil {
				return err
			}
		}

		inst := &instance{
			asset0:  asset0,
			asset1:  asset1,
			factory: factory,
			feeBps:  p.params.DefaultFeeBps,
		}
		if err := p.putInstance(inst); err != nil {
			return err
		}
		zero := new(big.Int)
		if err := p.putReserves(inst, zero, zero); err != nil {
			return err
		}
		if register == nil {
			return nil
		}
		return register(ctx)
	})
	if err != nil {
		return err
	}

	p.log.Info("created pool",
		log.Stringer("pool", p.id),
		log.Stringer("asset0", asset0),
		log.Stringer("asset1", asset1),
		log.Uint32("feeBps", p.params.DefaultFeeBps),
	)
	return nil
}

// Sync sets the tracked reserves to the pool's actual balances.
func (p *Pool) Sync(ctx context.Context, caller ids.ShortID) error {
	var synced Sync
	err := p.execute(ctx, opSync, active, func(ctx context.Context, inst *instance) error {
		if err := inst.requireFactory(caller); err != nil {
			return err
		}
		asset0, asset1, err := p.resolve(inst)
		if err != nil {
			return err
		}
		balance0, balance1, err := p.balances(ctx, asset0, asset1)
		if err != nil {
			return err
		}
		if err := p.putReserves(inst, balance0, balance1); err != nil {
			return err
		}

		synced = Sync{Reserve0: balance0, Reserve1: balance1}
		p.emit(synced)
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Info("synced reserves",
		log.Stringer("pool", p.id),
		log.Stringer("reserve0", synced.Reserve0),
		log.Stringer("reserve1", synced.Reserve1),
	)
	return nil
}

// Skim sends the pool's balances in excess of its reserves to to. Reserves
// and shares are unchanged.
func (p *Pool) Skim(ctx context.Context, caller, to ids.ShortID) (*big.Int, *big.Int, error) {
	var excess0, excess1 *big.Int
	err := p.execute(ctx, opSkim, active, func(ctx context.Context, inst *instance) error {
		if err := inst.requireFactory(caller); err != nil {
			return err
		}
		asset0, asset1, err := p.resolve(inst)
		if err != nil {
			return err
		}
		balance0, balance1, err := p.balances(ctx, asset0, asset1)
		if err != nil {
			return err
		}
		reserve0, reserve1, err := p.getReserves()
		if err != nil {
			return err
		}

		excess0, err = surplus(balance0, reserve0)
		if err != nil {
			return err
		}
		excess1, err = surplus(balance1, reserve1)
		if err != nil {
			return err
		}
		if err := asset0.Transfer(ctx, p.account, to, excess0); err != nil {
			return err
		}
		if err := asset1.Transfer(ctx, p.account, to, excess1); err != nil {
			return err
		}

		p.emit(Skim{To: to, Amount0: excess0, Amount1: excess1})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.Info("skimmed excess balances",
		log.Stringer("pool", p.id),
		log.Stringer("to", to),
		log.Stringer("amount0", excess0),
		log.Stringer("amount1", excess1),
	)
	return excess0, excess1, nil
}

// surplus returns max(balance - reserve, 0).
func surplus(balance, reserve *big.Int) (*big.Int, error) {
	diff, err := math.Sub128(balance, reserve)
	if err != nil {
		return nil, err
	}
	if diff.Sign() < 0 {
		return new(big.Int), nil
	}
	return diff, nil
}

// SetPaused turns the pool's kill switch on or off.
func (p *Pool) SetPaused(ctx context.Context, caller ids.ShortID, paused bool) error {
	err := p.execute(ctx, opSetPaused, initialized, func(_ context.Context, inst *instance) error {
		if err := inst.requireFactory(caller); err != nil {
			return err
		}
		inst.paused = paused
		return p.putInstance(inst)
	})
	if err != nil {
		return err
	}

	p.log.Info("set pool pause state",
		log.Stringer("pool", p.id),
		log.Bool("paused", paused),
	)
	return nil
}

// SetFee changes the swap fee.
func (p *Pool) SetFee(ctx context.Context, caller ids.ShortID, feeBps uint32) error {
	err := p.execute(ctx, opSetFee, initialized, func(_ context.Context, inst *instance) error {
		if err := inst.requireFactory(caller); err != nil {
			return err
		}
		if feeBps >= formula.BpsDenominator {
			return fmt.Errorf("%w: %d bps", errs.ErrInvalidFee, feeBps)
		}
		if feeBps > p.params.MaxFeeBps {
			return fmt.Errorf("%w: %d bps exceeds %d bps", errs.ErrFeeTooHigh, feeBps, p.params.MaxFeeBps)
		}
		inst.feeBps = feeBps
		return p.putInstance(inst)
	})
	if err != nil {
		return err
	}

	p.log.Info("set pool fee",
		log.Stringer("pool", p.id),
		log.Uint32("feeBps", feeBps),
	)
	return nil
}
