// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/formula"
	"github.com/luxfi/amm/utils/math"
)

// leg is one swap direction resolved against the pool's pair.
type leg struct {
	zeroForOne bool
	tokenIn    ids.ID
	tokenOut   ids.ID
	reserveIn  *big.Int
	reserveOut *big.Int
}

func (p *Pool) leg(inst *instance, tokenIn ids.ID) (*leg, error) {
	zeroForOne, err := inst.direction(tokenIn)
	if err != nil {
		return nil, err
	}
	reserve0, reserve1, err := p.getReserves()
	if err != nil {
		return nil, err
	}
	if zeroForOne {
		return &leg{true, inst.asset0, inst.asset1, reserve0, reserve1}, nil
	}
	return &leg{false, inst.asset1, inst.asset0, reserve1, reserve0}, nil
}

// ordered maps in/out amounts back to (asset0, asset1) order.
func (l *leg) ordered(in, out *big.Int) (*big.Int, *big.Int) {
	if l.zeroForOne {
		return in, out
	}
	return out, in
}

// quoteOut returns the output of amountIn and enforces the output and
// price-impact limits.
func (p *Pool) quoteOut(inst *instance, l *leg, amountIn, minOut *big.Int) (*big.Int, error) {
	amountOut, err := formula.GetAmountOut(amountIn, l.reserveIn, l.reserveOut, inst.feeBps)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s in yields nothing", errs.ErrInsufficientOutputAmount, amountIn)
	}
	if amountOut.Cmp(minOut) < 0 {
		return nil, fmt.Errorf("%w: output %s below minimum %s", errs.ErrSlippageExceeded, amountOut, minOut)
	}
	if limit := p.params.MaxPriceImpactBps; limit > 0 {
		impact, err := formula.PriceImpact(amountIn, l.reserveIn, l.reserveOut, inst.feeBps)
		if err != nil {
			return nil, err
		}
		if impact > limit {
			return nil, fmt.Errorf("%w: %d bps exceeds %d bps", errs.ErrPriceImpactTooHigh, impact, limit)
		}
	}
	return amountOut, nil
}

func (p *Pool) assetsFor(inst *instance, l *leg) (asset.Asset, asset.Asset, error) {
	asset0, asset1, err := p.resolve(inst)
	if err != nil {
		return nil, nil, err
	}
	if l.zeroForOne {
		return asset0, asset1, nil
	}
	return asset1, asset0, nil
}

func verifyK(newReserve0, newReserve1, oldReserve0, oldReserve1 *big.Int) error {
	ok, err := formula.VerifyKInvariant(newReserve0, newReserve1, oldReserve0, oldReserve1)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: constant product decreased", errs.ErrInvalidAmount)
	}
	return nil
}

// Swap sells amountIn of tokenIn from caller for the other asset, which is
// sent back to caller.
func (p *Pool) Swap(
	ctx context.Context,
	caller ids.ShortID,
	tokenIn ids.ID,
	amountIn *big.Int,
	minOut *big.Int,
) (*big.Int, error) {
	if amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount in %s", errs.ErrInvalidAmount, amountIn)
	}
	if minOut.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative minimum output", errs.ErrInvalidAmount)
	}
	if caller == p.account {
		return nil, fmt.Errorf("%w: pool cannot trade with itself", errs.ErrUnauthorized)
	}

	var amountOut *big.Int
	err := p.execute(ctx, opSwap, active, func(ctx context.Context, inst *instance) error {
		l, err := p.leg(inst, tokenIn)
		if err != nil {
			return err
		}
		amountOut, err = p.quoteOut(inst, l, amountIn, minOut)
		if err != nil {
			return err
		}

		in, out, err := p.assetsFor(inst, l)
		if err != nil {
			return err
		}
		if err := in.Transfer(ctx, caller, p.account, amountIn); err != nil {
			return err
		}
		if err := out.Transfer(ctx, p.account, caller, amountOut); err != nil {
			return err
		}

		newReserveIn, err := math.Add128(l.reserveIn, amountIn)
		if err != nil {
			return err
		}
		newReserveOut, err := math.Sub128(l.reserveOut, amountOut)
		if err != nil {
			return err
		}
		newReserve0, newReserve1 := l.ordered(newReserveIn, newReserveOut)
		oldReserve0, oldReserve1 := l.ordered(l.reserveIn, l.reserveOut)
		if err := verifyK(newReserve0, newReserve1, oldReserve0, oldReserve1); err != nil {
			return err
		}
		if err := p.putReserves(inst, newReserve0, newReserve1); err != nil {
			return err
		}

		p.emit(Swap{
			User:      caller,
			TokenIn:   l.tokenIn,
			TokenOut:  l.tokenOut,
			AmountIn:  new(big.Int).Set(amountIn),
			AmountOut: amountOut,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.metrics.AddSwapVolume(amountIn)
	return amountOut, nil
}

// SwapFromBalance swaps input that was already transferred to the pool's
// account. The input is the pool's balance of tokenIn above its tracked
// reserve; the output goes to recipient. Reserves are then set from the
// observed balances. A zero deadline never expires.
func (p *Pool) SwapFromBalance(
	ctx context.Context,
	recipient ids.ShortID,
	tokenIn ids.ID,
	minOut *big.Int,
	deadline uint64,
) (*big.Int, *big.Int, error) {
	if minOut.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: negative minimum output", errs.ErrInvalidAmount)
	}

	var amountIn, amountOut *big.Int
	err := p.execute(ctx, opSwapFromBalance, active, func(ctx context.Context, inst *instance) error {
		if p.clock.Expired(deadline) {
			return fmt.Errorf("%w: deadline %d, now %d", errs.ErrDeadlineExpired, deadline, p.clock.Unix())
		}

		l, err := p.leg(inst, tokenIn)
		if err != nil {
			return err
		}
		in, out, err := p.assetsFor(inst, l)
		if err != nil {
			return err
		}

		balanceIn, err := in.BalanceOf(ctx, p.account)
		if err != nil {
			return err
		}
		amountIn, err = math.Sub128(balanceIn, l.reserveIn)
		if err != nil {
			return err
		}
		if amountIn.Sign() <= 0 {
			return fmt.Errorf("%w: no input above reserve %s", errs.ErrInvalidAmount, l.reserveIn)
		}

		amountOut, err = p.quoteOut(inst, l, amountIn, minOut)
		if err != nil {
			return err
		}
		if err := out.Transfer(ctx, p.account, recipient, amountOut); err != nil {
			return err
		}

		asset0, asset1, err := p.resolve(inst)
		if err != nil {
			return err
		}
		newReserve0, newReserve1, err := p.balances(ctx, asset0, asset1)
		if err != nil {
			return err
		}
		oldReserve0, oldReserve1 := l.ordered(l.reserveIn, l.reserveOut)
		if err := verifyK(newReserve0, newReserve1, oldReserve0, oldReserve1); err != nil {
			return err
		}
		if err := p.putReserves(inst, newReserve0, newReserve1); err != nil {
			return err
		}

		p.emit(Swap{
			User:      recipient,
			TokenIn:   l.tokenIn,
			TokenOut:  l.tokenOut,
			AmountIn:  amountIn,
			AmountOut: amountOut,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	p.metrics.AddSwapVolume(amountIn)
	return amountIn, amountOut, nil
}

// GetAmountOut quotes the output for selling amountIn of tokenIn.
func (p *Pool) GetAmountOut(ctx context.Context, amountIn *big.Int, tokenIn ids.ID) (*big.Int, error) {
	var amountOut *big.Int
	err := p.read(ctx, func(inst *instance) error {
		l, err := p.leg(inst, tokenIn)
		if err != nil {
			return err
		}
		amountOut, err = formula.GetAmountOut(amountIn, l.reserveIn, l.reserveOut, inst.feeBps)
		return err
	})
	return amountOut, err
}

// GetAmountIn quotes the input needed to buy amountOut of tokenOut.
func (p *Pool) GetAmountIn(ctx context.Context, amountOut *big.Int, tokenOut ids.ID) (*big.Int, error) {
	var amountIn *big.Int
	err := p.read(ctx, func(inst *instance) error {
		zeroForOne, err := inst.direction(tokenOut)
		if err != nil {
			return err
		}
		// Buying asset0 means selling asset1.
		tokenIn := inst.asset0
		if zeroForOne {
			tokenIn = inst.asset1
		}
		l, err := p.leg(inst, tokenIn)
		if err != nil {
			return err
		}
		amountIn, err = formula.GetAmountIn(amountOut, l.reserveIn, l.reserveOut, inst.feeBps)
		return err
	})
	return amountIn, err
}

// PriceImpact returns how far selling amountIn of tokenIn moves the price, in
// basis points.
func (p *Pool) PriceImpact(ctx context.Context, amountIn *big.Int, tokenIn ids.ID) (uint32, error) {
	var impact uint32
	err := p.read(ctx, func(inst *instance) error {
		l, err := p.leg(inst, tokenIn)
		if err != nil {
			return err
		}
		impact, err = formula.PriceImpact(amountIn, l.reserveIn, l.reserveOut, inst.feeBps)
		return err
	})
	return impact, err
}
