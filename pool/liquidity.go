// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/formula"
	"github.com/luxfi/amm/utils/math"
)

// DepositResult is the outcome of a deposit.
type DepositResult struct {
	Amount0 *big.Int `json:"amount0"`
	Amount1 *big.Int `json:"amount1"`
	Shares  *big.Int `json:"shares"`
}

// Deposit adds liquidity from caller at the current reserve ratio and mints
// shares to caller. The first deposit sets the ratio and locks
// MinimumLiquidity shares in the pool's own account.
func (p *Pool) Deposit(
	ctx context.Context,
	caller ids.ShortID,
	amount0Desired, amount1Desired *big.Int,
	amount0Min, amount1Min *big.Int,
) (*DepositResult, error) {
	if amount0Desired.Sign() <= 0 || amount1Desired.Sign() <= 0 {
		return nil, fmt.Errorf("%w: desired amounts (%s, %s)", errs.ErrInvalidAmount, amount0Desired, amount1Desired)
	}
	if amount0Min.Sign() < 0 || amount1Min.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative minimum", errs.ErrInvalidAmount)
	}
	if caller == p.account {
		return nil, fmt.Errorf("%w: pool cannot deposit into itself", errs.ErrUnauthorized)
	}

	var result *DepositResult
	err := p.execute(ctx, opDeposit, active, func(ctx context.Context, inst *instance) error {
		reserve0, reserve1, err := p.getReserves()
		if err != nil {
			return err
		}
		total, err := p.shares.TotalSupply()
		if err != nil {
			return err
		}

		amount0, amount1, err := optimalAmounts(
			amount0Desired, amount1Desired,
			amount0Min, amount1Min,
			reserve0, reserve1,
			total,
		)
		if err != nil {
			return err
		}

		minimum := big.NewInt(p.params.MinimumLiquidity)
		shares, err := formula.CalculateLiquidityTokensWithMinimum(amount0, amount1, reserve0, reserve1, total, minimum)
		if err != nil {
			return err
		}
		if shares.Sign() <= 0 {
			return fmt.Errorf("%w: deposit mints no shares", errs.ErrInsufficientLiquidity)
		}

		asset0, asset1, err := p.resolve(inst)
		if err != nil {
			return err
		}
		if err := asset0.Transfer(ctx, caller, p.account, amount0); err != nil {
			return err
		}
		if err := asset1.Transfer(ctx, caller, p.account, amount1); err != nil {
			return err
		}

		if total.Sign() == 0 {
			if err := p.shares.Mint(p.account, minimum); err != nil {
				return err
			}
		}
		if err := p.shares.Mint(caller, shares); err != nil {
			return err
		}

		newReserve0, err := math.Add128(reserve0, amount0)
		if err != nil {
			return err
		}
		newReserve1, err := math.Add128(reserve1, amount1)
		if err != nil {
			return err
		}
		if err := p.putReserves(inst, newReserve0, newReserve1); err != nil {
			return err
		}
		k, err := formula.K(newReserve0, newReserve1)
		if err != nil {
			return err
		}
		if err := p.putKLast(k); err != nil {
			return err
		}

		result = &DepositResult{
			Amount0: amount0,
			Amount1: amount1,
			Shares:  shares,
		}
		p.emit(Deposit{
			User:    caller,
			Amount0: amount0,
			Amount1: amount1,
			Shares:  shares,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// optimalAmounts returns the deposit amounts that keep the reserve ratio.
func optimalAmounts(
	amount0Desired, amount1Desired *big.Int,
	amount0Min, amount1Min *big.Int,
	reserve0, reserve1 *big.Int,
	totalShares *big.Int,
) (*big.Int, *big.Int, error) {
	if totalShares.Sign() == 0 || (reserve0.Sign() == 0 && reserve1.Sign() == 0) {
		if amount0Desired.Cmp(amount0Min) < 0 || amount1Desired.Cmp(amount1Min) < 0 {
			return nil, nil, fmt.Errorf("%w: desired amounts below minimums", errs.ErrMinimumNotMet)
		}
		return amount0Desired, amount1Desired, nil
	}

	amount1Optimal, err := formula.Quote(amount0Desired, reserve0, reserve1)
	if err != nil {
		return nil, nil, err
	}
	if amount1Optimal.Cmp(amount1Desired) <= 0 {
		if amount1Optimal.Cmp(amount1Min) < 0 {
			return nil, nil, fmt.Errorf("%w: amount1 %s below minimum %s", errs.ErrMinimumNotMet, amount1Optimal, amount1Min)
		}
		return amount0Desired, amount1Optimal, nil
	}

	amount0Optimal, err := formula.Quote(amount1Desired, reserve1, reserve0)
	if err != nil {
		return nil, nil, err
	}
	if amount0Optimal.Cmp(amount0Desired) > 0 || amount0Optimal.Cmp(amount0Min) < 0 {
		return nil, nil, fmt.Errorf("%w: amount0 %s outside [%s, %s]", errs.ErrMinimumNotMet, amount0Optimal, amount0Min, amount0Desired)
	}
	return amount0Optimal, amount1Desired, nil
}

// Withdraw burns shares owned by caller and returns the pro-rata reserves.
func (p *Pool) Withdraw(
	ctx context.Context,
	caller ids.ShortID,
	shares *big.Int,
	amount0Min, amount1Min *big.Int,
) (*big.Int, *big.Int, error) {
	if shares.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: shares %s", errs.ErrInvalidAmount, shares)
	}
	if amount0Min.Sign() < 0 || amount1Min.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: negative minimum", errs.ErrInvalidAmount)
	}
	if caller == p.account {
		return nil, nil, fmt.Errorf("%w: locked liquidity cannot be withdrawn", errs.ErrUnauthorized)
	}

	var amount0, amount1 *big.Int
	err := p.execute(ctx, opWithdraw, active, func(ctx context.Context, inst *instance) error {
		balance, err := p.shares.BalanceOf(caller)
		if err != nil {
			return err
		}
		if balance.Cmp(shares) < 0 {
			return fmt.Errorf("%w: %s holds %s shares, withdrawing %s", errs.ErrInsufficientBalance, caller, balance, shares)
		}

		reserve0, reserve1, err := p.getReserves()
		if err != nil {
			return err
		}
		total, err := p.shares.TotalSupply()
		if err != nil {
			return err
		}
		amount0, amount1, err = formula.CalculateWithdrawalAmounts(shares, reserve0, reserve1, total)
		if err != nil {
			return err
		}
		if amount0.Cmp(amount0Min) < 0 || amount1.Cmp(amount1Min) < 0 {
			return fmt.Errorf("%w: withdrawal (%s, %s) below (%s, %s)", errs.ErrMinimumNotMet, amount0, amount1, amount0Min, amount1Min)
		}

		if err := p.shares.Burn(caller, shares); err != nil {
			return err
		}
		asset0, asset1, err := p.resolve(inst)
		if err != nil {
			return err
		}
		if err := asset0.Transfer(ctx, p.account, caller, amount0); err != nil {
			return err
		}
		if err := asset1.Transfer(ctx, p.account, caller, amount1); err != nil {
			return err
		}

		newReserve0, err := math.Sub128(reserve0, amount0)
		if err != nil {
			return err
		}
		newReserve1, err := math.Sub128(reserve1, amount1)
		if err != nil {
			return err
		}
		if err := p.putReserves(inst, newReserve0, newReserve1); err != nil {
			return err
		}
		k, err := formula.K(newReserve0, newReserve1)
		if err != nil {
			return err
		}
		if err := p.putKLast(k); err != nil {
			return err
		}

		p.emit(Withdraw{
			User:    caller,
			Shares:  new(big.Int).Set(shares),
			Amount0: amount0,
			Amount1: amount1,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}
