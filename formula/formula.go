// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package formula implements the constant-product pricing and share math used
// by liquidity pools. Every function is pure and operates on non-negative
// signed 128-bit amounts.
package formula

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/utils/math"
)

const (
	// BpsDenominator is 100% expressed in basis points.
	BpsDenominator = 10_000
	// DefaultSwapFeeBps is the default swap fee (0.30%).
	DefaultSwapFeeBps = 30
	// ProtocolFeeBps is the protocol's portion of the swap fee (0.05%).
	ProtocolFeeBps = 5
	// LPFeeBps is the liquidity providers' portion of the swap fee (0.25%).
	LPFeeBps = 25
)

var (
	// MinimumLiquidity is the number of shares locked forever on the first
	// deposit into a pool.
	MinimumLiquidity = big.NewInt(1_000)

	bpsDenominator = big.NewInt(BpsDenominator)
)

// feeMultiplier returns 10000 - feeBps.
func feeMultiplier(feeBps uint32) (*big.Int, error) {
	if feeBps >= BpsDenominator {
		return nil, fmt.Errorf("%w: %d bps", errs.ErrInvalidFee, feeBps)
	}
	m, err := math.Sub[uint32](BpsDenominator, feeBps)
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(m)), nil
}

func requireReserves(reserveIn, reserveOut *big.Int) error {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return fmt.Errorf("%w: reserves (%s, %s)", errs.ErrInsufficientLiquidity, reserveIn, reserveOut)
	}
	return nil
}

// GetAmountOut returns the output received for amountIn:
//
//	amountInWithFee = amountIn * (10000 - feeBps)
//	out = floor(amountInWithFee * reserveOut / (reserveIn * 10000 + amountInWithFee))
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint32) (*big.Int, error) {
	if amountIn.Sign() <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if err := requireReserves(reserveIn, reserveOut); err != nil {
		return nil, err
	}
	mult, err := feeMultiplier(feeBps)
	if err != nil {
		return nil, err
	}

	amountInWithFee, err := math.Mul128(amountIn, mult)
	if err != nil {
		return nil, err
	}
	scaledReserve, err := math.Mul128(reserveIn, bpsDenominator)
	if err != nil {
		return nil, err
	}
	denominator, err := math.Add128(scaledReserve, amountInWithFee)
	if err != nil {
		return nil, err
	}
	return math.MulDivDown(amountInWithFee, reserveOut, denominator)
}

// GetAmountIn returns the input required to receive amountOut. The inverse
// formula is rounded up and one unit is added, so the caller never
// underpays:
//
//	in = ceil(reserveIn * amountOut * 10000 / ((reserveOut - amountOut) * (10000 - feeBps))) + 1
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int, feeBps uint32) (*big.Int, error) {
	if amountOut.Sign() <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if err := requireReserves(reserveIn, reserveOut); err != nil {
		return nil, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: output %s exceeds reserve %s", errs.ErrInsufficientLiquidity, amountOut, reserveOut)
	}
	mult, err := feeMultiplier(feeBps)
	if err != nil {
		return nil, err
	}

	remaining, err := math.Sub128(reserveOut, amountOut)
	if err != nil {
		return nil, err
	}
	denominator, err := math.Mul128(remaining, mult)
	if err != nil {
		return nil, err
	}
	amountIn, err := math.MulScaleDivUp(reserveIn, amountOut, BpsDenominator, denominator)
	if err != nil {
		return nil, err
	}
	return math.Add128(amountIn, big.NewInt(1))
}

// Quote returns the amount of B that matches amountA at the current ratio,
// floor(amountA * reserveB / reserveA).
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if amountA.Sign() <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if err := requireReserves(reserveA, reserveB); err != nil {
		return nil, err
	}
	return math.MulDivDown(amountA, reserveB, reserveA)
}

// CalculateLiquidityTokens returns the shares minted for a deposit.
//
// Into an empty pool it is sqrt(amount0 * amount1) - MinimumLiquidity, which
// must be positive. Otherwise it is the smaller of the two pro-rata claims
// amountX * totalShares / reserveX.
func CalculateLiquidityTokens(amount0, amount1, reserve0, reserve1, totalShares *big.Int) (*big.Int, error) {
	return CalculateLiquidityTokensWithMinimum(amount0, amount1, reserve0, reserve1, totalShares, MinimumLiquidity)
}

// CalculateLiquidityTokensWithMinimum is CalculateLiquidityTokens with a
// caller-chosen locked amount for the first deposit.
func CalculateLiquidityTokensWithMinimum(amount0, amount1, reserve0, reserve1, totalShares, minimum *big.Int) (*big.Int, error) {
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	if totalShares.Sign() == 0 {
		product, err := math.MulWide(amount0, amount1)
		if err != nil {
			return nil, err
		}
		liquidity := math.Sqrt(product.ToBig())
		if liquidity.Cmp(minimum) <= 0 {
			return nil, fmt.Errorf("%w: geometric mean %s does not exceed minimum liquidity %s", errs.ErrInsufficientLiquidity, liquidity, minimum)
		}
		return math.Sub128(liquidity, minimum)
	}

	liquidity0, err := math.MulDivDown(amount0, totalShares, reserve0)
	if err != nil {
		return nil, err
	}
	liquidity1, err := math.MulDivDown(amount1, totalShares, reserve1)
	if err != nil {
		return nil, err
	}
	return math.Min(liquidity0, liquidity1), nil
}

// CalculateWithdrawalAmounts returns the pro-rata reserves owed for shares.
func CalculateWithdrawalAmounts(shares, reserve0, reserve1, totalShares *big.Int) (*big.Int, *big.Int, error) {
	if shares.Sign() <= 0 {
		return nil, nil, errs.ErrInvalidAmount
	}
	if totalShares.Sign() <= 0 {
		return nil, nil, errs.ErrInsufficientLiquidity
	}
	if shares.Cmp(totalShares) > 0 {
		return nil, nil, fmt.Errorf("%w: %s shares of %s outstanding", errs.ErrInsufficientBalance, shares, totalShares)
	}

	amount0, err := math.MulDivDown(shares, reserve0, totalShares)
	if err != nil {
		return nil, nil, err
	}
	amount1, err := math.MulDivDown(shares, reserve1, totalShares)
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// K returns reserve0 * reserve1. The product is kept at 256 bits.
func K(reserve0, reserve1 *big.Int) (*uint256.Int, error) {
	return math.MulWide(reserve0, reserve1)
}

// VerifyKInvariant reports whether newR0 * newR1 >= oldR0 * oldR1.
func VerifyKInvariant(newR0, newR1, oldR0, oldR1 *big.Int) (bool, error) {
	newK, err := K(newR0, newR1)
	if err != nil {
		return false, err
	}
	oldK, err := K(oldR0, oldR1)
	if err != nil {
		return false, err
	}
	return !newK.Lt(oldK), nil
}

// PriceImpact returns, in basis points, how far the constant-product output
// falls below the spot-price output for amountIn.
func PriceImpact(amountIn, reserveIn, reserveOut *big.Int, feeBps uint32) (uint32, error) {
	if err := requireReserves(reserveIn, reserveOut); err != nil {
		return 0, err
	}
	expected, err := math.MulDivDown(amountIn, reserveOut, reserveIn)
	if err != nil {
		return 0, err
	}
	actual, err := GetAmountOut(amountIn, reserveIn, reserveOut, feeBps)
	if err != nil {
		return 0, err
	}
	if expected.Sign() == 0 {
		return 0, nil
	}

	diff, err := math.Sub128(expected, actual)
	if err != nil {
		return 0, err
	}
	impact, err := math.MulDivDown(diff, bpsDenominator, expected)
	if err != nil {
		return 0, err
	}
	return uint32(impact.Uint64()), nil
}

// ApplyBps returns floor(amount * bps / 10000).
func ApplyBps(amount *big.Int, bps uint32) (*big.Int, error) {
	if bps > BpsDenominator {
		return nil, fmt.Errorf("%w: %d bps", errs.ErrInvalidArgument, bps)
	}
	return math.MulDivDown(amount, big.NewInt(int64(bps)), bpsDenominator)
}

// ApplyBpsRoundUp returns ceil(amount * bps / 10000).
func ApplyBpsRoundUp(amount *big.Int, bps uint32) (*big.Int, error) {
	if bps > BpsDenominator {
		return nil, fmt.Errorf("%w: %d bps", errs.ErrInvalidArgument, bps)
	}
	return math.MulDivUp(amount, big.NewInt(int64(bps)), bpsDenominator)
}
