// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/share"
)

// ShareMetadata describes the pool's share token.
func (p *Pool) ShareMetadata() share.Metadata {
	return share.Metadata{
		Name:     p.shares.Name(),
		Symbol:   p.shares.Symbol(),
		Decimals: p.shares.Decimals(),
	}
}

// TotalShares returns the outstanding share supply, including the locked
// minimum liquidity.
func (p *Pool) TotalShares(ctx context.Context) (*big.Int, error) {
	var total *big.Int
	err := p.read(ctx, func(*instance) error {
		var err error
		total, err = p.shares.TotalSupply()
		return err
	})
	return total, err
}

func (p *Pool) BalanceOf(ctx context.Context, owner ids.ShortID) (*big.Int, error) {
	var balance *big.Int
	err := p.read(ctx, func(*instance) error {
		var err error
		balance, err = p.shares.BalanceOf(owner)
		return err
	})
	return balance, err
}

func (p *Pool) Allowance(ctx context.Context, owner, spender ids.ShortID) (*big.Int, error) {
	var allowance *big.Int
	err := p.read(ctx, func(*instance) error {
		var err error
		allowance, err = p.shares.Allowance(owner, spender)
		return err
	})
	return allowance, err
}

// Transfer moves amount of caller's shares to to.
func (p *Pool) Transfer(ctx context.Context, caller, to ids.ShortID, amount *big.Int) error {
	if err := p.requireNotPool(caller); err != nil {
		return err
	}
	return p.execute(ctx, opTransfer, initialized, func(_ context.Context, _ *instance) error {
		return p.shares.Transfer(caller, to, amount)
	})
}

// TransferFrom moves amount of from's shares to to using caller's allowance.
func (p *Pool) TransferFrom(ctx context.Context, caller, from, to ids.ShortID, amount *big.Int) error {
	if err := p.requireNotPool(from); err != nil {
		return err
	}
	return p.execute(ctx, opTransferFrom, initialized, func(_ context.Context, _ *instance) error {
		return p.shares.TransferFrom(caller, from, to, amount)
	})
}

// Approve lets spender move up to amount of caller's shares.
func (p *Pool) Approve(ctx context.Context, caller, spender ids.ShortID, amount *big.Int) error {
	if err := p.requireNotPool(caller); err != nil {
		return err
	}
	return p.execute(ctx, opApprove, initialized, func(_ context.Context, _ *instance) error {
		return p.shares.Approve(caller, spender, amount)
	})
}

// Burn destroys amount of caller's shares without withdrawing reserves.
func (p *Pool) Burn(ctx context.Context, caller ids.ShortID, amount *big.Int) error {
	if err := p.requireNotPool(caller); err != nil {
		return err
	}
	return p.execute(ctx, opBurn, initialized, func(_ context.Context, _ *instance) error {
		return p.shares.Burn(caller, amount)
	})
}

// BurnFrom destroys amount of from's shares using caller's allowance.
func (p *Pool) BurnFrom(ctx context.Context, caller, from ids.ShortID, amount *big.Int) error {
	if err := p.requireNotPool(from); err != nil {
		return err
	}
	return p.execute(ctx, opBurnFrom, initialized, func(_ context.Context, _ *instance) error {
		return p.shares.BurnFrom(caller, from, amount)
	})
}

// requireNotPool rejects moving the pool's locked shares.
func (p *Pool) requireNotPool(owner ids.ShortID) error {
	if owner == p.account {
		return fmt.Errorf("%w: locked liquidity cannot be moved", errs.ErrUnauthorized)
	}
	return nil
}
