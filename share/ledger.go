// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package share implements the liquidity-share token of a single pool.
//
// Balances, allowances and the total supply live in a state.Store, so every
// change joins the pool's pending transaction. Callers serialize access; the
// pool's reentrancy guard does this for pool-owned ledgers.
package share

import (
	"fmt"
	"math/big"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/math"
)

var (
	keyTotalSupply = []byte("total")

	prefixBalance   = byte('b')
	prefixAllowance = byte('a')
)

// Metadata describes the share token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Ledger is a fungible share token scoped to one pool.
type Ledger struct {
	store *state.Store
	meta  Metadata
	emit  func(Event)
}

// New returns a ledger stored in store. emit receives an event for every
// successful change and may be nil.
func New(store *state.Store, meta Metadata, emit func(Event)) *Ledger {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Ledger{
		store: store,
		meta:  meta,
		emit:  emit,
	}
}

func (l *Ledger) Name() string {
	return l.meta.Name
}

func (l *Ledger) Symbol() string {
	return l.meta.Symbol
}

func (l *Ledger) Decimals() uint8 {
	return l.meta.Decimals
}

// TotalSupply returns the number of outstanding shares.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.store.GetInt128(keyTotalSupply)
}

// BalanceOf returns the shares held by owner.
func (l *Ledger) BalanceOf(owner ids.ShortID) (*big.Int, error) {
	return l.store.GetInt128(balanceKey(owner))
}

// Allowance returns how many of owner's shares spender may move.
func (l *Ledger) Allowance(owner, spender ids.ShortID) (*big.Int, error) {
	return l.store.GetInt128(allowanceKey(owner, spender))
}

// Approve sets spender's allowance over owner's shares to amount.
func (l *Ledger) Approve(owner, spender ids.ShortID, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: negative allowance %s", errs.ErrInvalidAmount, amount)
	}
	if err := l.store.PutInt128(allowanceKey(owner, spender), amount); err != nil {
		return err
	}
	l.emit(Approve{Owner: owner, Spender: spender, Amount: copyInt(amount)})
	return nil
}

// Transfer moves amount of from's shares to to.
func (l *Ledger) Transfer(from, to ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.emit(Transfer{From: from, To: to, Amount: copyInt(amount)})
	return nil
}

// TransferFrom moves amount of from's shares to to, spending spender's
// allowance.
func (l *Ledger) TransferFrom(spender, from, to ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}
	if err := l.spendAllowance(from, spender, amount); err != nil {
		return err
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.emit(Transfer{From: from, To: to, Amount: copyInt(amount)})
	return nil
}

// Mint creates amount new shares owned by to.
func (l *Ledger) Mint(to ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}

	total, err := l.TotalSupply()
	if err != nil {
		return err
	}
	total, err = math.Add128(total, amount)
	if err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	if err := l.store.PutInt128(keyTotalSupply, total); err != nil {
		return err
	}
	l.emit(Mint{To: to, Amount: copyInt(amount)})
	return nil
}

// Burn destroys amount of from's shares.
func (l *Ledger) Burn(from ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}

	total, err := l.TotalSupply()
	if err != nil {
		return err
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	total, err = math.Sub128(total, amount)
	if err != nil {
		return err
	}
	if total.Sign() < 0 {
		return fmt.Errorf("%w: total supply below zero", errs.ErrUnderflow)
	}
	if err := l.store.PutInt128(keyTotalSupply, total); err != nil {
		return err
	}
	l.emit(Burn{From: from, Amount: copyInt(amount)})
	return nil
}

// BurnFrom destroys amount of from's shares, spending spender's allowance.
func (l *Ledger) BurnFrom(spender, from ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}
	if err := l.spendAllowance(from, spender, amount); err != nil {
		return err
	}
	return l.Burn(from, amount)
}

func (l *Ledger) spendAllowance(owner, spender ids.ShortID, amount *big.Int) error {
	key := allowanceKey(owner, spender)
	allowance, err := l.store.GetInt128(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s may spend %s, needs %s", errs.ErrInsufficientAllowance, spender, allowance, amount)
	}
	return l.store.PutInt128(key, new(big.Int).Sub(allowance, amount))
}

func (l *Ledger) move(from, to ids.ShortID, amount *big.Int) error {
	if err := l.debit(from, amount); err != nil {
		return err
	}
	return l.credit(to, amount)
}

func (l *Ledger) credit(owner ids.ShortID, amount *big.Int) error {
	key := balanceKey(owner)
	balance, err := l.store.GetInt128(key)
	if err != nil {
		return err
	}
	balance, err = math.Add128(balance, amount)
	if err != nil {
		return err
	}
	return l.store.PutInt128(key, balance)
}

func (l *Ledger) debit(owner ids.ShortID, amount *big.Int) error {
	key := balanceKey(owner)
	balance, err := l.store.GetInt128(key)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s shares, needs %s", errs.ErrInsufficientBalance, owner, balance, amount)
	}
	return l.store.PutInt128(key, new(big.Int).Sub(balance, amount))
}

func balanceKey(owner ids.ShortID) []byte {
	key := make([]byte, 0, 1+len(owner))
	key = append(key, prefixBalance)
	return append(key, owner[:]...)
}

func allowanceKey(owner, spender ids.ShortID) []byte {
	key := make([]byte, 0, 1+len(owner)+len(spender))
	key = append(key, prefixAllowance)
	key = append(key, owner[:]...)
	return append(key, spender[:]...)
}

func copyInt(v *big.Int) *big.Int {
	return new(big.Int).Set(v)
}
