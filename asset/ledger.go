// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/math"
)

var (
	_ Resolver = (*Ledger)(nil)
	_ Asset    = (*token)(nil)

	prefixAsset   = []byte("asset:")
	prefixBalance = []byte("balance:")

	registered = []byte{1}
)

// Ledger is a multi-asset balance table stored in a State. Writes join the
// State's pending transaction, so they commit or roll back together with the
// pool call that made them.
type Ledger struct {
	mu       sync.Mutex
	assets   *state.Store
	balances *state.Store
}

// NewLedger returns a ledger stored in s.
func NewLedger(s *state.State) *Ledger {
	return &Ledger{
		assets:   s.Store(prefixAsset),
		balances: s.Store(prefixBalance),
	}
}

// Register makes id resolvable.
func (l *Ledger) Register(id ids.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.Put(id[:], registered)
}

// Asset returns the transfer capability for a registered asset.
func (l *Ledger) Asset(id ids.ID) (Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.assets.Has(id[:])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidToken, id)
	}
	return &token{ledger: l, id: id}, nil
}

// Mint credits amount of asset id to account.
func (l *Ledger) Mint(id ids.ID, account ids.ShortID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errs.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.credit(id, account, amount)
}

// BalanceOf returns the balance of asset id held by account.
func (l *Ledger) BalanceOf(id ids.ID, account ids.ShortID) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances.GetInt128(balanceKey(id, account))
}

// Transfer moves amount of asset id from one account to another.
func (l *Ledger) Transfer(id ids.ID, from, to ids.ShortID, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errs.ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.debit(id, from, amount); err != nil {
		return err
	}
	return l.credit(id, to, amount)
}

func (l *Ledger) credit(id ids.ID, account ids.ShortID, amount *big.Int) error {
	key := balanceKey(id, account)
	balance, err := l.balances.GetInt128(key)
	if err != nil {
		return err
	}
	balance, err = math.Add128(balance, amount)
	if err != nil {
		return err
	}
	return l.balances.PutInt128(key, balance)
}

func (l *Ledger) debit(id ids.ID, account ids.ShortID, amount *big.Int) error {
	key := balanceKey(id, account)
	balance, err := l.balances.GetInt128(key)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", errs.ErrInsufficientBalance, account, balance, id, amount)
	}
	return l.balances.PutInt128(key, new(big.Int).Sub(balance, amount))
}

func balanceKey(id ids.ID, account ids.ShortID) []byte {
	key := make([]byte, 0, len(id)+len(account))
	key = append(key, id[:]...)
	return append(key, account[:]...)
}

type token struct {
	ledger *Ledger
	id     ids.ID
}

func (t *token) ID() ids.ID {
	return t.id
}

func (t *token) Transfer(_ context.Context, from, to ids.ShortID, amount *big.Int) error {
	return t.ledger.Transfer(t.id, from, to, amount)
}

func (t *token) BalanceOf(_ context.Context, account ids.ShortID) (*big.Int, error) {
	return t.ledger.BalanceOf(t.id, account)
}
