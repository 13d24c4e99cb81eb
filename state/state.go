// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state provides the transactional storage shared by pools, share
// ledgers and database-backed assets.
//
// Every component writes through the same versioned view. A pool entry point
// either commits all pending writes or aborts them, so a failure anywhere in
// the call leaves the base database exactly as it was.
//
// A transaction marks the context it hands to its body. Code reached from that
// body, including external asset callbacks, must pass the context on: nested
// reads then run inside the open transaction and nested transactions fail with
// errs.ErrReentrancy instead of waiting on the lock.
package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/math/set"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/utils/wrappers"
)

var (
	ErrStateCorrupted = errors.New("state corrupted")

	_ TTLExtender = noopExtender{}
)

// TTLExtender renews the storage lifetime of a key in the hosting
// environment.
type TTLExtender interface {
	Extend(key []byte)
}

type noopExtender struct{}

func (noopExtender) Extend([]byte) {}

// NoopExtender returns a TTLExtender that does nothing.
func NoopExtender() TTLExtender {
	return noopExtender{}
}

// State is a versioned view over a base database.
type State struct {
	// txLock serializes transactions against each other and against reads.
	txLock sync.RWMutex

	mu   sync.Mutex
	base database.Database
	db   *versiondb.Database
	ttl  TTLExtender

	// touched holds fully prefixed keys written since the last commit.
	touched set.Set[string]
}

// New returns a State over db. A nil ttl disables renewal.
func New(db database.Database, ttl TTLExtender) *State {
	if ttl == nil {
		ttl = NoopExtender()
	}
	return &State{
		base:    db,
		db:      versiondb.New(db),
		ttl:     ttl,
		touched: set.NewSet[string](0),
	}
}

// Store returns the sub-store under prefix.
func (s *State) Store(prefix []byte) *Store {
	return &Store{
		prefix: prefix,
		db:     prefixdb.New(prefix, s.db),
		state:  s,
	}
}

// txKey marks a context handed down by a transaction of one State.
type txKey struct {
	state *State
}

// InTx reports whether ctx was handed down by a transaction of s.
func (s *State) InTx(ctx context.Context) bool {
	return ctx.Value(txKey{state: s}) != nil
}

// Atomic runs fn as a single transaction. Pending writes are committed if fn
// returns nil and discarded otherwise. fn receives a context marking the
// transaction; calling Atomic with it fails with errs.ErrReentrancy.
func (s *State) Atomic(ctx context.Context, fn func(context.Context) error) error {
	if s.InTx(ctx) {
		return fmt.Errorf("%w: transaction already in progress", errs.ErrReentrancy)
	}

	s.txLock.Lock()
	defer s.txLock.Unlock()

	if err := fn(context.WithValue(ctx, txKey{state: s}, struct{}{})); err != nil {
		s.Abort()
		return err
	}
	if err := s.Commit(); err != nil {
		s.Abort()
		return err
	}
	return nil
}

// Read runs fn while no transaction is in flight, so fn only observes
// committed state. If ctx marks a transaction of s, fn runs inside that
// transaction and observes its pending writes.
func (s *State) Read(ctx context.Context, fn func() error) error {
	if s.InTx(ctx) {
		return fn()
	}

	s.txLock.RLock()
	defer s.txLock.RUnlock()

	return fn()
}

// Commit writes all pending changes to the base database and renews the TTL
// of every key they touched.
func (s *State) Commit() error {
	if err := s.db.Commit(); err != nil {
		return err
	}

	s.mu.Lock()
	touched := s.touched
	s.touched = set.NewSet[string](0)
	s.mu.Unlock()

	for key := range touched {
		s.ttl.Extend([]byte(key))
	}
	return nil
}

// Abort discards all pending changes.
func (s *State) Abort() {
	s.db.Abort()

	s.mu.Lock()
	s.touched = set.NewSet[string](0)
	s.mu.Unlock()
}

func (s *State) touch(prefix, key []byte) {
	full := fullKey(prefix, key)

	s.mu.Lock()
	s.touched.Add(string(full))
	s.mu.Unlock()
}

func fullKey(prefix, key []byte) []byte {
	full := make([]byte, 0, len(prefix)+len(key))
	full = append(full, prefix...)
	return append(full, key...)
}

// Store is a prefixed key space inside a State.
type Store struct {
	prefix []byte
	db     database.Database
	state  *State
}

// Touch marks key for TTL renewal on the next commit.
func (s *Store) Touch(key []byte) {
	s.state.touch(s.prefix, key)
}

// Extend renews the TTL of a committed key immediately.
func (s *Store) Extend(key []byte) {
	s.state.ttl.Extend(fullKey(s.prefix, key))
}

func (s *Store) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

func (s *Store) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *Store) Put(key, value []byte) error {
	if err := s.db.Put(key, value); err != nil {
		return err
	}
	s.Touch(key)
	return nil
}

func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key)
}

// GetInt128 reads a signed 128-bit value. A missing key reads as zero.
func (s *Store) GetInt128(key []byte) (*big.Int, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) != wrappers.Int128Len {
		return nil, ErrStateCorrupted
	}

	p := wrappers.Packer{Bytes: data}
	v := p.UnpackInt128()
	return v, p.Err
}

// PutInt128 writes a signed 128-bit value.
func (s *Store) PutInt128(key []byte, v *big.Int) error {
	p := wrappers.Packer{MaxSize: wrappers.Int128Len}
	p.PackInt128(v)
	if p.Err != nil {
		return p.Err
	}
	return s.Put(key, p.Bytes)
}

// GetUint256 reads an unsigned 256-bit value. A missing key reads as zero.
func (s *Store) GetUint256(key []byte) (*uint256.Int, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) != wrappers.Uint256Len {
		return nil, ErrStateCorrupted
	}

	p := wrappers.Packer{Bytes: data}
	v := p.UnpackUint256()
	return v, p.Err
}

// PutUint256 writes an unsigned 256-bit value.
func (s *Store) PutUint256(key []byte, v *uint256.Int) error {
	p := wrappers.Packer{MaxSize: wrappers.Uint256Len}
	p.PackUint256(v)
	if p.Err != nil {
		return p.Err
	}
	return s.Put(key, p.Bytes)
}
