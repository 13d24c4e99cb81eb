// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/share"
)

var (
	_ Event = Deposit{}
	_ Event = Withdraw{}
	_ Event = Swap{}
	_ Event = Sync{}
	_ Event = Skim{}
	_ Event = share.Transfer{}

	_ EventSink = (*Recorder)(nil)
)

// Event is emitted by a successful pool operation.
type Event interface {
	EventName() string
}

// EventSink receives the events of each committed operation, in order.
// Failed operations publish nothing.
type EventSink interface {
	Publish(pool ids.ID, event Event)
}

type noopSink struct{}

func (noopSink) Publish(ids.ID, Event) {}

type Deposit struct {
	User    ids.ShortID `json:"user"`
	Amount0 *big.Int    `json:"amount0"`
	Amount1 *big.Int    `json:"amount1"`
	Shares  *big.Int    `json:"shares"`
}

func (Deposit) EventName() string { return "deposit" }

type Withdraw struct {
	User    ids.ShortID `json:"user"`
	Shares  *big.Int    `json:"shares"`
	Amount0 *big.Int    `json:"amount0"`
	Amount1 *big.Int    `json:"amount1"`
}

func (Withdraw) EventName() string { return "withdraw" }

type Swap struct {
	User      ids.ShortID `json:"user"`
	TokenIn   ids.ID      `json:"tokenIn"`
	TokenOut  ids.ID      `json:"tokenOut"`
	AmountIn  *big.Int    `json:"amountIn"`
	AmountOut *big.Int    `json:"amountOut"`
}

func (Swap) EventName() string { return "swap" }

type Sync struct {
	Reserve0 *big.Int `json:"reserve0"`
	Reserve1 *big.Int `json:"reserve1"`
}

func (Sync) EventName() string { return "sync" }

type Skim struct {
	To      ids.ShortID `json:"to"`
	Amount0 *big.Int    `json:"amount0"`
	Amount1 *big.Int    `json:"amount1"`
}

func (Skim) EventName() string { return "skim" }

// Published is an event together with the pool that emitted it.
type Published struct {
	Pool  ids.ID
	Event Event
}

// Recorder is an EventSink that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(pool ids.ID, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Published{Pool: pool, Event: event})
}

// Events returns the recorded events.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Published, len(r.events))
	copy(events, r.events)
	return events
}

// Names returns the names of the recorded events.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.events))
	for _, p := range r.events {
		names = append(names, p.Event.EventName())
	}
	return names
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
