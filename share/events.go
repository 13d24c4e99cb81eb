// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package share

import (
	"math/big"

	"github.com/luxfi/ids"
)

// Event is a share ledger change.
type Event interface {
	EventName() string
}

var (
	_ Event = Transfer{}
	_ Event = Approve{}
	_ Event = Mint{}
	_ Event = Burn{}
)

type Transfer struct {
	From   ids.ShortID `json:"from"`
	To     ids.ShortID `json:"to"`
	Amount *big.Int    `json:"amount"`
}

func (Transfer) EventName() string { return "transfer" }

type Approve struct {
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
	Amount  *big.Int    `json:"amount"`
}

func (Approve) EventName() string { return "approve" }

type Mint struct {
	To     ids.ShortID `json:"to"`
	Amount *big.Int    `json:"amount"`
}

func (Mint) EventName() string { return "mint" }

type Burn struct {
	From   ids.ShortID `json:"from"`
	Amount *big.Int    `json:"amount"`
}

func (Burn) EventName() string { return "burn" }
