// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quote

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/pflag"

	"github.com/luxfi/amm/formula"
)

const (
	AmountInKey   = "amount-in"
	AmountOutKey  = "amount-out"
	ReserveInKey  = "reserve-in"
	ReserveOutKey = "reserve-out"
	FeeBpsKey     = "fee-bps"
)

var (
	errNoAmount    = errors.New("exactly one of --" + AmountInKey + " and --" + AmountOutKey + " is required")
	errNotAnAmount = errors.New("not a base 10 integer")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(AmountInKey, "", "Amount sold. Quotes the output")
	flags.String(AmountOutKey, "", "Amount bought. Quotes the required input")
	flags.String(ReserveInKey, "", "Reserve of the asset sold (required)")
	flags.String(ReserveOutKey, "", "Reserve of the asset bought (required)")
	flags.Uint32(FeeBpsKey, formula.DefaultSwapFeeBps, "Swap fee in basis points")
}

type Config struct {
	// Exactly one of AmountIn and AmountOut is set.
	AmountIn   *big.Int
	AmountOut  *big.Int
	ReserveIn  *big.Int
	ReserveOut *big.Int
	FeeBps     uint32
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	amountIn, err := getAmount(flags, AmountInKey, false)
	if err != nil {
		return nil, err
	}
	amountOut, err := getAmount(flags, AmountOutKey, false)
	if err != nil {
		return nil, err
	}
	if (amountIn == nil) == (amountOut == nil) {
		return nil, errNoAmount
	}
	reserveIn, err := getAmount(flags, ReserveInKey, true)
	if err != nil {
		return nil, err
	}
	reserveOut, err := getAmount(flags, ReserveOutKey, true)
	if err != nil {
		return nil, err
	}
	feeBps, err := flags.GetUint32(FeeBpsKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		AmountIn:   amountIn,
		AmountOut:  amountOut,
		ReserveIn:  reserveIn,
		ReserveOut: reserveOut,
		FeeBps:     feeBps,
	}, nil
}

func getAmount(flags *pflag.FlagSet, key string, required bool) (*big.Int, error) {
	str, err := flags.GetString(key)
	if err != nil {
		return nil, err
	}
	if str == "" {
		if required {
			return nil, fmt.Errorf("--%s is required", key)
		}
		return nil, nil
	}
	v, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, fmt.Errorf("%w: --%s=%q", errNotAnAmount, key, str)
	}
	return v, nil
}
