// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quote

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/amm/formula"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "quote",
		Short: "Prices a swap against the given reserves",
		Long: `Prices a swap against the given reserves without a running pool.

Example:
  $ ammd quote --amount-in 1000 --reserve-in 10000 --reserve-out 10000`,
		Args: cobra.NoArgs,
		RunE: quoteFunc,
	}
	AddFlags(c.Flags())
	return c
}

func quoteFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	if config.AmountOut != nil {
		amountIn, err := formula.GetAmountIn(config.AmountOut, config.ReserveIn, config.ReserveOut, config.FeeBps)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "amount in: %s\n", amountIn)
		return err
	}

	amountOut, err := formula.GetAmountOut(config.AmountIn, config.ReserveIn, config.ReserveOut, config.FeeBps)
	if err != nil {
		return err
	}
	impact, err := formula.PriceImpact(config.AmountIn, config.ReserveIn, config.ReserveOut, config.FeeBps)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "amount out: %s\nprice impact: %d bps\n", amountOut, impact)
	return err
}
