// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/amm/cmd/ammd/quote"
	"github.com/luxfi/amm/cmd/ammd/serve"
)

func main() {
	cmd := &cobra.Command{
		Use:          "ammd",
		Short:        "Runs and queries constant-product liquidity pools",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		serve.Command(),
		quote.Command(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
