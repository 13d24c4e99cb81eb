// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for AMM pools and the ammd
// daemon.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/formula"
)

// Config contains configuration parameters for pools created by a factory.
type Config struct {
	// DefaultFeeBps is the swap fee new pools start with (30 = 0.30%)
	DefaultFeeBps uint32 `json:"defaultFeeBps"`
	// MaxFeeBps is the highest fee an admin may set
	MaxFeeBps uint32 `json:"maxFeeBps"`
	// ProtocolFeeBps is the protocol's portion of the swap fee
	ProtocolFeeBps uint32 `json:"protocolFeeBps"`
	// LPFeeBps is the liquidity providers' portion of the swap fee
	LPFeeBps uint32 `json:"lpFeeBps"`

	// MinimumLiquidity is the number of shares locked on the first deposit
	MinimumLiquidity int64 `json:"minimumLiquidity"`
	// MaxPriceImpactBps rejects swaps that move the price further. 0 disables
	// the check.
	MaxPriceImpactBps uint32 `json:"maxPriceImpactBps"`

	// Share token metadata
	LPName     string `json:"lpName"`
	LPSymbol   string `json:"lpSymbol"`
	LPDecimals uint8  `json:"lpDecimals"`

	// StorageTTL is how long a touched key lives after its last renewal
	StorageTTL time.Duration `json:"storageTTL"`
	// TTLCacheSize bounds the number of renewal records kept in memory
	TTLCacheSize int `json:"ttlCacheSize"`

	// HTTP server configuration
	HTTPHost          string        `json:"httpHost"`
	HTTPPort          uint16        `json:"httpPort"`
	AllowedOrigins    []string      `json:"allowedOrigins"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultFeeBps:  formula.DefaultSwapFeeBps,
		MaxFeeBps:      1_000, // 10%
		ProtocolFeeBps: formula.ProtocolFeeBps,
		LPFeeBps:       formula.LPFeeBps,

		MinimumLiquidity:  formula.MinimumLiquidity.Int64(),
		MaxPriceImpactBps: 0,

		LPName:     "Lux AMM LP Token",
		LPSymbol:   "LUX-LP",
		LPDecimals: 7,

		StorageTTL:   30 * 24 * time.Hour,
		TTLCacheSize: 4_096,

		HTTPHost:          "127.0.0.1",
		HTTPPort:          9650,
		AllowedOrigins:    []string{"*"},
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Verify returns an error if the configuration cannot be used.
func (c Config) Verify() error {
	switch {
	case c.MaxFeeBps >= formula.BpsDenominator:
		return fmt.Errorf("%w: max fee %d bps", errs.ErrInvalidFee, c.MaxFeeBps)
	case c.DefaultFeeBps > c.MaxFeeBps:
		return fmt.Errorf("%w: default fee %d exceeds max %d", errs.ErrFeeTooHigh, c.DefaultFeeBps, c.MaxFeeBps)
	case c.MinimumLiquidity <= 0:
		return fmt.Errorf("%w: minimum liquidity %d", errs.ErrInvalidArgument, c.MinimumLiquidity)
	case c.MaxPriceImpactBps > formula.BpsDenominator:
		return fmt.Errorf("%w: max price impact %d bps", errs.ErrInvalidArgument, c.MaxPriceImpactBps)
	case c.TTLCacheSize <= 0:
		return fmt.Errorf("%w: ttl cache size %d", errs.ErrInvalidArgument, c.TTLCacheSize)
	default:
		return nil
	}
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Parse overlays the JSON in b on the default configuration and verifies the
// result. Empty input returns the defaults.
func Parse(b []byte) (Config, error) {
	c := DefaultConfig()
	if len(b) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, c.Verify()
}
