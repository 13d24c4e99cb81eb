// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes prometheus metrics for AMM pools.
package metrics

import (
	"math/big"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/amm/utils/wrappers"
)

const (
	opLabel    = "op"
	poolLabel  = "pool"
	assetLabel = "asset"
)

// Metrics is shared by every pool of a factory. A nil *Metrics records
// nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	failures     *prometheus.CounterVec
	swapVolumeIn prometheus.Counter
	reserves     *prometheus.GaugeVec
}

// New registers the AMM metrics with registerer under namespace.
func New(namespace string, registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Number of successful pool operations",
			},
			[]string{opLabel},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures_total",
				Help:      "Number of failed pool operations",
			},
			[]string{opLabel},
		),
		swapVolumeIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_volume_in_total",
			Help:      "Approximate sum of swap input amounts",
		}),
		reserves: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reserve",
				Help:      "Approximate tracked reserve of an asset in a pool",
			},
			[]string{poolLabel, assetLabel},
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.operations),
		registerer.Register(m.failures),
		registerer.Register(m.swapVolumeIn),
		registerer.Register(m.reserves),
	)
	return m, errs.Err
}

// Observe counts the outcome of op.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
		return
	}
	m.operations.WithLabelValues(op).Inc()
}

// AddSwapVolume adds amountIn to the swap volume.
func (m *Metrics) AddSwapVolume(amountIn *big.Int) {
	if m == nil {
		return
	}
	m.swapVolumeIn.Add(toFloat(amountIn))
}

// SetReserve records the tracked reserve of asset in pool.
func (m *Metrics) SetReserve(pool, asset ids.ID, reserve *big.Int) {
	if m == nil {
		return
	}
	m.reserves.WithLabelValues(pool.String(), asset.String()).Set(toFloat(reserve))
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
