// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	require := require.New(t)

	metrics, err := newMetrics(prometheus.NewRegistry())
	require.NoError(err)
	require.NotNil(metrics.requests)
	require.NotNil(metrics.duration)
	require.NotNil(metrics.inflight)
}

func TestMetricsRegistrationFailure(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	_, err := newMetrics(reg)
	require.NoError(err)

	metrics, err := newMetrics(reg)
	require.Error(err)
	require.Nil(metrics)
}

func TestMetricsWrapHandler(t *testing.T) {
	require := require.New(t)

	metrics, err := newMetrics(prometheus.NewRegistry())
	require.NoError(err)

	var inflight float64
	handler := metrics.wrapHandler("amm", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		inflight = testutil.ToFloat64(metrics.inflight)
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ext/amm", nil))
	}
	require.Equal(float64(1), inflight)
	require.Zero(testutil.ToFloat64(metrics.inflight))
	require.Equal(float64(3), testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodPost, "amm")))
	require.Equal(1, testutil.CollectAndCount(metrics.duration))
}
