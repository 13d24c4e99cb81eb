// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/corruptabledb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/amm/api"
	"github.com/luxfi/amm/api/server"
	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/factory"
	"github.com/luxfi/amm/metrics"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/timer/mockable"
)

const (
	metricsNamespace = "amm"
	metricsEndpoint  = "metrics"
	shutdownTimeout  = 10 * time.Second
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves a pool factory over JSON-RPC",
		RunE:  serveFunc,
	}
	AddFlags(c.Flags())
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return Run(c.Context(), log.Root(), config)
}

// Run serves until ctx is cancelled or the server fails.
func Run(ctx context.Context, logger log.Logger, config *Config) error {
	db, err := openDB(config.DBDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", log.Err(err))
		}
	}()

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	m, err := metrics.New(metricsNamespace, registry)
	if err != nil {
		return err
	}

	clock := &mockable.Clock{}
	ttl := state.NewTTLTracker(clock, config.Params.StorageTTL, config.Params.TTLCacheSize)
	s := state.New(db, ttl)
	ledger := asset.NewLedger(s)

	f, err := factory.New(factory.Config{
		Account: config.FactoryAccount,
		Admin:   config.Admin,
		State:   s,
		Assets:  ledger,
		Params:  config.Params,
		Clock:   clock,
		Log:     logger,
		Metrics: m,
	})
	if err != nil {
		return err
	}
	handler, err := api.NewHandler(api.NewService(logger, f, s, ledger))
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", config.Params.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Params.Addr(), err)
	}
	srv, err := server.New(
		logger,
		listener,
		config.Params.AllowedOrigins,
		shutdownTimeout,
		registry,
		server.HTTPConfig{ReadHeaderTimeout: config.Params.ReadHeaderTimeout},
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := srv.AddRoute(handler, api.ServiceName, ""); err != nil {
		return err
	}
	if err := srv.AddRoute(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), metricsEndpoint, ""); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown()
	})
	return g.Wait()
}

func openDB(dir string, logger log.Logger) (database.Database, error) {
	if dir == "" {
		logger.Info("using in-memory database")
		return memdb.New(), nil
	}
	db, err := badgerdb.New(dir, nil, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dir, err)
	}
	logger.Info("opened database", log.String("dir", dir))
	return corruptabledb.New(db, logger), nil
}
