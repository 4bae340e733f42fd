package main

import (
	"context"
	"fmt"

	"quickinvoice/internal/config"
	corenumerator "quickinvoice/internal/core/numerator"
	"quickinvoice/internal/core/tx"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/infrastructure/http/v1/handlers"
	infranumerator "quickinvoice/internal/infrastructure/numerator"
	"quickinvoice/internal/infrastructure/storage/memory"
	"quickinvoice/internal/infrastructure/storage/postgres"
	"quickinvoice/internal/infrastructure/storage/postgres/order_repo"
	"quickinvoice/internal/infrastructure/storage/postgres/seller_repo"
	"quickinvoice/pkg/logger"
)

// storage bundles the repositories of one driver.
type storage struct {
	orders    order.Repository
	sellers   seller.Repository
	counters  corenumerator.CounterStore
	txManager tx.Manager

	// health is nil for the memory driver.
	health handlers.Database
	close  func()
}

func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStorage(ctx context.Context, cfg *config.Configuration) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		return &storage{
			orders:    memory.NewOrderStore(),
			sellers:   memory.NewSellerStore(),
			counters:  memory.NewCounterStore(),
			txManager: tx.Direct{},
		}, nil

	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*storage, error) {
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:             cfg.DSN,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
	})
	if err != nil {
		return nil, err
	}
	txm := postgres.NewTxManager(pool)

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, txm); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool.LogStats(ctx)

	return &storage{
		orders:    order_repo.New(txm),
		sellers:   seller_repo.New(txm),
		counters:  infranumerator.NewPostgresStore(txm),
		txManager: txm,
		health:    pool,
		close:     pool.Close,
	}, nil
}
