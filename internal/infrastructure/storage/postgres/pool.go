// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quickinvoice/pkg/logger"
)

// PoolConfig sizes the connection pool. Zero values keep pgxpool defaults.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Pool is the shared pgx connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects and verifies the database is reachable.
// Sessions run in UTC so timestamptz values round-trip unchanged.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "quickinvoice"
	pc.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases every connection. Safe on a nil pool.
func (p *Pool) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping checks the database is reachable. Used by /health/ready.
func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("pool is closed")
	}
	return p.Pool.Ping(ctx)
}

// PoolStats is the pool snapshot reported by /health/info.
type PoolStats struct {
	TotalConns      int32         `json:"totalConns"`
	AcquiredConns   int32         `json:"acquiredConns"`
	IdleConns       int32         `json:"idleConns"`
	MaxConns        int32         `json:"maxConns"`
	AcquireCount    int64         `json:"acquireCount"`
	AcquireDuration time.Duration `json:"acquireDurationNs"`
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	s := p.Stat()
	return PoolStats{
		TotalConns:      s.TotalConns(),
		AcquiredConns:   s.AcquiredConns(),
		IdleConns:       s.IdleConns(),
		MaxConns:        s.MaxConns(),
		AcquireCount:    s.AcquireCount(),
		AcquireDuration: s.AcquireDuration(),
	}
}

// LogStats writes the pool snapshot at info level.
func (p *Pool) LogStats(ctx context.Context) {
	s := p.Stats()
	logger.Info(ctx, "database pool ready",
		"total", s.TotalConns,
		"idle", s.IdleConns,
		"max", s.MaxConns,
	)
}
