package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "quickinvoice/internal/core/numerator"
	"quickinvoice/internal/infrastructure/storage/postgres"
)

// QuerierProvider returns the transaction in ctx, or the pool.
// Satisfied by *postgres.TxManager.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) postgres.Querier
}

// PostgresStore keeps sequence counters in the sequence_counters table.
type PostgresStore struct {
	db QuerierProvider
}

var _ corenumerator.CounterStore = (*PostgresStore)(nil)

// NewPostgresStore creates a counter store on top of db.
func NewPostgresStore(db QuerierProvider) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load implements numerator.CounterStore.
func (s *PostgresStore) Load(ctx context.Context, sellerID string) (int64, bool, error) {
	const q = `SELECT last_number FROM sequence_counters WHERE seller_id = $1`

	var v int64
	err := s.db.GetQuerier(ctx).QueryRow(ctx, q, sellerID).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load sequence counter: %w", err)
	}
	return v, true, nil
}

// CompareAndSwap implements numerator.CounterStore.
// The conditional UPDATE re-checks last_number after any concurrent commit,
// so exactly one of two racing writers affects a row.
func (s *PostgresStore) CompareAndSwap(ctx context.Context, sellerID string, old, next int64, exists bool) (bool, error) {
	querier := s.db.GetQuerier(ctx)

	if !exists {
		const insert = `INSERT INTO sequence_counters (seller_id, last_number, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (seller_id) DO NOTHING`
		tag, err := querier.Exec(ctx, insert, sellerID, next)
		if err != nil {
			return false, fmt.Errorf("create sequence counter: %w", err)
		}
		return tag.RowsAffected() == 1, nil
	}

	const update = `UPDATE sequence_counters
		SET last_number = $3, updated_at = NOW()
		WHERE seller_id = $1 AND last_number = $2`
	tag, err := querier.Exec(ctx, update, sellerID, old, next)
	if err != nil {
		return false, fmt.Errorf("swap sequence counter: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Increment implements numerator.CounterStore.
func (s *PostgresStore) Increment(ctx context.Context, sellerID string) (int64, error) {
	const q = `INSERT INTO sequence_counters (seller_id, last_number, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (seller_id)
		DO UPDATE SET last_number = sequence_counters.last_number + 1, updated_at = NOW()
		RETURNING last_number`

	var v int64
	if err := s.db.GetQuerier(ctx).QueryRow(ctx, q, sellerID).Scan(&v); err != nil {
		return 0, fmt.Errorf("increment sequence counter: %w", err)
	}
	return v, nil
}
