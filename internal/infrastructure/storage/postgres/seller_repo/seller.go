// Package seller_repo provides the PostgreSQL seller profile repository.
package seller_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/infrastructure/storage/postgres"
)

const tableName = "sellers"

// Repo implements seller.Repository.
type Repo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// New creates a seller repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[seller.Seller](),
	}
}

var _ seller.Repository = (*Repo)(nil)

// GetByID retrieves a seller profile.
func (r *Repo) GetByID(ctx context.Context, sellerID string) (*seller.Seller, error) {
	sql, args, err := postgres.Builder().
		Select(r.selectCols...).
		From(tableName).
		Where(squirrel.Eq{"id": sellerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s seller.Seller
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("seller", sellerID)
		}
		return nil, fmt.Errorf("get seller: %w", err)
	}
	return &s, nil
}

func (r *Repo) upsertQuery(s *seller.Seller) squirrel.InsertBuilder {
	data := postgres.PickColumns(postgres.StructToMap(s), r.selectCols)

	// created_at is written once; every other column follows the latest profile.
	updates := make([]string, 0, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "created_at" {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}

	return postgres.Builder().
		Insert(tableName).
		SetMap(data).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(updates, ", "))
}

// Upsert inserts or replaces a seller profile.
func (r *Repo) Upsert(ctx context.Context, s *seller.Seller) error {
	sql, args, err := r.upsertQuery(s).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", tableName, err)
	}
	return nil
}
