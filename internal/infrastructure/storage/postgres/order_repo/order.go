// Package order_repo provides the PostgreSQL order repository.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/id"
	"quickinvoice/internal/domain"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/infrastructure/storage/postgres"
)

const (
	tableName             = "orders"
	sellerNumberUniqueKey = "orders_seller_number_key"
)

// Repo implements order.Repository.
type Repo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// New creates an order repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[order.Order](),
	}
}

var _ order.Repository = (*Repo)(nil)

func (r *Repo) insertQuery(o *order.Order) squirrel.InsertBuilder {
	data := postgres.PickColumns(postgres.StructToMap(o), r.selectCols)
	return postgres.Builder().
		Insert(tableName).
		SetMap(data)
}

// Create inserts a new order.
func (r *Repo) Create(ctx context.Context, o *order.Order) error {
	sql, args, err := r.insertQuery(o).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, sellerNumberUniqueKey) {
			return apperror.NewConflict("order number already in use").
				WithDetail("orderNumber", o.OrderNumber).
				WithCause(err)
		}
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewConflict("order already exists").
				WithDetail("id", o.ID.String()).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

func (r *Repo) baseSelect(sellerID string) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(tableName).
		Where(squirrel.Eq{"seller_id": sellerID})
}

// GetByID retrieves one of the seller's orders.
func (r *Repo) GetByID(ctx context.Context, sellerID string, orderID id.ID) (*order.Order, error) {
	sql, args, err := r.baseSelect(sellerID).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o order.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *Repo) updateStatusQuery(o *order.Order) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(tableName).
		Set("status", o.Status).
		Set("updated_at", o.UpdatedAt).
		Set("version", o.Version).
		Where(squirrel.Eq{"id": o.ID, "seller_id": o.SellerID}).
		Where(squirrel.Eq{"version": o.Version - 1})
}

// UpdateStatus persists the status change with optimistic locking.
func (r *Repo) UpdateStatus(ctx context.Context, o *order.Order) error {
	sql, args, err := r.updateStatusQuery(o).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("order", o.ID)
	}
	return nil
}

// Delete hard-deletes an order. Its number is not released.
func (r *Repo) Delete(ctx context.Context, sellerID string, orderID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(tableName).
		Where(squirrel.Eq{"id": orderID, "seller_id": sellerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}
	return nil
}

func (r *Repo) applyFilter(q squirrel.SelectBuilder, filter order.ListFilter) squirrel.SelectBuilder {
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	return q
}

func (r *Repo) listQuery(filter order.ListFilter) squirrel.SelectBuilder {
	return r.applyFilter(r.baseSelect(filter.SellerID), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
}

func (r *Repo) countQuery(filter order.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("COUNT(*)").
		From(tableName).
		Where(squirrel.Eq{"seller_id": filter.SellerID})
	return r.applyFilter(q, filter)
}

// List returns a page of the seller's orders, newest first, with the total count.
func (r *Repo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	result := domain.ListResult[*order.Order]{
		Items:  []*order.Order{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	err := r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		sql, args, err := r.countQuery(filter).ToSql()
		if err != nil {
			return fmt.Errorf("build count: %w", err)
		}
		if err := querier.QueryRow(ctx, sql, args...).Scan(&result.TotalCount); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}

		sql, args, err = r.listQuery(filter).ToSql()
		if err != nil {
			return fmt.Errorf("build list: %w", err)
		}
		if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	return result, err
}

func statsQuery(sellerID string) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE status = 'unpaid') AS unpaid",
			"COUNT(*) FILTER (WHERE status = 'paid') AS paid",
			"COUNT(*) FILTER (WHERE status = 'delivered') AS delivered",
			"COALESCE(SUM(total) FILTER (WHERE status = 'paid'), 0) AS revenue",
		).
		From(tableName).
		Where(squirrel.Eq{"seller_id": sellerID})
}

// Stats aggregates the seller's orders by status. Revenue counts paid orders only.
func (r *Repo) Stats(ctx context.Context, sellerID string) (order.Stats, error) {
	var stats order.Stats

	sql, args, err := statsQuery(sellerID).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build stats: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &stats, sql, args...); err != nil {
		return stats, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}
