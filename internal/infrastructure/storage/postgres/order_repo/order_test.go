package order_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain"
	"quickinvoice/internal/domain/order"
)

func sampleOrder() *order.Order {
	o := order.NewOrder("seller-1", "Kofi", "0244123456", []order.LineItem{
		{Name: "Rice", Quantity: 2, UnitPrice: types.MustMoney("15.00")},
	}, types.MustMoney("5"), time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	o.OrderNumber = "INV-0001"
	return o
}

func TestRepo_SelectColumns(t *testing.T) {
	r := New(nil)

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at",
		"seller_id", "order_number", "customer_name", "customer_phone",
		"items", "delivery_fee", "subtotal", "total",
		"status", "payment_method", "notes",
	}, r.selectCols)
}

func TestRepo_InsertQuery(t *testing.T) {
	r := New(nil)
	o := sampleOrder()

	sql, args, err := r.insertQuery(o).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO orders ("))
	assert.Contains(t, sql, "order_number")
	assert.Contains(t, sql, "items")
	assert.Len(t, args, len(r.selectCols))
	assert.Contains(t, args, "INV-0001")
	assert.Contains(t, args, o.ID)
}

func TestRepo_UpdateStatusQuery(t *testing.T) {
	r := New(nil)
	o := sampleOrder()
	o.Status = order.StatusPaid
	o.Touch(o.CreatedAt.Add(time.Minute))

	sql, args, err := r.updateStatusQuery(o).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE orders SET status = $1, updated_at = $2, version = $3 WHERE id = $4 AND seller_id = $5 AND version = $6",
		sql)
	assert.Equal(t, []any{order.StatusPaid, o.UpdatedAt, 2, o.ID, "seller-1", 1}, args)
}

func TestRepo_ListQuery(t *testing.T) {
	r := New(nil)
	paid := order.StatusPaid
	filter := order.ListFilter{
		ListFilter: domain.ListFilter{Limit: 20, Offset: 40},
		SellerID:   "seller-1",
		Status:     &paid,
	}

	sql, args, err := r.listQuery(filter).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(sql,
		"FROM orders WHERE seller_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40"), sql)
	assert.Equal(t, []any{"seller-1", order.StatusPaid}, args)

	sql, args, err = r.countQuery(filter).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders WHERE seller_id = $1 AND status = $2", sql)
	assert.Equal(t, []any{"seller-1", order.StatusPaid}, args)
}

func TestRepo_ListQueryWithoutStatus(t *testing.T) {
	r := New(nil)

	sql, args, err := r.countQuery(order.ListFilter{SellerID: "seller-1"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders WHERE seller_id = $1", sql)
	assert.Equal(t, []any{"seller-1"}, args)
}

func TestStatsQuery(t *testing.T) {
	sql, args, err := statsQuery("seller-1").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "COUNT(*) FILTER (WHERE status = 'paid') AS paid")
	assert.Contains(t, sql, "COALESCE(SUM(total) FILTER (WHERE status = 'paid'), 0) AS revenue")
	assert.True(t, strings.HasSuffix(sql, "FROM orders WHERE seller_id = $1"))
	assert.Equal(t, []any{"seller-1"}, args)
}
