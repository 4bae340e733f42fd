package order

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/types"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func riceAndOil() []LineItem {
	return []LineItem{
		{Name: "Rice", Quantity: 2, UnitPrice: types.MustMoney("15.00")},
		{Name: "Oil", Quantity: 1, UnitPrice: types.MustMoney("30.00")},
	}
}

func TestNewOrder_Totals(t *testing.T) {
	o := NewOrder("seller-1", "Kofi", "0244123456", riceAndOil(), types.MustMoney("5.00"), testNow)

	assert.Equal(t, "60.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "65.00", o.Total.StringFixed(2))
	assert.Equal(t, StatusUnpaid, o.Status)
	assert.Equal(t, 1, o.Version)
	assert.Equal(t, testNow, o.CreatedAt)
	assert.Equal(t, testNow, o.UpdatedAt)
}

func TestOrder_RecalculateOverridesClientValues(t *testing.T) {
	o := NewOrder("seller-1", "Kofi", "0244123456", riceAndOil(), types.Zero(), testNow)
	o.Subtotal = types.MustMoney("1.00")
	o.Total = types.MustMoney("999.99")

	o.Recalculate()

	assert.Equal(t, "60.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "60.00", o.Total.StringFixed(2))
}

func TestComputeTotals_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(1<<32 | 2))

	// Prices carry 2 to 4 fractional digits, so sub-cent and half-cent
	// values like 0.005 and 0.335 are drawn alongside whole cents.
	price := func() types.Money {
		places := int32(2 + rng.Intn(3))
		return decimal.New(rng.Int63n(10_000_000), -places)
	}

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(8)
		items := make([]LineItem, n)
		expected := types.Zero()
		for j := range items {
			qty := 1 + rng.Intn(20)
			p := price()
			items[j] = LineItem{Name: "item", Quantity: qty, UnitPrice: p}
			expected = expected.Add(p.Mul(decimal.NewFromInt(int64(qty))))
		}
		fee := types.MoneyFromCents(rng.Int63n(5000))

		subtotal := ComputeSubtotal(items)
		total := ComputeTotal(subtotal, fee)

		assert.True(t, subtotal.Equal(types.Round2(expected)), "subtotal mismatch at %d: %s vs %s", i, subtotal, expected)
		assert.True(t, total.Equal(types.Round2(subtotal.Add(fee))), "total mismatch at %d", i)
	}
}

func TestComputeSubtotal_RoundsOnce(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  string
	}{
		{
			name: "two half cents",
			items: []LineItem{
				{Name: "a", Quantity: 1, UnitPrice: types.MustMoney("0.005")},
				{Name: "b", Quantity: 1, UnitPrice: types.MustMoney("0.005")},
			},
			want: "0.01",
		},
		{
			name: "three at 0.335",
			items: []LineItem{
				{Name: "a", Quantity: 3, UnitPrice: types.MustMoney("0.335")},
				{Name: "b", Quantity: 3, UnitPrice: types.MustMoney("0.335")},
			},
			want: "2.01",
		},
		{
			name:  "whole cents",
			items: riceAndOil(),
			want:  "60.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSubtotal(tt.items).StringFixed(2))
		})
	}
}

func TestLineItem_TotalRoundsHalfAwayFromZero(t *testing.T) {
	item := LineItem{Name: "Sugar", Quantity: 3, UnitPrice: types.MustMoney("0.335")}
	assert.Equal(t, "1.01", item.Total().StringFixed(2))
}

func TestOrder_Validate(t *testing.T) {
	valid := func() *Order {
		return NewOrder("seller-1", "Kofi", "0244123456", riceAndOil(), types.MustMoney("5.00"), testNow)
	}

	require.NoError(t, valid().Validate(context.Background()))

	tests := []struct {
		name   string
		mutate func(o *Order)
		field  string
	}{
		{"empty items", func(o *Order) { o.Items = nil }, "items"},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }, "items"},
		{"negative quantity", func(o *Order) { o.Items[1].Quantity = -1 }, "items"},
		{"negative price", func(o *Order) { o.Items[0].UnitPrice = types.MustMoney("-0.01") }, "items"},
		{"empty item name", func(o *Order) { o.Items[0].Name = "  " }, "items"},
		{"sub-cent price", func(o *Order) { o.Items[1].UnitPrice = types.MustMoney("0.335") }, "items"},
		{"negative delivery fee", func(o *Order) { o.DeliveryFee = types.MustMoney("-1") }, "deliveryFee"},
		{"sub-cent delivery fee", func(o *Order) { o.DeliveryFee = types.MustMoney("0.005") }, "deliveryFee"},
		{"empty customer name", func(o *Order) { o.CustomerName = "" }, "customerName"},
		{"empty customer phone", func(o *Order) { o.CustomerPhone = " " }, "customerPhone"},
		{"missing seller", func(o *Order) { o.SellerID = "" }, "sellerId"},
		{"bad status", func(o *Order) { o.Status = "refunded" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)

			err := o.Validate(context.Background())
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestOrder_ValidateAllowsTrailingZeros(t *testing.T) {
	o := NewOrder("seller-1", "Kofi", "0244123456",
		[]LineItem{{Name: "Bread", Quantity: 2, UnitPrice: types.MustMoney("1.500")}}, types.MustMoney("2.0000"), testNow)
	assert.NoError(t, o.Validate(context.Background()))
	assert.Equal(t, "5.00", o.Total.StringFixed(2))
}

func TestOrder_ValidateAllowsFreeItems(t *testing.T) {
	o := NewOrder("seller-1", "Kofi", "0244123456",
		[]LineItem{{Name: "Sample", Quantity: 1, UnitPrice: types.Zero()}}, types.Zero(), testNow)
	assert.NoError(t, o.Validate(context.Background()))
}
