// Package order provides the Order entity, its status lifecycle and services.
package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/entity"
	"quickinvoice/internal/core/types"
)

// LineItem is one purchased product/quantity/price triple.
type LineItem struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice types.Money `json:"price"`
}

// Total returns quantity × unit price rounded to 2 places.
func (li LineItem) Total() types.Money {
	return types.LineTotal(li.Quantity, li.UnitPrice)
}

// Order is a seller's sales order.
// OrderNumber is assigned once at creation and never changes.
type Order struct {
	entity.BaseDocument

	SellerID    string `db:"seller_id" json:"sellerId"`
	OrderNumber string `db:"order_number" json:"orderNumber"`

	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`

	// Items are kept in input order; stored as a JSON array.
	Items []LineItem `db:"items" json:"items"`

	DeliveryFee types.Money `db:"delivery_fee" json:"deliveryFee"`

	// Derived from Items and DeliveryFee by Recalculate
	Subtotal types.Money `db:"subtotal" json:"subtotal"`
	Total    types.Money `db:"total" json:"total"`

	Status        Status `db:"status" json:"status"`
	PaymentMethod string `db:"payment_method" json:"paymentMethod,omitempty"`
	Notes         string `db:"notes" json:"notes,omitempty"`
}

// NewOrder creates an unpaid order with derived totals computed.
func NewOrder(sellerID string, customerName, customerPhone string, items []LineItem, deliveryFee types.Money, now time.Time) *Order {
	o := &Order{
		BaseDocument:  entity.NewBaseDocument(now),
		SellerID:      sellerID,
		CustomerName:  strings.TrimSpace(customerName),
		CustomerPhone: strings.TrimSpace(customerPhone),
		Items:         items,
		DeliveryFee:   deliveryFee,
		Status:        StatusUnpaid,
	}
	o.Recalculate()
	return o
}

// ComputeSubtotal returns round2(Σ quantity × unit price), rounding once.
func ComputeSubtotal(items []LineItem) types.Money {
	sum := types.Zero()
	for _, item := range items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return types.Round2(sum)
}

// ComputeTotal returns round2(subtotal + deliveryFee).
func ComputeTotal(subtotal, deliveryFee types.Money) types.Money {
	return types.Round2(subtotal.Add(deliveryFee))
}

// Recalculate derives Subtotal and Total. Called on every write;
// client-supplied derived values are overwritten.
func (o *Order) Recalculate() {
	o.Subtotal = ComputeSubtotal(o.Items)
	o.Total = ComputeTotal(o.Subtotal, o.DeliveryFee)
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if strings.TrimSpace(o.SellerID) == "" {
		return apperror.NewValidation("seller is required").
			WithDetail("field", "sellerId")
	}

	if strings.TrimSpace(o.CustomerName) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}

	if strings.TrimSpace(o.CustomerPhone) == "" {
		return apperror.NewValidation("customer phone is required").
			WithDetail("field", "customerPhone")
	}

	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			return apperror.NewValidation("item name is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		// Whole-cent prices keep every displayed line total exact,
		// so the table always sums to the subtotal.
		if !types.IsWholeCents(item.UnitPrice) {
			return apperror.NewValidation("price must not have more than 2 decimal places").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	if o.DeliveryFee.IsNegative() {
		return apperror.NewValidation("delivery fee must not be negative").
			WithDetail("field", "deliveryFee")
	}
	if !types.IsWholeCents(o.DeliveryFee) {
		return apperror.NewValidation("delivery fee must not have more than 2 decimal places").
			WithDetail("field", "deliveryFee")
	}

	if !o.Status.Valid() {
		return apperror.NewValidation("unknown order status").
			WithDetail("field", "status")
	}

	return nil
}

var _ entity.Validatable = (*Order)(nil)
