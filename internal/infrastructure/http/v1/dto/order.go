package dto

import (
	"time"

	"github.com/samber/lo"

	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/order"
)

// --- Request DTOs ---

// CreateOrderRequest represents a request to create an order.
// Subtotal and total are never accepted from clients.
type CreateOrderRequest struct {
	CustomerName  string            `json:"customerName" binding:"required"`
	CustomerPhone string            `json:"customerPhone" binding:"required"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryFee   types.Money       `json:"deliveryFee"`
	PaymentMethod string            `json:"paymentMethod,omitempty" binding:"omitempty,max=64"`
	Notes         string            `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// LineItemRequest represents one line in a create request.
type LineItemRequest struct {
	Name     string      `json:"name" binding:"required,max=200"`
	Quantity int         `json:"quantity" binding:"required,min=1"`
	Price    types.Money `json:"price"`
}

// ToInput converts the request to the service input.
func (r *CreateOrderRequest) ToInput() order.CreateInput {
	return order.CreateInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Items: lo.Map(r.Items, func(li LineItemRequest, _ int) order.LineItem {
			return order.LineItem{Name: li.Name, Quantity: li.Quantity, UnitPrice: li.Price}
		}),
		DeliveryFee:   r.DeliveryFee,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
}

// UpdateStatusRequest changes an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListQuery filters the order list.
type OrderListQuery struct {
	ListQuery
	Status string `form:"status"`
}

// --- Response DTOs ---

// LineItemResponse is one order line with its computed total.
type LineItemResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"lineTotal"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID             string             `json:"id"`
	Version        int                `json:"version"`
	OrderNumber    string             `json:"orderNumber"`
	CustomerName   string             `json:"customerName"`
	CustomerPhone  string             `json:"customerPhone"`
	Items          []LineItemResponse `json:"items"`
	DeliveryFee    string             `json:"deliveryFee"`
	Subtotal       string             `json:"subtotal"`
	Total          string             `json:"total"`
	Status         order.Status       `json:"status"`
	StatusLabel    string             `json:"statusLabel"`
	StatusSeverity order.Severity     `json:"statusSeverity"`
	PaymentMethod  string             `json:"paymentMethod,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// FromOrder converts a domain order to its response.
func FromOrder(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID.String(),
		Version:       o.Version,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Items: lo.Map(o.Items, func(li order.LineItem, _ int) LineItemResponse {
			return LineItemResponse{
				Name:      li.Name,
				Quantity:  li.Quantity,
				Price:     Amount(li.UnitPrice),
				LineTotal: Amount(li.Total()),
			}
		}),
		DeliveryFee:    Amount(o.DeliveryFee),
		Subtotal:       Amount(o.Subtotal),
		Total:          Amount(o.Total),
		Status:         o.Status,
		StatusLabel:    o.Status.Label(),
		StatusSeverity: o.Status.Severity(),
		PaymentMethod:  o.PaymentMethod,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// StatsResponse summarises a seller's orders.
type StatsResponse struct {
	Total     int64  `json:"total"`
	Unpaid    int64  `json:"unpaid"`
	Paid      int64  `json:"paid"`
	Delivered int64  `json:"delivered"`
	Revenue   string `json:"revenue"`

	NumbersIssued int64 `json:"numbersIssued"`
}

// FromStats converts domain stats to the response.
func FromStats(s order.Stats) StatsResponse {
	return StatsResponse{
		Total:     s.Total,
		Unpaid:    s.Unpaid,
		Paid:      s.Paid,
		Delivered: s.Delivered,
		Revenue:   Amount(s.Revenue),

		NumbersIssued: s.NumbersIssued,
	}
}
