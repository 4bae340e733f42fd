package order

import (
	"context"

	"quickinvoice/internal/core/id"
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain"
)

// Repository defines persistence operations for orders.
// Every read and write is scoped to a seller.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, sellerID string, orderID id.ID) (*Order, error)

	// UpdateStatus persists Status, UpdatedAt and Version.
	// Fails with a concurrent-modification error if the stored version is not o.Version-1.
	UpdateStatus(ctx context.Context, o *Order) error

	Delete(ctx context.Context, sellerID string, orderID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)
	Stats(ctx context.Context, sellerID string) (Stats, error)
}

// ListFilter for listing a seller's orders, newest first.
type ListFilter struct {
	domain.ListFilter

	SellerID string
	Status   *Status
}

// Stats summarises a seller's orders for the dashboard.
type Stats struct {
	Total     int64       `db:"total" json:"total"`
	Unpaid    int64       `db:"unpaid" json:"unpaid"`
	Paid      int64       `db:"paid" json:"paid"`
	Delivered int64       `db:"delivered" json:"delivered"`
	Revenue   types.Money `db:"revenue" json:"revenue"`

	// NumbersIssued is the seller's counter value. It exceeds Total
	// once orders have been deleted, since numbers are never reused.
	NumbersIssued int64 `db:"-" json:"numbersIssued"`
}
