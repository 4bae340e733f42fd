package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/id"
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain"
	"quickinvoice/internal/domain/order"
)

// OrderStore keeps orders in a map keyed by order id.
// Stored values are copies; callers never share memory with the store.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[id.ID]*order.Order
}

var _ order.Repository = (*OrderStore)(nil)

// NewOrderStore creates an empty order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[id.ID]*order.Order)}
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return &c
}

// Create implements order.Repository.
func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return apperror.NewConflict("order already exists").WithDetail("id", o.ID)
	}
	for _, existing := range s.orders {
		if existing.SellerID == o.SellerID && existing.OrderNumber == o.OrderNumber {
			return apperror.NewConflict("order number already used").
				WithDetail("orderNumber", o.OrderNumber)
		}
	}

	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// GetByID implements order.Repository.
func (s *OrderStore) GetByID(ctx context.Context, sellerID string, orderID id.ID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok || o.SellerID != sellerID {
		return nil, apperror.NewNotFound("order", orderID)
	}
	return cloneOrder(o), nil
}

// UpdateStatus implements order.Repository.
func (s *OrderStore) UpdateStatus(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[o.ID]
	if !ok || stored.SellerID != o.SellerID {
		return apperror.NewNotFound("order", o.ID)
	}
	if stored.Version != o.Version-1 {
		return apperror.NewConcurrentModification("order", o.ID)
	}

	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	stored.Version = o.Version
	return nil
}

// Delete implements order.Repository.
func (s *OrderStore) Delete(ctx context.Context, sellerID string, orderID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.SellerID != sellerID {
		return apperror.NewNotFound("order", orderID)
	}
	delete(s.orders, orderID)
	return nil
}

// List implements order.Repository.
func (s *OrderStore) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := lo.Filter(lo.Values(s.orders), func(o *order.Order, _ int) bool {
		if o.SellerID != filter.SellerID {
			return false
		}
		return filter.Status == nil || o.Status == *filter.Status
	})

	// Newest first; ids are time-ordered v7 values and break ties.
	slices.SortFunc(matched, func(a, b *order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(b.ID[:], a.ID[:])
	})

	page := filter.ListFilter.Normalize()
	total := len(matched)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)

	return domain.ListResult[*order.Order]{
		Items:      lo.Map(matched[start:end], func(o *order.Order, _ int) *order.Order { return cloneOrder(o) }),
		TotalCount: int64(total),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}

// Stats implements order.Repository.
func (s *OrderStore) Stats(ctx context.Context, sellerID string) (order.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := order.Stats{Revenue: types.Zero()}
	for _, o := range s.orders {
		if o.SellerID != sellerID {
			continue
		}
		stats.Total++
		switch o.Status {
		case order.StatusUnpaid:
			stats.Unpaid++
		case order.StatusPaid:
			stats.Paid++
			stats.Revenue = stats.Revenue.Add(o.Total)
		case order.StatusDelivered:
			stats.Delivered++
		}
	}
	return stats, nil
}
