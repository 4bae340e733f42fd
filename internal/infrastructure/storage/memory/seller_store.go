package memory

import (
	"context"
	"sync"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/domain/seller"
)

// SellerStore keeps seller profiles in a map.
type SellerStore struct {
	mu      sync.RWMutex
	sellers map[string]seller.Seller
}

var _ seller.Repository = (*SellerStore)(nil)

// NewSellerStore creates an empty seller store.
func NewSellerStore() *SellerStore {
	return &SellerStore{sellers: make(map[string]seller.Seller)}
}

// GetByID implements seller.Repository.
func (s *SellerStore) GetByID(ctx context.Context, sellerID string) (*seller.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel, ok := s.sellers[sellerID]
	if !ok {
		return nil, apperror.NewNotFound("seller", sellerID)
	}
	return &sel, nil
}

// Upsert implements seller.Repository.
func (s *SellerStore) Upsert(ctx context.Context, sel *seller.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sellers[sel.ID]; ok {
		sel.CreatedAt = existing.CreatedAt
	}
	s.sellers[sel.ID] = *sel
	return nil
}
