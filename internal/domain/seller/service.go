package seller

import (
	"context"
	"strings"
	"time"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/pkg/logger"
)

// Repository defines persistence operations for sellers.
type Repository interface {
	GetByID(ctx context.Context, sellerID string) (*Seller, error)

	// Upsert creates the profile or replaces its editable fields.
	Upsert(ctx context.Context, s *Seller) error
}

// Service provides account-settings operations on the seller profile.
type Service struct {
	repo  Repository
	clock func() time.Time
}

// NewService creates a new seller service.
func NewService(repo Repository, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, clock: clock}
}

// Get returns the seller profile.
func (s *Service) Get(ctx context.Context, sellerID string) (*Seller, error) {
	sel, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("seller", sellerID)
		}
		return nil, err
	}
	return sel, nil
}

// Find returns the seller profile, or nil if the seller has none yet.
// Invoices render without branding in that case.
func (s *Service) Find(ctx context.Context, sellerID string) (*Seller, error) {
	sel, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sel, nil
}

// ProfileInput carries the fields editable from account settings.
type ProfileInput struct {
	Email             string
	BusinessName      string
	Phone             string
	MobileMoneyNumber string
}

// UpdateProfile edits display fields. Subscription fields are not editable here.
func (s *Service) UpdateProfile(ctx context.Context, sellerID string, in ProfileInput) (*Seller, error) {
	now := s.clock().UTC()

	sel, err := s.Find(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		sel = &Seller{ID: sellerID, SubscriptionTier: TierFree, CreatedAt: now}
	}

	sel.Email = strings.TrimSpace(in.Email)
	sel.BusinessName = strings.TrimSpace(in.BusinessName)
	sel.Phone = strings.TrimSpace(in.Phone)
	sel.MobileMoneyNumber = strings.TrimSpace(in.MobileMoneyNumber)
	sel.UpdatedAt = now

	if err := sel.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, sel); err != nil {
		return nil, err
	}

	logger.Info(ctx, "seller profile updated", "seller_id", sellerID)
	return sel, nil
}
