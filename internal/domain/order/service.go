package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickinvoice/internal/core/apperror"
	"quickinvoice/internal/core/id"
	"quickinvoice/internal/core/numerator"
	"quickinvoice/internal/core/tx"
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain"
	"quickinvoice/pkg/logger"
)

// Service provides business operations for orders.
type Service struct {
	repo      Repository
	numbers   numerator.Generator
	txManager tx.Manager
	policy    TransitionPolicy
	clock     func() time.Time
}

// ServiceConfig configures the order service.
type ServiceConfig struct {
	Repo      Repository
	Numbers   numerator.Generator
	TxManager tx.Manager       // Defaults to tx.Direct
	Policy    TransitionPolicy // Defaults to PermissivePolicy
	Clock     func() time.Time // Defaults to time.Now
}

// NewService creates a new order service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:      cfg.Repo,
		numbers:   cfg.Numbers,
		txManager: cfg.TxManager,
		policy:    cfg.Policy,
		clock:     cfg.Clock,
	}
	if s.txManager == nil {
		s.txManager = tx.Direct{}
	}
	if s.policy == nil {
		s.policy = PermissivePolicy{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Policy returns the status transition policy in force.
func (s *Service) Policy() TransitionPolicy {
	return s.policy
}

// CreateInput carries the seller-entered fields of a new order.
// Subtotal and total are never accepted from input.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []LineItem
	DeliveryFee   types.Money
	PaymentMethod string
	Notes         string
}

// Create validates the order, then allocates its number and persists it
// in one transaction. A failure at either step leaves nothing behind.
func (s *Service) Create(ctx context.Context, sellerID string, in CreateInput) (*Order, error) {
	o := NewOrder(sellerID, in.CustomerName, in.CustomerPhone, in.Items, in.DeliveryFee, s.clock())
	o.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	o.Notes = in.Notes

	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.Next(ctx, sellerID)
		if err != nil {
			return err
		}
		o.OrderNumber = number

		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created", "id", o.ID, "number", o.OrderNumber, "total", o.Total.StringFixed(2))
	return o, nil
}

// GetByID retrieves one of the seller's orders.
func (s *Service) GetByID(ctx context.Context, sellerID string, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, sellerID, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, err
	}
	return o, nil
}

// List returns the seller's orders, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	if filter.SellerID == "" {
		return domain.ListResult[*Order]{}, apperror.NewValidation("seller id is required")
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves an order to next under the configured policy.
func (s *Service) UpdateStatus(ctx context.Context, sellerID string, orderID id.ID, next Status) (*Order, error) {
	var updated *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.GetByID(ctx, sellerID, orderID)
		if err != nil {
			return err
		}

		from := o.Status
		if err := ApplyStatus(o, next, s.policy, s.clock()); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(ctx, o); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		logger.Info(ctx, "order status changed",
			"id", o.ID, "number", o.OrderNumber, "from", from, "to", o.Status)
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes an order. The seller's sequence counter is not touched,
// so its number is never reissued.
func (s *Service) Delete(ctx context.Context, sellerID string, orderID id.ID) error {
	if err := s.repo.Delete(ctx, sellerID, orderID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("order", orderID)
		}
		return err
	}
	logger.Info(ctx, "order deleted", "id", orderID)
	return nil
}

// Stats returns dashboard counters for the seller.
func (s *Service) Stats(ctx context.Context, sellerID string) (Stats, error) {
	if sellerID == "" {
		return Stats{}, apperror.NewValidation("seller id is required")
	}
	stats, err := s.repo.Stats(ctx, sellerID)
	if err != nil {
		return Stats{}, err
	}
	if stats.NumbersIssued, err = s.numbers.Peek(ctx, sellerID); err != nil {
		return Stats{}, fmt.Errorf("peek order counter: %w", err)
	}
	return stats, nil
}
