// Package numerator implements order auto-numbering on top of a CounterStore.
// This is the infrastructure layer - it implements core/numerator.Generator interface.
package numerator

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"quickinvoice/internal/core/apperror"
	corenumerator "quickinvoice/internal/core/numerator"
	"quickinvoice/pkg/logger"
)

// errCounterMoved signals that another writer advanced the counter between
// Load and CompareAndSwap.
var errCounterMoved = errors.New("sequence counter moved concurrently")

// Service issues per-seller order numbers.
type Service struct {
	store corenumerator.CounterStore
	cfg   corenumerator.Config
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numbering service over store.
func New(store corenumerator.CounterStore, cfg corenumerator.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Config returns the numbering configuration in use.
func (s *Service) Config() corenumerator.Config {
	return s.cfg
}

// Next generates the next order number for sellerID.
// Pattern: PREFIX-XXXX (e.g., INV-0001)
func (s *Service) Next(ctx context.Context, sellerID string) (string, error) {
	if sellerID == "" {
		return "", apperror.NewValidation("seller id is required")
	}

	var (
		num int64
		err error
	)

	switch s.cfg.Strategy {
	case corenumerator.StrategyCompareAndSwap:
		num, err = s.nextCompareAndSwap(ctx, sellerID)
	case corenumerator.StrategyAtomic:
		fallthrough
	default:
		num, err = s.nextAtomic(ctx, sellerID)
	}

	if err != nil {
		return "", err
	}

	return s.cfg.Format(num), nil
}

// Peek returns the last issued value for sellerID without advancing it.
func (s *Service) Peek(ctx context.Context, sellerID string) (int64, error) {
	value, _, err := s.store.Load(ctx, sellerID)
	if err != nil {
		return 0, apperror.NewSequenceUnavailable(sellerID, err)
	}
	return value, nil
}

// nextAtomic advances the counter with a single store-level increment.
func (s *Service) nextAtomic(ctx context.Context, sellerID string) (int64, error) {
	num, err := s.store.Increment(ctx, sellerID)
	if err != nil {
		return 0, apperror.NewSequenceUnavailable(sellerID, err)
	}
	return num, nil
}

// nextCompareAndSwap runs a bounded read/compare/write loop.
// Store failures are permanent; only lost races are retried.
func (s *Service) nextCompareAndSwap(ctx context.Context, sellerID string) (int64, error) {
	var (
		next     int64
		attempts int
	)

	op := func() error {
		attempts++

		current, exists, err := s.store.Load(ctx, sellerID)
		if err != nil {
			return backoff.Permanent(err)
		}

		swapped, err := s.store.CompareAndSwap(ctx, sellerID, current, current+1, exists)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !swapped {
			return errCounterMoved
		}

		next = current + 1
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug(ctx, "sequence conflict, retrying",
			"seller_id", sellerID,
			"attempt", attempts,
			"wait", wait,
			"error", err)
	}

	if err := backoff.RetryNotify(op, s.retryPolicy(ctx), notify); err != nil {
		logger.Warn(ctx, "sequence unavailable",
			"seller_id", sellerID,
			"attempts", attempts,
			"error", err)
		return 0, apperror.NewSequenceUnavailable(sellerID, err).
			WithDetail("attempts", attempts)
	}

	return next, nil
}

func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if s.cfg.InitialBackoff > 0 {
		b.InitialInterval = s.cfg.InitialBackoff
	}
	if s.cfg.MaxBackoff > 0 {
		b.MaxInterval = s.cfg.MaxBackoff
	}
	// Bounded by retry count, not by wall clock.
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.MaxRetries), ctx)
}
