// Package memory provides in-process storage used when no database is configured
// and by service-level tests.
package memory

import (
	"context"
	"sync"

	"quickinvoice/internal/core/numerator"
)

// CounterStore keeps per-seller sequence counters in a map.
// Every method is linearizable under a single mutex.
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

var _ numerator.CounterStore = (*CounterStore)(nil)

// NewCounterStore creates an empty counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{counters: make(map[string]int64)}
}

// Load implements numerator.CounterStore.
func (s *CounterStore) Load(ctx context.Context, sellerID string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.counters[sellerID]
	return v, ok, nil
}

// CompareAndSwap implements numerator.CounterStore.
func (s *CounterStore) CompareAndSwap(ctx context.Context, sellerID string, old, next int64, exists bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.counters[sellerID]
	if ok != exists || current != old {
		return false, nil
	}
	s.counters[sellerID] = next
	return true, nil
}

// Increment implements numerator.CounterStore.
func (s *CounterStore) Increment(ctx context.Context, sellerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[sellerID]++
	return s.counters[sellerID], nil
}

// Set overwrites a counter. Used to seed data and in tests.
func (s *CounterStore) Set(sellerID string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[sellerID] = value
}
