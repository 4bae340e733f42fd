// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, never on a concrete driver.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Direct runs fn without a surrounding transaction.
// Used by the in-memory storage driver, where each store call is already atomic.
type Direct struct{}

// RunInTransaction implements Manager.
func (Direct) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ Manager = Direct{}
