package numerator

import (
	"context"
)

// Generator produces order numbers, one seller-scoped sequence per seller.
// This is the domain contract - implementations live in infrastructure layer.
//
// Implementations must obtain their querier from the transaction in ctx so that
// "advance counter" and "create order" commit or roll back together.
type Generator interface {
	// Next advances the seller's counter and returns the formatted number.
	// Concurrent calls for one seller never return the same number.
	Next(ctx context.Context, sellerID string) (string, error)

	// Peek returns the last issued counter value (0 before the first order).
	Peek(ctx context.Context, sellerID string) (int64, error)
}

// CounterStore is the storage contract for per-seller sequence counters.
type CounterStore interface {
	// Load returns the current value and whether the counter row exists.
	Load(ctx context.Context, sellerID string) (value int64, exists bool, err error)

	// CompareAndSwap writes next only if the counter still holds old.
	// When exists is false the row is created only if still absent.
	// Returns false (and no error) when another writer got there first.
	CompareAndSwap(ctx context.Context, sellerID string, old, next int64, exists bool) (bool, error)

	// Increment atomically adds one and returns the new value,
	// creating the counter at 1 if absent.
	Increment(ctx context.Context, sellerID string) (int64, error)
}
