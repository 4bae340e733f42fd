package numerator

import (
	"context"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextFunc func(ctx context.Context, sellerID string) (string, error)
	PeekFunc func(ctx context.Context, sellerID string) (int64, error)
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, sellerID string) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, sellerID)
	}
	return "INV-0001", nil
}

// Peek implements Generator.
func (m *MockGenerator) Peek(ctx context.Context, sellerID string) (int64, error) {
	if m.PeekFunc != nil {
		return m.PeekFunc(ctx, sellerID)
	}
	return 0, nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
