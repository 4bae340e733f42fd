// Package entity provides core domain entities.
package entity

import (
	"context"
	"time"

	"quickinvoice/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseDocument contains the identity and audit fields shared by persisted documents.
type BaseDocument struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseDocument creates a new BaseDocument stamped with now.
func NewBaseDocument(now time.Time) BaseDocument {
	now = now.UTC()
	return BaseDocument{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the version and moves UpdatedAt to now.
// UpdatedAt never moves backwards, even if the caller's clock does.
func (b *BaseDocument) Touch(now time.Time) {
	now = now.UTC()
	if now.After(b.UpdatedAt) {
		b.UpdatedAt = now
	}
	b.Version++
}
