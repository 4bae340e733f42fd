// Package id provides time-ordered identifiers for orders and sellers.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type shared by all entities.
type ID = uuid.UUID

// New returns a UUIDv7, falling back to v4 if the clock source fails.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error. Tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
