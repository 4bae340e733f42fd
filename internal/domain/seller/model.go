// Package seller provides the seller branding profile.
package seller

import (
	"context"
	"strings"
	"time"

	"quickinvoice/internal/core/apperror"
)

// Tier is the subscription tier of a seller.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// Seller is the account holder's branding profile.
// It is changed only through account settings, never by the order flow.
type Seller struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email,omitempty"`

	SubscriptionTier      Tier       `db:"subscription_tier" json:"subscriptionTier"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at" json:"subscriptionExpiresAt,omitempty"`

	BusinessName      string `db:"business_name" json:"businessName,omitempty"`
	Phone             string `db:"phone" json:"phone,omitempty"`
	MobileMoneyNumber string `db:"mobile_money_number" json:"mobileMoneyNumber,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsPremiumActive reports whether the paid tier covers the instant at.
// Expiry is exclusive: a subscription ending exactly at `at` is not active.
func (s *Seller) IsPremiumActive(at time.Time) bool {
	if s == nil || s.SubscriptionTier != TierPremium || s.SubscriptionExpiresAt == nil {
		return false
	}
	return s.SubscriptionExpiresAt.After(at)
}

// HasContact reports whether any seller contact field is set.
func (s *Seller) HasContact() bool {
	if s == nil {
		return false
	}
	return strings.TrimSpace(s.BusinessName) != "" ||
		strings.TrimSpace(s.Phone) != "" ||
		strings.TrimSpace(s.MobileMoneyNumber) != ""
}

// Validate implements entity.Validatable.
func (s *Seller) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.ID) == "" {
		return apperror.NewValidation("seller id is required").
			WithDetail("field", "id")
	}
	if !s.SubscriptionTier.Valid() {
		return apperror.NewValidation("unknown subscription tier").
			WithDetail("field", "subscriptionTier")
	}
	return nil
}
