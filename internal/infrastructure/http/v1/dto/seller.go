package dto

import (
	"time"

	"quickinvoice/internal/domain/seller"
)

// UpdateSellerRequest edits the seller's branding profile.
type UpdateSellerRequest struct {
	Email             string `json:"email" binding:"omitempty,email"`
	BusinessName      string `json:"businessName" binding:"omitempty,max=120"`
	Phone             string `json:"phone" binding:"omitempty,max=32"`
	MobileMoneyNumber string `json:"mobileMoneyNumber" binding:"omitempty,max=32"`
}

// ToInput converts the request to the service input.
func (r *UpdateSellerRequest) ToInput() seller.ProfileInput {
	return seller.ProfileInput{
		Email:             r.Email,
		BusinessName:      r.BusinessName,
		Phone:             r.Phone,
		MobileMoneyNumber: r.MobileMoneyNumber,
	}
}

// SellerResponse represents the seller profile.
type SellerResponse struct {
	ID                    string      `json:"id"`
	Email                 string      `json:"email,omitempty"`
	SubscriptionTier      seller.Tier `json:"subscriptionTier"`
	SubscriptionExpiresAt *time.Time  `json:"subscriptionExpiresAt,omitempty"`
	PremiumActive         bool        `json:"premiumActive"`
	BusinessName          string      `json:"businessName,omitempty"`
	Phone                 string      `json:"phone,omitempty"`
	MobileMoneyNumber     string      `json:"mobileMoneyNumber,omitempty"`
}

// FromSeller converts the profile; premium status is evaluated at now.
func FromSeller(s *seller.Seller, now time.Time) SellerResponse {
	return SellerResponse{
		ID:                    s.ID,
		Email:                 s.Email,
		SubscriptionTier:      s.SubscriptionTier,
		SubscriptionExpiresAt: s.SubscriptionExpiresAt,
		PremiumActive:         s.IsPremiumActive(now),
		BusinessName:          s.BusinessName,
		Phone:                 s.Phone,
		MobileMoneyNumber:     s.MobileMoneyNumber,
	}
}
