package model

import "time"

// Coupon represents a token top-up coupon.
// Amount is the number of redemptions the coupon allows, Credit the tokens
// granted per redemption.
type Coupon struct {
	Name            string     `json:"name"`
	Amount          int        `json:"amount"`
	RemainingAmount int        `json:"remaining_amount"`
	Credit          int        `json:"credit"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"-"` // Not exposed in API
}

// Expired reports whether the coupon is past its expiry at the given instant.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// CouponResponse is the API response DTO for GET /api/coupons/:name
type CouponResponse struct {
	Name            string     `json:"name"`
	Amount          int        `json:"amount"`
	RemainingAmount int        `json:"remaining_amount"`
	Credit          int        `json:"credit"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	RedeemedBy      []string   `json:"redeemed_by"`
}

// CreateCouponRequest is the DTO for creating a coupon
type CreateCouponRequest struct {
	Name      string     `json:"name" validate:"required,notblank,max=255"`
	Amount    *int       `json:"amount" validate:"required,gte=1"`
	Credit    *int       `json:"credit" validate:"required,gte=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ApplyCouponRequest is the DTO for POST /api/apply-coupon.
type ApplyCouponRequest struct {
	Code string `json:"tokenCoupon" validate:"required,notblank,max=255"`
}

// ApplyCouponResponse carries the authoritative balance after a redemption.
type ApplyCouponResponse struct {
	Success    string `json:"success"`
	TokenCount int    `json:"tokenCount"`
}
