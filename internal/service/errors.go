package service

import "errors"

var (
	// ErrCouponExists is returned when attempting to create a coupon that already exists
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadyRedeemed is returned when a user redeems a coupon they already redeemed
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")

	// ErrCouponExhausted is returned when a coupon has no redemptions left
	ErrCouponExhausted = errors.New("coupon is no longer available")

	// ErrCouponExpired is returned when a coupon is past its expiry
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrInsufficientTokens is returned when a generation is requested with a zero balance
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrGeneration is returned when the idea generator fails; no token is debited
	ErrGeneration = errors.New("idea generation failed")
)
