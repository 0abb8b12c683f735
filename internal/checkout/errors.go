package checkout

import "errors"

// Business-rule failures. Each one is detected before any mutation is
// committed; handlers map them to descriptive HTTP responses.
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidCoupon       = errors.New("coupon code is invalid or expired")
	ErrCouponUsageExceeded = errors.New("coupon usage limit reached")
	ErrBelowMinimumOrder   = errors.New("order subtotal is below the coupon minimum")
	ErrTotalMismatch       = errors.New("declared total does not match computed total")
	ErrPaymentNotConfirmed = errors.New("payment has not succeeded")
	ErrPaymentProcessed    = errors.New("payment was already processed")
)
