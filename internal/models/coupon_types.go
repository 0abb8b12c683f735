package models

import "time"

// Coupon discount types
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Coupon is the model for the 'coupons' table. Codes are stored
// uppercase so lookups are case-insensitive. used_count only ever goes
// up; there is no coupon-cancellation path.
type Coupon struct {
	ID            int64   `json:"id" db:"id"`
	Code          string  `json:"code" db:"code"`
	DiscountType  string  `json:"discountType" db:"discount_type"`
	DiscountValue float64 `json:"discountValue" db:"discount_value"`

	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
	IsActive  bool      `json:"isActive" db:"is_active"`

	MinOrderValue     float64  `json:"minOrderValue" db:"min_order_value"`
	MaxDiscountAmount *float64 `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`

	MaxUses   *int `json:"maxUses,omitempty" db:"max_uses"`
	UsedCount int  `json:"usedCount" db:"used_count"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
