package checkout

import (
	"strings"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
)

// NormalizeCode upper-cases and trims a promo code so lookups are
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluateCoupon validates a coupon against the current subtotal and
// returns the discount amount it grants. It is pure: the usage counter
// is incremented separately, inside the order transaction.
func EvaluateCoupon(c *models.Coupon, subtotal float64, now time.Time) (float64, error) {
	if c == nil || !c.IsActive || now.Before(c.StartDate) || now.After(c.EndDate) {
		return 0, ErrInvalidCoupon
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return 0, ErrCouponUsageExceeded
	}
	if subtotal < c.MinOrderValue {
		return 0, ErrBelowMinimumOrder
	}

	var discount float64
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
	case models.DiscountFixed:
		// Clamped to the subtotal so a large fixed coupon can never
		// drive the order total negative.
		discount = c.DiscountValue
		if discount > subtotal {
			discount = subtotal
		}
	default:
		return 0, ErrInvalidCoupon
	}

	return discount, nil
}
