package checkout

import (
	"testing"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/stretchr/testify/assert"
)

func activeCoupon(discountType string, value float64) *models.Coupon {
	now := time.Now()
	return &models.Coupon{
		ID:            1,
		Code:          "SAVE10",
		DiscountType:  discountType,
		DiscountValue: value,
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		IsActive:      true,
	}
}

func TestEvaluateCoupon(t *testing.T) {
	now := time.Now()
	maxDiscount := 5.0
	oneUse := 1

	tests := []struct {
		name     string
		coupon   *models.Coupon
		subtotal float64
		want     float64
		wantErr  error
	}{
		{
			name:     "percentage discount",
			coupon:   activeCoupon(models.DiscountPercentage, 10),
			subtotal: 80,
			want:     8,
		},
		{
			name: "percentage clamped to max discount amount",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.MaxDiscountAmount = &maxDiscount
				return c
			}(),
			subtotal: 200,
			want:     5,
		},
		{
			name:     "fixed discount",
			coupon:   activeCoupon(models.DiscountFixed, 15),
			subtotal: 100,
			want:     15,
		},
		{
			name:     "fixed discount clamped to subtotal",
			coupon:   activeCoupon(models.DiscountFixed, 150),
			subtotal: 100,
			want:     100,
		},
		{
			name:     "nil coupon",
			coupon:   nil,
			subtotal: 100,
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "inactive coupon",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.IsActive = false
				return c
			}(),
			subtotal: 100,
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "expired coupon",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.EndDate = now.Add(-time.Hour)
				return c
			}(),
			subtotal: 100,
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "not yet valid",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.StartDate = now.Add(time.Hour)
				return c
			}(),
			subtotal: 100,
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "usage cap reached",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.MaxUses = &oneUse
				c.UsedCount = 1
				return c
			}(),
			subtotal: 100,
			wantErr:  ErrCouponUsageExceeded,
		},
		{
			name: "below minimum order value",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercentage, 10)
				c.MinOrderValue = 50
				return c
			}(),
			subtotal: 40,
			wantErr:  ErrBelowMinimumOrder,
		},
		{
			name: "unknown discount type",
			coupon: func() *models.Coupon {
				c := activeCoupon("BOGOF", 10)
				return c
			}(),
			subtotal: 100,
			wantErr:  ErrInvalidCoupon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCoupon(tt.coupon, tt.subtotal, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestEvaluateCouponNeverExceedsCap(t *testing.T) {
	// For any subtotal, a capped percentage coupon must stay under the cap.
	capAmount := 20.0
	c := activeCoupon(models.DiscountPercentage, 25)
	c.MaxDiscountAmount = &capAmount

	for _, subtotal := range []float64{1, 79.99, 80, 80.01, 500, 99999} {
		got, err := EvaluateCoupon(c, subtotal, time.Now())
		assert.NoError(t, err)
		assert.LessOrEqual(t, got, capAmount, "subtotal %v", subtotal)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("Save10"))
}

func TestNewOrderNumber(t *testing.T) {
	a := NewOrderNumber()
	b := NewOrderNumber()
	assert.Regexp(t, `^BX-\d+-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}
