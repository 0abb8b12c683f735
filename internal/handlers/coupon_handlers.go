package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/checkout"
	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

//
// --- Coupon Handlers ---
//

// CreateCouponInput defines the JSON for the admin coupon endpoint.
type CreateCouponInput struct {
	Code              string    `json:"code" binding:"required"`
	DiscountType      string    `json:"discountType" binding:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue     float64   `json:"discountValue" binding:"required,gt=0"`
	StartDate         time.Time `json:"startDate" binding:"required"`
	EndDate           time.Time `json:"endDate" binding:"required"`
	MinOrderValue     float64   `json:"minOrderValue" binding:"gte=0"`
	MaxDiscountAmount *float64  `json:"maxDiscountAmount"`
	MaxUses           *int      `json:"maxUses"`
}

// CreateCoupon is the handler for POST /v1/admin/coupons (ADMIN only)
func (h *Handlers) CreateCoupon(c *gin.Context) {
	var input CreateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !input.EndDate.After(input.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be after startDate"})
		return
	}

	code := checkout.NormalizeCode(input.Code)
	now := time.Now()

	res, err := h.DB.Exec(`
		INSERT INTO coupons
			(code, discount_type, discount_value, start_date, end_date, is_active,
			 min_order_value, max_discount_amount, max_uses, used_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, TRUE, ?, ?, ?, 0, ?, ?)`,
		code, input.DiscountType, input.DiscountValue, input.StartDate, input.EndDate,
		input.MinOrderValue, input.MaxDiscountAmount, input.MaxUses, now, now)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "A coupon with this code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"id":   id,
		"code": code,
	})
}

// ValidateCoupon is the handler for GET /v1/coupons/validate. It
// previews the discount a code would grant at a given subtotal without
// touching the usage counter.
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code query parameter required"})
		return
	}
	subtotal, err := strconv.ParseFloat(c.Query("subtotal"), 64)
	if err != nil || subtotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid subtotal query parameter required"})
		return
	}

	coupon, err := h.fetchCoupon(checkout.NormalizeCode(code))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	discount, err := checkout.EvaluateCoupon(coupon, subtotal, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"code":     coupon.Code,
		"discount": discount,
		"total":    subtotal - discount,
	})
}

func (h *Handlers) fetchCoupon(code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, start_date, end_date,
		       is_active, min_order_value, max_discount_amount, max_uses, used_count
		FROM coupons
		WHERE code = ?`

	var coupon models.Coupon
	var maxDiscount sql.NullFloat64
	var maxUses sql.NullInt64
	err := h.DB.QueryRow(query, code).Scan(
		&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.StartDate, &coupon.EndDate, &coupon.IsActive, &coupon.MinOrderValue,
		&maxDiscount, &maxUses, &coupon.UsedCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxDiscount.Valid {
		coupon.MaxDiscountAmount = &maxDiscount.Float64
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		coupon.MaxUses = &n
	}
	return &coupon, nil
}
