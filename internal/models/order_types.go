package models

import (
	"encoding/json"
	"time"
)

// Order statuses
const (
	OrderCompleted = "COMPLETED"
	OrderFailed    = "FAILED"
)

// Order is the model for the 'orders' table. payment_id carries a
// unique constraint; it is the idempotency boundary that keeps the
// synchronous checkout and the webhook from both recording the same
// payment.
type Order struct {
	ID          int64   `json:"id" db:"id"`
	OrderNumber string  `json:"orderNumber" db:"order_number"`
	UserID      int64   `json:"userId" db:"user_id"`
	Status      string  `json:"status" db:"status"`
	Total       float64 `json:"total" db:"total"`
	Discount    float64 `json:"discount" db:"discount"`
	Tax         float64 `json:"tax" db:"tax"`
	Currency    string  `json:"currency" db:"currency"`

	PaymentMethod string `json:"paymentMethod" db:"payment_method"`
	PaymentID     string `json:"paymentId" db:"payment_id"`

	CouponID *int64 `json:"couponId,omitempty" db:"coupon_id"`

	// BillingAddress is a denormalized snapshot, not a live relation.
	BillingAddress json.RawMessage `json:"billingAddress,omitempty" db:"billing_address"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OrderItem is the model for the 'order_items' table. Price is the
// effective course price at checkout time and never re-read later.
type OrderItem struct {
	ID       int64   `json:"id" db:"id"`
	OrderID  int64   `json:"orderId" db:"order_id"`
	CourseID int64   `json:"courseId" db:"course_id"`
	Price    float64 `json:"price" db:"price"`
}
