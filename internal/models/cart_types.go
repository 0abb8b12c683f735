package models

import "time"

// CartItem is the model for the 'cart_items' table.
// One row per (user, course); courses are bought at most once, so there
// is no quantity column.
type CartItem struct {
	ID       int64     `json:"id" db:"id"`
	UserID   int64     `json:"userId" db:"user_id"`
	CourseID int64     `json:"courseId" db:"course_id"`
	AddedAt  time.Time `json:"addedAt" db:"added_at"`
}

// CartLine is a cart item joined with the course columns checkout needs.
// Price and DiscountPrice are observed at read time; the checkout
// transaction snapshots them into order_items.
type CartLine struct {
	CourseID      int64    `json:"courseId"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
}

// EffectivePrice mirrors Course.EffectivePrice for a joined line.
func (l *CartLine) EffectivePrice() float64 {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.Price
}
