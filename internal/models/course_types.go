package models

import "time"

// Course is the model for the 'courses' table
type Course struct {
	ID           int64    `json:"id" db:"id"`
	Slug         string   `json:"slug" db:"slug"`
	Title        string   `json:"title" db:"title"`
	Description  string   `json:"description" db:"description"`
	InstructorID int64    `json:"instructorId" db:"instructor_id"`
	Price        float64  `json:"price" db:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty" db:"discount_price"`
	Published    bool     `json:"published" db:"published"`

	// TotalStudents is an optimistic counter bumped when an enrollment
	// row is first created for this course.
	TotalStudents int `json:"totalStudents" db:"total_students"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice returns the price a buyer actually pays right now:
// the discount price when one is set, the list price otherwise.
func (c *Course) EffectivePrice() float64 {
	if c.DiscountPrice != nil {
		return *c.DiscountPrice
	}
	return c.Price
}
