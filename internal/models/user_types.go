package models

import "time"

// User roles. Everyone starts as a student; instructors and admins are
// promoted out-of-band.
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// User is the model for the 'users' table. The identity provider owns
// credentials; we only keep the subject id it hands us (clerk_id).
type User struct {
	ID      int64  `json:"id" db:"id"`
	ClerkID string `json:"-" db:"clerk_id"`
	Email   string `json:"email" db:"email"`
	Name    string `json:"name" db:"name"`
	Role    string `json:"role" db:"role"`

	// Optimistic purchase counters, bumped on order completion.
	// Cached aggregates, not recomputed from enrollment rows.
	TotalCourses int     `json:"totalCourses" db:"total_courses"`
	TotalSpent   float64 `json:"totalSpent" db:"total_spent"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
