package models

import "time"

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentExpired   = "EXPIRED"
	EnrollmentRefunded  = "REFUNDED"
)

// Enrollment is the model for the 'enrollments' table, unique per
// (user, course). Both checkout paths may try to create the same row,
// so it is always written as an upsert.
type Enrollment struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	Status     string    `json:"status" db:"status"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`
}
