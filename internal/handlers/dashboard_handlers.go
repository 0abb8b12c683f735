package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Student Dashboard Stats ---
//

type StudentStats struct {
	TotalCourses int     `json:"totalCourses"`
	TotalSpent   float64 `json:"totalSpent"`
	LastOrder    *string `json:"lastOrder,omitempty"`
}

// GetStudentStats is the handler for GET /v1/dashboard/student
func (h *Handlers) GetStudentStats(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	stats := StudentStats{}

	// Cached counters straight off the user row.
	err := h.DB.QueryRow(
		"SELECT total_courses, total_spent FROM users WHERE id = ?", userID,
	).Scan(&stats.TotalCourses, &stats.TotalSpent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user totals"})
		return
	}

	var lastOrder sql.NullString
	err = h.DB.QueryRow(`
		SELECT order_number FROM orders
		WHERE user_id = ? AND status = 'COMPLETED'
		ORDER BY created_at DESC LIMIT 1`, userID).Scan(&lastOrder)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get last order"})
		return
	}
	if lastOrder.Valid {
		stats.LastOrder = &lastOrder.String
	}

	c.JSON(http.StatusOK, stats)
}

//
// --- Instructor Dashboard Stats ---
//

type InstructorStats struct {
	PublishedCourses int     `json:"publishedCourses"`
	TotalStudents    int     `json:"totalStudents"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

// GetInstructorStats is the handler for GET /v1/instructor/dashboard-stats
func (h *Handlers) GetInstructorStats(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	instructorID := userID_raw.(int64)

	stats := InstructorStats{}

	err := h.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(total_students), 0)
		FROM courses
		WHERE instructor_id = ? AND published = TRUE`, instructorID,
	).Scan(&stats.PublishedCourses, &stats.TotalStudents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count courses"})
		return
	}

	// Revenue is recomputed from order items rather than cached; the
	// instructor dashboard is a cold path.
	err = h.DB.QueryRow(`
		SELECT COALESCE(SUM(oi.price), 0)
		FROM order_items oi
		JOIN courses co ON oi.course_id = co.id
		JOIN orders o ON oi.order_id = o.id
		WHERE co.instructor_id = ? AND o.status = 'COMPLETED'`, instructorID,
	).Scan(&stats.TotalRevenue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
