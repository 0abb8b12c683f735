package handlers

import (
	"database/sql"
	"net/http"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- User Handlers ---
//

// GetMe is the handler for GET /v1/users/me. The row itself was
// created by the auth middleware on first sign-in.
func (h *Handlers) GetMe(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var user models.User
	query := `
		SELECT id, clerk_id, email, name, role, total_courses, total_spent,
		       created_at, updated_at
		FROM users
		WHERE id = ?`
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.ClerkID, &user.Email, &user.Name, &user.Role,
		&user.TotalCourses, &user.TotalSpent, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
