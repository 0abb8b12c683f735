package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//

// AddToCartInput defines the JSON for adding a course to the cart.
type AddToCartInput struct {
	CourseID int64 `json:"courseId" binding:"required"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// 1. --- Course must exist and be published ---
	var published bool
	err := h.DB.QueryRow("SELECT published FROM courses WHERE id = ?", input.CourseID).Scan(&published)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	// 2. --- No point buying a course twice ---
	var enrolled int
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND course_id = ?",
		userID, input.CourseID).Scan(&enrolled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if enrolled > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You are already enrolled in this course"})
		return
	}

	// 3. --- Upsert; re-adding an item is a no-op ---
	_, err = h.DB.Exec(`
		INSERT INTO cart_items (user_id, course_id, added_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id`,
		userID, input.CourseID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Course added to cart"})
}

// CartResponseItem is a helper struct for the GetCart handler.
type CartResponseItem struct {
	CourseID       int64    `json:"courseId"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Price          float64  `json:"price"`
	DiscountPrice  *float64 `json:"discountPrice,omitempty"`
	EffectivePrice float64  `json:"effectivePrice"`
}

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := `
		SELECT ci.course_id, co.title, co.slug, co.price, co.discount_price
		FROM cart_items ci
		JOIN courses co ON ci.course_id = co.id
		WHERE ci.user_id = ? AND co.published = TRUE
		ORDER BY ci.added_at`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	items := []CartResponseItem{}
	var subtotal float64

	for rows.Next() {
		var item CartResponseItem
		var discount sql.NullFloat64
		if err := rows.Scan(&item.CourseID, &item.Title, &item.Slug, &item.Price, &discount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		line := models.CartLine{Price: item.Price}
		if discount.Valid {
			item.DiscountPrice = &discount.Float64
			line.DiscountPrice = &discount.Float64
		}
		item.EffectivePrice = line.EffectivePrice()
		subtotal += item.EffectivePrice
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"subtotal": subtotal,
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:course_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	courseID := c.Param("course_id")

	result, err := h.DB.Exec(
		"DELETE FROM cart_items WHERE user_id = ? AND course_id = ?", userID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course removed from cart"})
}
