package handlers

import (
	"database/sql"
	"net/http"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Order Retrieval Handlers ---
//

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := `
		SELECT id, order_number, user_id, status, total, discount, tax, currency,
		       payment_method, payment_id, coupon_id, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var couponID sql.NullInt64
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Total, &o.Discount,
			&o.Tax, &o.Currency, &o.PaymentMethod, &o.PaymentID, &couponID, &o.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		if couponID.Valid {
			o.CouponID = &couponID.Int64
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// OrderItemDetail extends the base OrderItem with course info.
type OrderItemDetail struct {
	models.OrderItem
	CourseTitle string `json:"courseTitle"`
	CourseSlug  string `json:"courseSlug"`
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	orderID := c.Param("id")

	// Fetch order and verify ownership in one query.
	var o models.Order
	var couponID sql.NullInt64
	var billing sql.NullString

	queryOrder := `
		SELECT id, order_number, user_id, status, total, discount, tax, currency,
		       payment_method, payment_id, coupon_id, billing_address, created_at
		FROM orders
		WHERE id = ? AND user_id = ?`
	err := h.DB.QueryRow(queryOrder, orderID, userID).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Total, &o.Discount,
		&o.Tax, &o.Currency, &o.PaymentMethod, &o.PaymentID, &couponID, &billing, &o.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if couponID.Valid {
		o.CouponID = &couponID.Int64
	}
	if billing.Valid {
		o.BillingAddress = []byte(billing.String)
	}

	queryItems := `
		SELECT oi.id, oi.order_id, oi.course_id, oi.price, co.title, co.slug
		FROM order_items oi
		JOIN courses co ON oi.course_id = co.id
		WHERE oi.order_id = ?`

	rows, err := h.DB.Query(queryItems, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	items := []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.CourseID, &item.Price,
			&item.CourseTitle, &item.CourseSlug,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

//
// --- Enrollment Handlers ---
//

// EnrollmentDetail joins an enrollment with its course for the
// "my courses" page.
type EnrollmentDetail struct {
	models.Enrollment
	CourseTitle string `json:"courseTitle"`
	CourseSlug  string `json:"courseSlug"`
}

// GetMyEnrollments is the handler for GET /v1/enrollments
func (h *Handlers) GetMyEnrollments(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := `
		SELECT e.id, e.user_id, e.course_id, e.status, e.enrolled_at, co.title, co.slug
		FROM enrollments e
		JOIN courses co ON e.course_id = co.id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	defer rows.Close()

	enrollments := []EnrollmentDetail{}
	for rows.Next() {
		var e EnrollmentDetail
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.EnrolledAt,
			&e.CourseTitle, &e.CourseSlug); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan enrollment"})
			return
		}
		enrollments = append(enrollments, e)
	}

	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}
