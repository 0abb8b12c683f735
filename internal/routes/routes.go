package routes

import (
	"net/http"

	"github.com/DiwanMalla/BrainiX-sub004/internal/handlers"
	"github.com/DiwanMalla/BrainiX-sub004/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the Next.js frontend to call the API with its
// bearer token.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:3000")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	authSecret := []byte(h.Cfg.AuthSecret)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Public Course Routes ---
		v1.GET("/courses", h.GetCourses)
		v1.GET("/courses/:slug", h.GetCourseBySlug)

		// --- Payment Webhook (Public; authenticated by signature) ---
		v1.POST("/webhooks/payment", h.PaymentWebhook)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB, authSecret))
		{
			auth.GET("/users/me", h.GetMe)

			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.DELETE("/cart/items/:course_id", h.DeleteCartItem)

			// --- Coupon Preview ---
			auth.GET("/coupons/validate", h.ValidateCoupon)

			// --- Checkout & Orders ---
			auth.POST("/checkout", h.CreateOrder)
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.GET("/enrollments", h.GetMyEnrollments)

			// --- AI Assistant ---
			auth.POST("/ai/chat", h.ChatAI)
			auth.POST("/ai/quiz", h.GenerateQuiz)

			// --- Dashboard ---
			auth.GET("/dashboard/student", h.GetStudentStats)
		}

		// --- Instructor-Only Routes ---
		instructor := v1.Group("/instructor")
		instructor.Use(middleware.AuthMiddleware(h.DB, authSecret))
		instructor.Use(middleware.InstructorMiddleware())
		{
			instructor.POST("/courses", h.CreateCourse)
			instructor.GET("/dashboard-stats", h.GetInstructorStats)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB, authSecret))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/coupons", h.CreateCoupon)
		}
	}

	return router
}
