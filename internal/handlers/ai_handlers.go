package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- AI Assistant Handlers ---
//

// ChatInput defines the structure of the chat request body.
type ChatInput struct {
	Message string `json:"message" binding:"required"`
}

// ChatAI is the handler for POST /v1/ai/chat
func (h *Handlers) ChatAI(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	userRole_raw, _ := c.Get("userRole")
	userRole := userRole_raw.(string)

	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, tokens, err := h.AIService.GenerateResponse(c.Request.Context(), input.Message, userRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service unavailable: " + err.Error()})
		return
	}

	// Record the exchange for history/usage tracking. The user already
	// has their answer, so a failed insert is only logged.
	_, dbErr := h.DB.Exec(`
		INSERT INTO assistant_messages (user_id, user_message, ai_response, tokens_used)
		VALUES (?, ?, ?, ?)`,
		userID, input.Message, response, tokens)
	if dbErr != nil {
		println("Warning: failed to save chat history:", dbErr.Error())
	}

	c.JSON(http.StatusOK, gin.H{
		"response": response,
		"tokens":   tokens,
	})
}

// QuizInput defines the structure of the quiz request body.
type QuizInput struct {
	CourseID int64 `json:"courseId" binding:"required"`
	Count    int   `json:"count" binding:"omitempty,min=1,max=20"`
}

// GenerateQuiz is the handler for POST /v1/ai/quiz. Only enrolled
// students can generate quizzes for a course.
func (h *Handlers) GenerateQuiz(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input QuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Count == 0 {
		input.Count = 5
	}

	var title string
	err := h.DB.QueryRow(`
		SELECT co.title
		FROM enrollments e
		JOIN courses co ON e.course_id = co.id
		WHERE e.user_id = ? AND e.course_id = ?`,
		userID, input.CourseID).Scan(&title)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusForbidden, gin.H{"error": "You must be enrolled in this course"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	questions, tokens, err := h.AIService.GenerateQuiz(c.Request.Context(), title, input.Count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quiz generation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"tokens":    tokens,
	})
}
