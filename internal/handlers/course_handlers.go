package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/gosimple/slug"
)

//
// --- Course Handlers ---
//

const courseCacheTTL = 5 * time.Minute

// GetCourses is the handler for GET /v1/courses
func (h *Handlers) GetCourses(c *gin.Context) {
	query := `
		SELECT id, slug, title, description, instructor_id, price, discount_price,
		       published, total_students, created_at, updated_at
		FROM courses
		WHERE published = TRUE
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows.Scan)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan course"})
			return
		}
		courses = append(courses, *course)
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetCourseBySlug is the handler for GET /v1/courses/:slug. Details are
// served through a Redis read-through cache when one is configured;
// course pages are by far the hottest read path.
func (h *Handlers) GetCourseBySlug(c *gin.Context) {
	courseSlug := c.Param("slug")
	cacheKey := "course:" + courseSlug

	if h.Cache != nil {
		cached, err := h.Cache.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var course models.Course
			if err := json.Unmarshal([]byte(cached), &course); err == nil {
				c.JSON(http.StatusOK, gin.H{"course": course})
				return
			}
		}
	}

	query := `
		SELECT id, slug, title, description, instructor_id, price, discount_price,
		       published, total_students, created_at, updated_at
		FROM courses
		WHERE slug = ? AND published = TRUE`

	row := h.DB.QueryRow(query, courseSlug)
	course, err := scanCourse(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
		return
	}

	if h.Cache != nil {
		if data, err := json.Marshal(course); err == nil {
			h.Cache.Set(c.Request.Context(), cacheKey, data, courseCacheTTL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

func scanCourse(scan func(dest ...any) error) (*models.Course, error) {
	var course models.Course
	var discount sql.NullFloat64
	err := scan(
		&course.ID, &course.Slug, &course.Title, &course.Description,
		&course.InstructorID, &course.Price, &discount, &course.Published,
		&course.TotalStudents, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if discount.Valid {
		course.DiscountPrice = &discount.Float64
	}
	return &course, nil
}

// CreateCourseInput defines the JSON for the instructor course endpoint.
type CreateCourseInput struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discountPrice"`
	Published     bool     `json:"published"`
}

// CreateCourse is the handler for POST /v1/instructor/courses
func (h *Handlers) CreateCourse(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	instructorID := userID_raw.(int64)

	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.DiscountPrice != nil && *input.DiscountPrice >= input.Price {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discountPrice must be below price"})
		return
	}

	courseSlug := slug.Make(input.Title)
	now := time.Now()

	res, err := h.DB.Exec(`
		INSERT INTO courses
			(slug, title, description, instructor_id, price, discount_price,
			 published, total_students, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		courseSlug, input.Title, input.Description, instructorID,
		input.Price, input.DiscountPrice, input.Published, now, now)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "A course with this title already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"id":   id,
		"slug": courseSlug,
	})
}
