package middleware

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/auth"
	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token from the identity provider
// and resolves the local user row, creating it on first sign-in. On
// success it sets "userID" and "userRole" in the context.
func AuthMiddleware(db *sql.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1], secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, role, err := resolveUser(c, db, claims)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}

// resolveUser maps the provider subject to a local user, inserting a
// STUDENT row the first time we see this subject. A concurrent first
// request can race the insert; the unique key on clerk_id makes the
// loser fall through to the re-read.
func resolveUser(c *gin.Context, db *sql.DB, claims *auth.Claims) (int64, string, error) {
	var userID int64
	var role string

	query := "SELECT id, role FROM users WHERE clerk_id = ?"
	err := db.QueryRowContext(c, query, claims.Subject).Scan(&userID, &role)
	if err == nil {
		return userID, role, nil
	}
	if err != sql.ErrNoRows {
		return 0, "", err
	}

	now := time.Now()
	res, err := db.ExecContext(c, `
		INSERT INTO users (clerk_id, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)`,
		claims.Subject, claims.Email, claims.Name, models.RoleStudent, now, now)
	if err != nil {
		return 0, "", err
	}

	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return id, models.RoleStudent, nil
	}

	// Upsert hit an existing row; read it back.
	if err := db.QueryRowContext(c, query, claims.Subject).Scan(&userID, &role); err != nil {
		return 0, "", err
	}
	return userID, role, nil
}

// requireRole gates a route group to a single role. AuthMiddleware must
// run first.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get("userRole")
		if !exists || got.(string) != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: " + strings.ToLower(role) + " role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware restricts a route group to ADMIN users.
func AdminMiddleware() gin.HandlerFunc { return requireRole(models.RoleAdmin) }

// InstructorMiddleware restricts a route group to INSTRUCTOR users.
func InstructorMiddleware() gin.HandlerFunc { return requireRole(models.RoleInstructor) }
