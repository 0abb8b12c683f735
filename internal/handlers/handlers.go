package handlers

import (
	"database/sql"

	"github.com/DiwanMalla/BrainiX-sub004/internal/ai"
	"github.com/DiwanMalla/BrainiX-sub004/internal/checkout"
	"github.com/DiwanMalla/BrainiX-sub004/internal/config"
	"github.com/redis/go-redis/v9"
)

// Handlers holds all dependencies for the HTTP layer.
type Handlers struct {
	DB       *sql.DB
	Cfg      *config.Config
	Checkout *checkout.Service

	// Optional integrations; nil when the feature is disabled.
	AIService *ai.AIService
	Cache     *redis.Client
}
