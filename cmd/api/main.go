package main

import (
	"log"

	"github.com/DiwanMalla/BrainiX-sub004/internal/ai"
	"github.com/DiwanMalla/BrainiX-sub004/internal/checkout"
	"github.com/DiwanMalla/BrainiX-sub004/internal/config"
	"github.com/DiwanMalla/BrainiX-sub004/internal/database"
	"github.com/DiwanMalla/BrainiX-sub004/internal/events"
	"github.com/DiwanMalla/BrainiX-sub004/internal/handlers"
	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
	mysqlrepo "github.com/DiwanMalla/BrainiX-sub004/internal/repository/mysql"
	"github.com/DiwanMalla/BrainiX-sub004/internal/routes"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database Connection ---
	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// --- Event Publisher (optional) ---
	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, "brainix.events")
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	} else {
		log.Println("RABBITMQ_URL not set; order events will not be published")
	}

	// --- Checkout Service ---
	store := mysqlrepo.NewStore(db)
	paymentClient := payments.NewClient(cfg.StripeAPIKey, "")
	checkoutService := checkout.NewService(store, paymentClient, publisher)

	// --- AI Service (optional) ---
	var aiService *ai.AIService
	if cfg.GeminiAPIKey != "" {
		aiService, err = ai.NewAIService(cfg.GeminiAPIKey, db)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}
	} else {
		log.Println("GEMINI_API_KEY not set; AI assistant endpoints disabled")
	}

	// --- Course Cache (optional) ---
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Cfg:       cfg,
		Checkout:  checkoutService,
		AIService: aiService,
		Cache:     cache,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	log.Printf("Starting BrainiX API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
