package config

import (
	"fmt"
	"os"
)

// Config holds every external input the server needs. Business logic
// never reads the process environment directly; everything comes in
// through this struct at construction time.
type Config struct {
	Port        string
	DatabaseDSN string

	// AuthSecret verifies the HS256 tokens issued by the identity
	// provider. We trust the subject claim of a valid token verbatim.
	AuthSecret string

	// Payment processor credentials. StripeAPIKey authenticates our
	// outbound payment-intent lookups; WebhookSecret verifies inbound
	// event signatures.
	StripeAPIKey  string
	WebhookSecret string

	// Optional integrations. Empty means the feature is disabled.
	GeminiAPIKey string
	RedisAddr    string
	AMQPURL      string
}

// Load reads the configuration from the environment. Missing required
// secrets are a startup error, never a runtime business error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		DatabaseDSN:   os.Getenv("DB_DSN"),
		AuthSecret:    os.Getenv("AUTH_JWT_SECRET"),
		StripeAPIKey:  os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AMQPURL:       os.Getenv("RABBITMQ_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	required := map[string]string{
		"DB_DSN":                cfg.DatabaseDSN,
		"AUTH_JWT_SECRET":       cfg.AuthSecret,
		"STRIPE_SECRET_KEY":     cfg.StripeAPIKey,
		"STRIPE_WEBHOOK_SECRET": cfg.WebhookSecret,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("config: required environment variable %s is not set", name)
		}
	}

	return cfg, nil
}
