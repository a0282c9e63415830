package config

import (
	"os"
	"time"
)

// Config holds environment-driven configuration for the API server.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string

	// StorePrefix is the leading segment of generated order codes.
	StorePrefix string

	// AMQPURL is the RabbitMQ endpoint notification messages are handed
	// off to. Empty means no broker-backed channels are registered.
	AMQPURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	// MaintenanceTTL bounds how long the maintenance flag is served from
	// the in-process cache before the settings row is re-read.
	MaintenanceTTL time.Duration

	// ReservationTTL is how long a coupon reservation holds its claim.
	ReservationTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where a value is optional.
func Load() Config {
	return Config{
		Addr:                getEnv("STEPKART_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StorePrefix:         getEnv("STORE_PREFIX", "SK"),
		AMQPURL:             os.Getenv("AMQP_URL"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		MaintenanceTTL:      getDuration("MAINTENANCE_CACHE_TTL", 30*time.Second),
		ReservationTTL:      getDuration("COUPON_RESERVATION_TTL", 10*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
