package config

import (
	"os"
	"strconv"
	"time"

	"finetrack/pkg/platform/strings"
)

// Backend selects where roster, catalog and fine records come from.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendLegacy   Backend = "legacy"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	LogLevel       string
	Timezone       string
	Backend        Backend
	Seed           bool
	DatabaseURL    string
	LegacyAPIURL   string
	LegacyAPIToken string
	JWT            JWTConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	Payment        PaymentConfig
	RateLimit      RateLimitConfig
	ShutdownGrace  time.Duration
}

// JWTConfig holds bearer token validation settings.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DedupeTTL    time.Duration
}

// KafkaConfig holds broker and topic names. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers       []string
	PaymentsTopic string
	AuditTopic    string
	ConsumerGroup string
	ClientID      string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// PaymentConfig configures the hosted checkout and the confirmation webhook.
type PaymentConfig struct {
	CheckoutURL       string
	ReturnURL         string
	CancelURL         string
	WebhookSecretHash string
}

// RateLimitConfig bounds identity lookups per caller. Counters live in Redis
// when it is configured.
type RateLimitConfig struct {
	MatchLimit  int
	MatchWindow time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           getEnv("FINETRACK_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("FINETRACK_TIMEZONE", "Local"),
		Backend:        Backend(getEnv("FINETRACK_BACKEND", string(BackendMemory))),
		Seed:           os.Getenv("FINETRACK_SEED") == "true",
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LegacyAPIURL:   os.Getenv("LEGACY_API_URL"),
		LegacyAPIToken: os.Getenv("LEGACY_API_TOKEN"),
		ShutdownGrace:  getDuration("SHUTDOWN_GRACE", 10*time.Second),
		JWT: JWTConfig{
			SigningKey: jwtSigningKey,
			Issuer:     getEnv("JWT_ISSUER", "finetrack"),
			Audience:   getEnv("JWT_AUDIENCE", "finetrack-api"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			DedupeTTL:    getDuration("PAYMENT_DEDUPE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.SplitList(os.Getenv("KAFKA_BROKERS")),
			PaymentsTopic: getEnv("KAFKA_PAYMENTS_TOPIC", "payments.confirmed"),
			AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "finetrack.audit"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "finetrack"),
			ClientID:      getEnv("KAFKA_CLIENT_ID", "finetrack"),
		},
		Payment: PaymentConfig{
			CheckoutURL:       getEnv("PAYMENT_CHECKOUT_URL", "https://checkout.example.com/pay"),
			ReturnURL:         getEnv("PAYMENT_RETURN_URL", "http://localhost:3000/payments/success"),
			CancelURL:         getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/payments/cancel"),
			WebhookSecretHash: os.Getenv("PAYMENT_WEBHOOK_SECRET_HASH"),
		},
		RateLimit: RateLimitConfig{
			MatchLimit:  getInt("RATELIMIT_MATCH_LIMIT", 60),
			MatchWindow: getDuration("RATELIMIT_MATCH_WINDOW", time.Minute),
		},
	}
}

// Location resolves the configured timezone, falling back to the host zone.
func (s Server) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
