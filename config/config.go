package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Escrow backend configuration
	EscrowAPIURL     string
	EscrowAPIToken   string
	EscrowAPITimeout time.Duration
	WebhookSecret    string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Settlement configuration
	HoldingPeriodDays int
	SettlementTZ      string

	// Transfer confirmation limits
	NotesMaxLength  int
	EvidenceMaxSize int64

	// Cache configuration
	EscrowCacheTTL  time.Duration
	BalanceCacheTTL time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Escrow backend
		EscrowAPIURL:     getEnv("ESCROW_API_URL", "http://localhost:8080"),
		EscrowAPIToken:   getEnv("ESCROW_API_TOKEN", ""),
		EscrowAPITimeout: getEnvAsDuration("ESCROW_API_TIMEOUT", "10s"),
		WebhookSecret:    getEnv("ESCROW_WEBHOOK_SECRET", ""),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Settlement
		HoldingPeriodDays: getEnvAsInt("HOLDING_PERIOD_DAYS", 3),
		SettlementTZ:      getEnv("SETTLEMENT_TZ", ""),

		// Transfer confirmation
		NotesMaxLength:  getEnvAsInt("TRANSFER_NOTES_MAX_LENGTH", 500),
		EvidenceMaxSize: int64(getEnvAsInt("TRANSFER_EVIDENCE_MAX_SIZE", 5*1024*1024)),

		// Cache
		EscrowCacheTTL:  getEnvAsDuration("ESCROW_CACHE_TTL", "30s"),
		BalanceCacheTTL: getEnvAsDuration("BALANCE_CACHE_TTL", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
