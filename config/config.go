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

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Pricing configuration
	Currency            string
	TaxRateBP           int64 // flat tax as basis points, 0 disables the tax line
	MaxBasisPoints      int64 // config-time cap on percentage items, 0 disables the cap
	PromoInactivePolicy string        // degrade, reject
	SnapshotCacheTTL    time.Duration // Redis TTL for event pricing snapshots
	QuoteTTL            time.Duration // Redis TTL for persisted checkout quotes

	// Rate limiting
	CheckoutRateLimit  int64
	CheckoutRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

// PromoInactivePolicy values. Whether an expired code should block
// checkout is a product decision, so it ships as configuration.
const (
	PromoPolicyDegrade = "degrade"
	PromoPolicyReject  = "reject"
)

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Pricing
		Currency:            getEnv("CURRENCY", "USD"),
		TaxRateBP:           getEnvAsInt64("TAX_RATE_BP", 0),
		MaxBasisPoints:      getEnvAsInt64("MAX_BASIS_POINTS", 10000),
		PromoInactivePolicy: getEnv("PROMO_INACTIVE_POLICY", PromoPolicyDegrade),
		SnapshotCacheTTL:    getEnvAsDuration("SNAPSHOT_CACHE_TTL", "30s"),
		QuoteTTL:            getEnvAsDuration("QUOTE_TTL", "10m"),

		// Rate limiting
		CheckoutRateLimit:  getEnvAsInt64("CHECKOUT_RATE_LIMIT", 30),
		CheckoutRateWindow: getEnvAsDuration("CHECKOUT_RATE_WINDOW", "1m"),

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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
