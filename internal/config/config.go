package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// MongoDB Configuration
	MongoURI          string
	MongoDatabase     string
	MongoTimeout      time.Duration
	MongoTransactions bool

	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Scheduler Configuration
	SchedulerEnabled bool
	SchedulerCron    string
	SchedulerLockTTL time.Duration

	// Webhook Notification Configuration
	WebhookURL            string
	WebhookTimeout        time.Duration
	WebhookMaxAttempts    int
	WebhookInitialDelayMs int
	WebhookMaxDelayMs     int
	WorkerPoolSize        int
	NotificationQueueSize int

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// MongoDB
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017/boost?authSource=admin"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "boost"),
		MongoTimeout:      getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,
		MongoTransactions: getBoolEnv("MONGO_TRANSACTIONS_ENABLED", true),

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Scheduler: hourly on the hour by default
		SchedulerEnabled: getBoolEnv("SCHEDULER_ENABLED", true),
		SchedulerCron:    getEnv("SCHEDULER_CRON", "0 * * * *"),
		SchedulerLockTTL: getDurationEnv("SCHEDULER_LOCK_TTL_SEC", 300) * time.Second,

		// Webhook notifications (disabled when BUMP_WEBHOOK_URL is empty)
		WebhookURL:            getEnv("BUMP_WEBHOOK_URL", ""),
		WebhookTimeout:        getDurationEnv("BUMP_WEBHOOK_TIMEOUT_SEC", 10) * time.Second,
		WebhookMaxAttempts:    getIntEnv("BUMP_WEBHOOK_MAX_ATTEMPTS", 3),
		WebhookInitialDelayMs: getIntEnv("BUMP_WEBHOOK_INITIAL_DELAY_MS", 1000),
		WebhookMaxDelayMs:     getIntEnv("BUMP_WEBHOOK_MAX_DELAY_MS", 30000),
		WorkerPoolSize:        getIntEnv("WORKER_POOL_SIZE", 4),
		NotificationQueueSize: getIntEnv("NOTIFICATION_QUEUE_SIZE", 256),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS, PATCH"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
