// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	Debug      bool

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresURI string
	AutoMigrate bool

	// MongoDB (audit trail)
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Board
	BoardTimezone string

	// Risk heuristic
	RiskFinalWindowFraction float64

	// Reminders
	ReminderDispatchEnabled bool
	ReminderInterval        time.Duration
	NotifierBackend         string // "webhook" or "gmail"
	WebhookEndpoint         string
	WebhookToken            string

	// Gmail notifier
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Debug:        getEnvAsBool("DEBUG", false),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=opsplan dbname=opsplan port=5432 sslmode=disable"),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", false),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "opsplan"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		BoardTimezone: getEnv("BOARD_TIMEZONE", "UTC"),

		RiskFinalWindowFraction: getEnvAsFloat("RISK_FINAL_WINDOW_FRACTION", 0.20),

		ReminderDispatchEnabled: getEnvAsBool("REMINDER_DISPATCH_ENABLED", true),
		ReminderInterval:        time.Duration(getEnvAsInt("REMINDER_INTERVAL", 60)) * time.Second,
		NotifierBackend:         getEnv("NOTIFIER_BACKEND", "webhook"),
		WebhookEndpoint:         getEnv("NOTIFIER_ENDPOINT", ""),
		WebhookToken:            getEnv("NOTIFIER_TOKEN", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
