package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv  string
	Debug   bool
	Version string

	BotToken        string
	ChallengeChatID int64
	ReviewChatID    int64

	SpreadsheetID            string
	GoogleServiceAccountJSON string
	GoogleCredentialsFile    string

	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	challengeChatID, err := getEnvInt64("CHALLENGE_CHAT_ID")
	if err != nil {
		return nil, err
	}
	reviewChatID, err := getEnvInt64("REVIEW_CHAT_ID")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:                   getEnv("APP_ENV", "development"),
		Debug:                    debug,
		Version:                  getEnv("VERSION", "dev"),
		BotToken:                 getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChallengeChatID:          challengeChatID,
		ReviewChatID:             reviewChatID,
		SpreadsheetID:            getEnv("SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleCredentialsFile:    getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
		MongoDBURI:               getEnv("MONGODB_URI", ""),
		MongoDBDatabase:          getEnv("MONGODB_DATABASE", ""),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.ChallengeChatID == 0 {
		return nil, fmt.Errorf("CHALLENGE_CHAT_ID is required")
	}
	if cfg.ReviewChatID == 0 {
		return nil, fmt.Errorf("REVIEW_CHAT_ID is required")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID is required")
	}
	if cfg.GoogleServiceAccountJSON == "" && cfg.GoogleCredentialsFile == "" {
		return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_CREDENTIALS_FILE is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt64 retrieves a required int64 environment variable.
func getEnvInt64(key string) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
