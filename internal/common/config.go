package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Learning LearningConfig
	OCR      OCRConfig
	Auth     AuthConfig
	Parser   ParserConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr string
}

// DatabaseConfig holds ledger database configuration
type DatabaseConfig struct {
	Path string
}

// LearningConfig holds learned-correction store configuration
type LearningConfig struct {
	Path string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	TessdataDir string
	Lang        string
}

// AuthConfig holds token-related configuration
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

// ParserConfig holds the tunable extraction constants
type ParserConfig struct {
	FuzzyThreshold     float64
	MaxPlausibleAmount int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":" + getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/receipt-budget.db"),
		},
		Learning: LearningConfig{
			Path: getEnv("LEARNING_DB_PATH", "./data/store-learning.db"),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Lang:        getEnv("TESSERACT_LANG", "kor+eng"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", "receipt-budget"),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Parser: ParserConfig{
			FuzzyThreshold:     getEnvAsFloat64("FUZZY_THRESHOLD", 0.3),
			MaxPlausibleAmount: getEnvAsInt64("MAX_PLAUSIBLE_AMOUNT", 2_000_000),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return NewAppError("CONFIG_ERROR", "JWT_SECRET is required", ErrInvalidInput)
	}
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	if c.Learning.Path == "" {
		return NewAppError("CONFIG_ERROR", "LEARNING_DB_PATH is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
