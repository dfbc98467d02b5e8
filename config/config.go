package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port int

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Provider configuration
	Providers ProviderConfig

	// Checklist cache TTL in minutes
	ChecklistTTLMinutes int
}

// ProviderConfig holds external data source credentials and endpoint
// overrides. Base URLs are only overridden in tests and self-hosted mirrors.
type ProviderConfig struct {
	FMPAPIKey     string
	FinnhubAPIKey string

	FMPBaseURL            string
	ClinicalTrialsBaseURL string
	FDABaseURL            string
	FinnhubBaseURL        string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port: getEnvInt("PORT", 8080),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "catalysts"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "catalysts"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", ""),

		Providers: ProviderConfig{
			FMPAPIKey:     os.Getenv("FMP_API_KEY"),
			FinnhubAPIKey: os.Getenv("FINNHUB_API_KEY"),

			FMPBaseURL:            os.Getenv("FMP_BASE_URL"),
			ClinicalTrialsBaseURL: os.Getenv("CLINICALTRIALS_BASE_URL"),
			FDABaseURL:            os.Getenv("FDA_BASE_URL"),
			FinnhubBaseURL:        os.Getenv("FINNHUB_BASE_URL"),
		},

		ChecklistTTLMinutes: getEnvInt("CHECKLIST_TTL_MINUTES", 60),
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
