package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	DB_USERNAME string
	DB_PASSWORD string
	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DISABLE_TLS string

	SERVER_ADDR     string
	ALLOWED_HEADERS string

	// Token signing for the API server
	JWT_SECRET    string
	JWT_TTL_HOURS int

	// Redis backs token revocation on the server and, optionally, the dashboard session store
	REDIS_ADDR     string
	REDIS_PASSWORD string
	REDIS_DB       int

	// Dashboard client
	API_BASE_URL        string
	API_TIMEOUT_SECONDS int
	SESSION_FILE        string
	SESSION_STORE       string

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string
	OTEL_SERVICE_NAME           string

	METRICS_PREFIX string
}

func ReadConfig() *Config {
	return &Config{
		DB_USERNAME: os.Getenv("DB_USERNAME"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DISABLE_TLS: os.Getenv("DISABLE_TLS"),

		SERVER_ADDR:     GetEnvOrDefault("SERVER_ADDR", "0.0.0.0:6060"),
		ALLOWED_HEADERS: GetEnvOrDefault("ALLOWED_HEADERS", "Content-Type,Authorization"),

		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		JWT_TTL_HOURS: getIntOrDefault("JWT_TTL_HOURS", 24),

		REDIS_ADDR:     os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       getIntOrDefault("REDIS_DB", 0),

		API_BASE_URL:        GetEnvOrDefault("API_BASE_URL", "http://localhost:6060/api"),
		API_TIMEOUT_SECONDS: getIntOrDefault("API_TIMEOUT_SECONDS", 30),
		SESSION_FILE:        GetEnvOrDefault("SESSION_FILE", defaultSessionFile()),
		SESSION_STORE:       GetEnvOrDefault("SESSION_STORE", "file"),

		OTEL_EXPORTER_OTLP_ENDPOINT: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTEL_SERVICE_NAME:           GetEnvOrDefault("OTEL_SERVICE_NAME", "taskdesk"),

		METRICS_PREFIX: GetEnvOrDefault("METRICS_PREFIX", "taskdesk"),
	}
}

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskdesk-session.json"
	}
	return filepath.Join(home, ".taskdesk", "session.json")
}
