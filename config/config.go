package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string

	// Storage configuration
	StorageDriver string // "sqlite" or "postgres"
	SQLitePath    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Dashboard auth
	JWTSecret         string
	AdminPasswordHash string

	// Chat relay
	ChatCallbackURL string
	ChatRelayToken  string

	// Photo archive
	PhotoBucket string

	// Daily summary dispatch hour (local time, 0-23)
	SummaryHour int
}

// Load builds a Config from the environment. A .env file is applied first
// when present so local development does not need exported variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded configuration from .env")
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		StorageDriver:     getEnv("STORAGE_DRIVER", "sqlite"),
		SQLitePath:        getEnv("SQLITE_PATH", "mealtrace.db"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnv("DB_NAME", "mealtrace"),
		DBSSLMode:         getEnv("DB_SSL_MODE", "disable"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ChatCallbackURL:   os.Getenv("CHAT_CALLBACK_URL"),
		ChatRelayToken:    os.Getenv("CHAT_RELAY_TOKEN"),
		PhotoBucket:       os.Getenv("PHOTO_BUCKET"),
		SummaryHour:       getEnvInt("SUMMARY_HOUR", 21),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// validate rejects configurations that cannot possibly run.
func validate(cfg *Config) error {
	switch cfg.StorageDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	case "postgres":
		if cfg.DBUser == "" || cfg.DBName == "" {
			return fmt.Errorf("DB_USER and DB_NAME are required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.ChatCallbackURL == "" || cfg.ChatRelayToken == "" {
		return fmt.Errorf("CHAT_CALLBACK_URL and CHAT_RELAY_TOKEN must be set")
	}
	if cfg.SummaryHour < 0 || cfg.SummaryHour > 23 {
		return fmt.Errorf("SUMMARY_HOUR must be between 0 and 23")
	}
	return nil
}

// DSN returns the connection string for the configured storage driver.
func (c *Config) DSN() string {
	if c.StorageDriver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
