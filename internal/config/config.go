// Package config loads service configuration from the environment.
// A local .env file is honored in development; production deployments
// (Render, Railway) inject real environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the API server.
type Config struct {
	Port           string
	JWTSecret      string
	AllowedOrigins []string
	DB             DBConfig
	Storage        StorageConfig
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	URL      string
	MaxConns int32
}

// StorageConfig selects and configures the export-archive backend.
// Backend is "local" or "r2"; the R2 fields are only read for "r2".
type StorageConfig struct {
	Backend string

	// Local filesystem backend
	Dir     string
	BaseURL string

	// Cloudflare R2 (S3-compatible) backend
	R2AccountID string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string
	R2PublicURL string
}

// Load reads configuration from the environment, applying defaults for
// everything except the database URL and JWT secret.
func Load() (*Config, error) {
	// Missing .env is fine — real env vars take over in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		DB: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			Dir:         getEnv("STORAGE_DIR", "./exports"),
			BaseURL:     getEnv("STORAGE_BASE_URL", "http://localhost:8080/api/files"),
			R2AccountID: os.Getenv("R2_ACCOUNT_ID"),
			R2AccessKey: os.Getenv("R2_ACCESS_KEY_ID"),
			R2SecretKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			R2Bucket:    os.Getenv("R2_BUCKET"),
			R2PublicURL: os.Getenv("R2_PUBLIC_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Storage.Backend == "r2" && (c.Storage.R2AccountID == "" || c.Storage.R2Bucket == "") {
		return fmt.Errorf("R2_ACCOUNT_ID and R2_BUCKET are required when STORAGE_BACKEND=r2")
	}
	return nil
}

// ── Env Helpers ──────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
