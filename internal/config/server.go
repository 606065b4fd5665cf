package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ServerConfig carries the optional server's (C11) connection settings:
// Postgres, Redis, and Supabase Storage, plus the path to the pipeline's
// own YAML config that the worker loads once at startup. It is loaded
// from the environment exactly as the teacher's flat Config was, rather
// than folded into the pipeline's Config, since these settings have no
// meaning for a plain `kobanashi generate` CLI run.
type ServerConfig struct {
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string
	CorsAllowedOrigins string

	DatabaseURL string
	RedisURL    string

	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	PipelineConfigPath string
	WorkerConcurrency  int
}

func LoadServer() (*ServerConfig, error) {
	_ = godotenv.Load()

	cfg := &ServerConfig{
		APIPort:               getEnv("API_PORT", "8080"),
		WorkerEnabled:         getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "kobanashi-videos"),
		PipelineConfigPath:    getEnv("PIPELINE_CONFIG_PATH", "config.yaml"),
		WorkerConcurrency:     getEnvInt("WORKER_CONCURRENCY", 2),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}

	return cfg, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
