package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded from the environment with
// an optional .env file.
type Config struct {
	AppPort           string
	DBPath            string
	SeedSampleData    bool
	DashboardCacheTTL time.Duration
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "data/taskboard.db"),
		SeedSampleData:    getEnvBool("SEED_SAMPLE_DATA", true),
		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 3*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
