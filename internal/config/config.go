// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config collects everything the service reads from the environment. Flags in
// cmd/daylog may override the listen address and paths.
type Config struct {
	Host string
	Port int

	StoreBackend string // "sqlite" or "postgres"
	DBPath       string
	PostgresDSN  string
	StoreSecret  string // enables at-rest encryption when set

	GeminiAPIKey  string
	GeminiBaseURL string
	TextModel     string
	VisionModel   string
	AITimeout     time.Duration

	TemplateSyncURL string
	SpoolDir        string
	Language        string
}

func Load() *Config {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}

	return &Config{
		Host:            getEnv("DAYLOG_HOST", "0.0.0.0"),
		Port:            getEnvInt("DAYLOG_PORT", 8012),
		StoreBackend:    getEnv("DAYLOG_STORE", "sqlite"),
		DBPath:          getEnv("DAYLOG_DB_PATH", "/data/daylog.db"),
		PostgresDSN:     getEnv("DAYLOG_POSTGRES_DSN", ""),
		StoreSecret:     getEnv("DAYLOG_STORE_SECRET", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", ""),
		TextModel:       getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
		VisionModel:     getEnv("GEMINI_VISION_MODEL", ""),
		AITimeout:       getEnvDuration("DAYLOG_AI_TIMEOUT", 60*time.Second),
		TemplateSyncURL: getEnv("DAYLOG_TEMPLATE_URL", ""),
		SpoolDir:        getEnv("DAYLOG_SPOOL_DIR", "/data/spool"),
		Language:        getEnv("DAYLOG_LANGUAGE", "en"),
	}
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
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
