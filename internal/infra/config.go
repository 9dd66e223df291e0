package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	FalKey             string
	FalBaseURL         string
	FalQueueURL        string
	FalModel           string
	FalPollInterval    time.Duration
	FalPollMaxAttempts int
	FalRequestsPerSec  float64

	BannerbearAPIKey        string
	BannerbearBaseURL       string
	BannerbearPollInterval  time.Duration
	BannerbearPollAttempts  int
	BannerbearSquareTmpl    string
	BannerbearStoryTmpl     string
	BannerbearLandscapeTmpl string

	N8NBaseURL     string
	N8NAdCopyHook  string
	N8NImagesHook  string
	N8NPromptsHook string

	CreativeConcurrency  int
	CompositeConcurrency int

	GeoIPDBPath      string
	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		FalKey:             os.Getenv("FAL_KEY"),
		FalBaseURL:         getEnv("FAL_BASE_URL", "https://fal.run"),
		FalQueueURL:        getEnv("FAL_QUEUE_URL", "https://queue.fal.run"),
		FalModel:           getEnv("FAL_MODEL", "fal-ai/flux/schnell"),
		FalPollInterval:    time.Second * time.Duration(getEnvInt("FAL_POLL_INTERVAL_SECONDS", 2)),
		FalPollMaxAttempts: getEnvInt("FAL_POLL_MAX_ATTEMPTS", 60),
		FalRequestsPerSec:  getEnvFloat("FAL_REQUESTS_PER_SECOND", 2),

		BannerbearAPIKey:        os.Getenv("BANNERBEAR_API_KEY"),
		BannerbearBaseURL:       getEnv("BANNERBEAR_BASE_URL", "https://api.bannerbear.com/v2"),
		BannerbearPollInterval:  time.Second * time.Duration(getEnvInt("BANNERBEAR_POLL_INTERVAL_SECONDS", 2)),
		BannerbearPollAttempts:  getEnvInt("BANNERBEAR_POLL_MAX_ATTEMPTS", 30),
		BannerbearSquareTmpl:    os.Getenv("BANNERBEAR_TEMPLATE_SQUARE"),
		BannerbearStoryTmpl:     os.Getenv("BANNERBEAR_TEMPLATE_STORY"),
		BannerbearLandscapeTmpl: os.Getenv("BANNERBEAR_TEMPLATE_LANDSCAPE"),

		N8NBaseURL:     os.Getenv("N8N_WEBHOOK_BASE_URL"),
		N8NAdCopyHook:  os.Getenv("N8N_ADCOPY_WEBHOOK_ID"),
		N8NImagesHook:  os.Getenv("N8N_IMAGES_WEBHOOK_ID"),
		N8NPromptsHook: os.Getenv("N8N_PROMPTS_WEBHOOK_ID"),

		CreativeConcurrency:  getEnvInt("CREATIVE_CONCURRENCY", 3),
		CompositeConcurrency: getEnvInt("COMPOSITE_CONCURRENCY", 5),

		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:   splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.FalPollMaxAttempts <= 0 {
		return nil, fmt.Errorf("FAL_POLL_MAX_ATTEMPTS must be positive")
	}

	if cfg.BannerbearPollAttempts <= 0 {
		return nil, fmt.Errorf("BANNERBEAR_POLL_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
