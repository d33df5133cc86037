package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. The Gemini credential is resolved once here, at process start,
// and treated as immutable afterwards.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	GeminiAPIKey        string
	GeminiModel         string
	GeminiBaseURL       string
	InferenceTimeout    time.Duration
	InferenceMaxRetries int
	InferenceBackoff    time.Duration
	MaxUploadBytes      int64
	AllowedOrigins      []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the record
// archive is disabled and the service only returns records to callers.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		InferenceTimeout:    time.Second * time.Duration(getEnvInt("INFERENCE_TIMEOUT_SECONDS", 120)),
		InferenceMaxRetries: getEnvInt("INFERENCE_MAX_RETRIES", 3),
		InferenceBackoff:    time.Second * time.Duration(getEnvInt("INFERENCE_BACKOFF_SECONDS", 5)),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_MB", 15)) << 20,
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS"),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	// The write timeout must outlive the worst-case inference: every
	// attempt at full length plus the exponential backoff between them.
	// HTTP_WRITE_TIMEOUT_SECONDS overrides the derived value.
	if cfg.HTTPWriteTimeout <= 0 {
		backoffTotal := time.Duration((1<<cfg.InferenceMaxRetries)-1) * cfg.InferenceBackoff
		cfg.HTTPWriteTimeout = time.Duration(cfg.InferenceMaxRetries+1)*cfg.InferenceTimeout + backoffTotal + 30*time.Second
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

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
