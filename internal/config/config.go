package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	HTTPPort     string
	DatabasePath string
	CORSOrigins  []string
	APIJWTSecret string

	// AI providers. Keys are optional at startup; calls made without one
	// fail at request time.
	GeminiAPIKey    string
	GeminiModel     string
	GroqAPIKey      string
	GroqModel       string
	PlannerProvider string

	// Redis summary cache, disabled when RedisAddr is empty.
	RedisAddr       string
	RedisPassword   string
	SummaryCacheTTL time.Duration

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first when present; variables
// already set in the environment win.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	port := envOr("HTTP_PORT", "8080")
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return nil, fmt.Errorf("HTTP_PORT must be a valid port number, got %q", port)
	}

	provider := strings.ToLower(envOr("PLANNER_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("PLANNER_PROVIDER must be one of %s, %s", ProviderGemini, ProviderGroq)
	}

	ttl := 600 * time.Second
	if raw := strings.TrimSpace(os.Getenv("SUMMARY_CACHE_TTL")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("SUMMARY_CACHE_TTL must be a positive number of seconds, got %q", raw)
		}
		ttl = time.Duration(secs) * time.Second
	}

	allowed, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:               port,
		DatabasePath:           envOr("DATABASE_PATH", "data/caloriebuddy.db"),
		CORSOrigins:            splitList(envOr("CORS_ORIGINS", "*")),
		APIJWTSecret:           strings.TrimSpace(os.Getenv("API_JWT_SECRET")),
		GeminiAPIKey:           strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:            envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		GroqAPIKey:             strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		GroqModel:              envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		PlannerProvider:        provider,
		RedisAddr:              strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		SummaryCacheTTL:        ttl,
		TelegramBotToken:       strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramWebhookURL:     strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_URL")),
		TelegramAllowedUserIDs: allowed,
	}, nil
}

// RequireTelegram reports the first Telegram setting the bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
