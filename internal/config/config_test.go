package config

import (
	"os"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	clearEnv := func() {
		for _, k := range []string{
			"HTTP_PORT", "DATABASE_PATH", "CORS_ORIGINS", "API_JWT_SECRET",
			"GEMINI_API_KEY", "GEMINI_MODEL", "GROQ_API_KEY", "GROQ_MODEL", "PLANNER_PROVIDER",
			"REDIS_ADDR", "REDIS_PASSWORD", "SUMMARY_CACHE_TTL",
			"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOWED_USER_IDS",
		} {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}

	t.Run("Defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.HTTPPort != "8080" {
			t.Errorf("Expected HTTPPort '8080', got '%s'", cfg.HTTPPort)
		}
		if cfg.DatabasePath != "data/caloriebuddy.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
			t.Errorf("Expected CORSOrigins [*], got %v", cfg.CORSOrigins)
		}
		if cfg.PlannerProvider != ProviderGemini {
			t.Errorf("Expected PlannerProvider gemini, got '%s'", cfg.PlannerProvider)
		}
		if cfg.GeminiModel != "gemini-1.5-flash" {
			t.Errorf("Expected default GeminiModel, got '%s'", cfg.GeminiModel)
		}
		if cfg.SummaryCacheTTL != 600*time.Second {
			t.Errorf("Expected SummaryCacheTTL 600s, got %v", cfg.SummaryCacheTTL)
		}
		if cfg.GeminiAPIKey != "" || cfg.RedisAddr != "" {
			t.Errorf("Expected optional values to be empty, got key=%q redis=%q", cfg.GeminiAPIKey, cfg.RedisAddr)
		}
	})

	t.Run("Success", func(t *testing.T) {
		clearEnv()
		setEnv("HTTP_PORT", "9000")
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("PLANNER_PROVIDER", "GROQ")
		setEnv("CORS_ORIGINS", "https://a.test, https://b.test")
		setEnv("REDIS_ADDR", "localhost:6379")
		setEnv("SUMMARY_CACHE_TTL", "30")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.HTTPPort != "9000" {
			t.Errorf("Expected HTTPPort '9000', got '%s'", cfg.HTTPPort)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
		if cfg.PlannerProvider != ProviderGroq {
			t.Errorf("Expected PlannerProvider groq, got '%s'", cfg.PlannerProvider)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.test" {
			t.Errorf("Expected two trimmed origins, got %v", cfg.CORSOrigins)
		}
		if cfg.SummaryCacheTTL != 30*time.Second {
			t.Errorf("Expected SummaryCacheTTL 30s, got %v", cfg.SummaryCacheTTL)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Expected allowed ids [12 34], got %v", cfg.TelegramAllowedUserIDs)
		}
	})

	errorCases := []struct {
		name, key, value, expected string
	}{
		{"InvalidPort", "HTTP_PORT", "http", `HTTP_PORT must be a valid port number, got "http"`},
		{"InvalidProvider", "PLANNER_PROVIDER", "openai", "PLANNER_PROVIDER must be one of gemini, groq"},
		{"InvalidTTL", "SUMMARY_CACHE_TTL", "-5", `SUMMARY_CACHE_TTL must be a positive number of seconds, got "-5"`},
		{"InvalidUserID", "TELEGRAM_ALLOWED_USER_IDS", "12,abc", `invalid TELEGRAM_ALLOWED_USER_IDS entry "abc"`},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv()
			setEnv(tc.key, tc.value)

			_, err := NewFromEnv()
			if err == nil {
				t.Fatalf("Expected an error for %s, got nil", tc.key)
			}
			if err.Error() != tc.expected {
				t.Errorf("Expected error '%s', got '%s'", tc.expected, err.Error())
			}
		})
	}
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireTelegram(); err == nil || err.Error() != "TELEGRAM_BOT_TOKEN environment variable not set" {
		t.Errorf("Expected missing token error, got %v", err)
	}

	cfg.TelegramBotToken = "token"
	if err := cfg.RequireTelegram(); err == nil || err.Error() != "TELEGRAM_WEBHOOK_URL environment variable not set" {
		t.Errorf("Expected missing webhook error, got %v", err)
	}

	cfg.TelegramWebhookURL = "https://bot.test/webhook"
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
