package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:               ":8080",
		DatabaseURL:        "postgres://localhost/taskhub",
		JWTSecret:          "dev-secret",
		Environment:        "development",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 60,
		ScoringInterval:    24 * time.Hour,
	}
}

func TestValidateAcceptsDevelopmentDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing DATABASE_URL accepted")
	}
}

func TestValidateProductionHardening(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("production without JWT secret accepted")
	}

	cfg = validConfig()
	cfg.Environment = "production"
	cfg.RunSeed = true
	cfg.SeedAdminPassword = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("production seeding without admin password accepted")
	}
}

func TestValidateRejectsDegenerateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBodyBytes = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("tiny body limit accepted")
	}

	cfg = validConfig()
	cfg.RateLimitPerMinute = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero rate limit accepted")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9999")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("SCORING_INTERVAL", "6h")
	t.Setenv("RUN_SEED", "false")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("APP_ADDR override ignored, got %q", cfg.Addr)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("rate limit override ignored, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.ScoringInterval != 6*time.Hour {
		t.Fatalf("scoring interval override ignored, got %v", cfg.ScoringInterval)
	}
	if cfg.RunSeed {
		t.Fatal("RUN_SEED=false ignored")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("SCORING_INTERVAL", "tomorrow")

	cfg := Load()
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("malformed int should fall back to default, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.ScoringInterval != 24*time.Hour {
		t.Fatalf("malformed duration should fall back to default, got %v", cfg.ScoringInterval)
	}
}
