package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "PERSISTENCE_BACKEND", "TIMEZONE", "DRAFT_TTL", "SEED_DEMO_DATA", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.PersistenceBackend != BackendMemory {
		t.Fatalf("expected memory backend by default, got %s", cfg.PersistenceBackend)
	}
	if !cfg.SeedDemoData {
		t.Fatalf("expected demo seeding enabled by default")
	}
	if cfg.DraftTTL != 0 {
		t.Fatalf("expected no draft TTL by default, got %s", cfg.DraftTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("expected Asia/Kolkata location, got %s", cfg.Location())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("PERSISTENCE_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DRAFT_TTL", "45m")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example, ,https://admin.example")
	t.Setenv("MEETING_BASE_URL", "https://meet.example/s/")
	t.Setenv("TIMEZONE", "UTC")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.PersistenceBackend != BackendRedis {
		t.Fatalf("expected normalized redis backend, got %q", cfg.PersistenceBackend)
	}
	if cfg.DraftTTL != 45*time.Minute {
		t.Fatalf("expected draft TTL override, got %s", cfg.DraftTTL)
	}
	if cfg.SeedDemoData {
		t.Fatalf("expected demo seeding disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MeetingBaseURL != "https://meet.example/s" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.MeetingBaseURL)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}

func TestRateLimitSettings(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	cfg := Load()
	if cfg.RateLimitRPS != 2 || cfg.RateLimitBurst != 10 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	cfg = Load()
	if cfg.RateLimitRPS != 0.5 {
		t.Fatalf("expected rps override, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 10 {
		t.Fatalf("expected burst default on bad input, got %d", cfg.RateLimitBurst)
	}
}

func TestSMTPSettings(t *testing.T) {
	t.Setenv("SMTP_PORT", "")
	if cfg := Load(); cfg.SMTPPort != 587 {
		t.Fatalf("expected default smtp port 587, got %d", cfg.SMTPPort)
	}

	t.Setenv("EMAIL_PROVIDER", " SMTP ")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM_EMAIL", "care@example.com")
	cfg := Load()
	if cfg.EmailProvider != "smtp" || cfg.SMTPHost != "smtp.example.com" || cfg.SMTPPort != 2525 || cfg.SMTPFromEmail != "care@example.com" {
		t.Fatalf("unexpected smtp config %+v", cfg)
	}
}
