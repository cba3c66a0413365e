package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "campustix")
	t.Setenv("POSTGRES_PASSWORD", "campustix")
	t.Setenv("POSTGRES_DB", "campustix")
	t.Setenv("JWT_SECRET", "config-test-secret")
}

func TestNew_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Postgres.Port != 5432 || cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis default: %+v", cfg.Redis)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("unexpected token TTL default: %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS default: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.Limit != 30 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestNew_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://tix.example.edu, https://admin.example.edu")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")

	cfg, err := New()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m TTL, got %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://admin.example.edu" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.Limit != 5 || cfg.RateLimit.Window != 10*time.Second {
		t.Fatalf("unexpected rate limit overrides: %+v", cfg.RateLimit)
	}
}

func TestNew_MissingSecret(t *testing.T) {
	t.Setenv("POSTGRES_USER", "campustix")
	t.Setenv("POSTGRES_PASSWORD", "campustix")
	t.Setenv("POSTGRES_DB", "campustix")
	t.Setenv("JWT_SECRET", "")

	if _, err := New(); err == nil {
		t.Fatalf("expected an error when JWT_SECRET is unset")
	}
}

func TestNew_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := New(); err == nil {
		t.Fatalf("expected an error for a non-numeric SERVER_PORT")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,, c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
