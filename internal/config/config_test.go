package config

import (
	"net/http"
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "file:config_test?mode=memory")
	t.Setenv("JWT_ACCESS_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("JWT_REFRESH_SECRET", "abcdefghijklmnopqrstuvwxyz654321")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("JWT_REFRESH_TTL", "30d")
	t.Setenv("BCRYPT_COST", "8")
	t.Setenv("COOKIE_SAMESITE", "strict")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")
}

func TestLoadValidConfig(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.JWTAccessTTL)
	}
	if cfg.JWTRefreshTTL != 30*24*time.Hour {
		t.Fatalf("expected day suffix to parse, got %v", cfg.JWTRefreshTTL)
	}
	if cfg.CookieSameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected samesite: %v", cfg.CookieSameSite)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("expected short signing secret to be rejected")
	}
}

func TestLoadRejectsBcryptCostOutOfRange(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BCRYPT_COST", "16")

	if _, err := Load(); err == nil {
		t.Fatal("expected out-of-range bcrypt cost to be rejected")
	}
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing DATABASE_URL to be rejected")
	}
}

func TestLoadRejectsAccessTTLLongerThanRefresh(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "31d")

	if _, err := Load(); err == nil {
		t.Fatal("expected access TTL >= refresh TTL to be rejected")
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_REFRESH_TTL", "thirty days")

	if _, err := Load(); err == nil {
		t.Fatal("expected malformed duration to be rejected")
	}
}
