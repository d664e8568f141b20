package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full environment-derived configuration surface.
type Config struct {
	Env         string
	Port        int
	CORSOrigins []string

	DatabaseURL string
	RedisAddr   string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	BcryptCost       int

	CookieSecure   bool
	CookieSameSite http.SameSite

	AvatarDir string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELMetricsExportInterval time.Duration

	ShutdownTimeout time.Duration
}

const minSecretLength = 16

// Load reads configuration from the environment, with optional .env
// overlay, and validates it. Validation failures are reported with a
// "validate config:" prefix so operators can tell them apart from parse
// errors.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be fully provisioned.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		JWTAccessSecret:          os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:         os.Getenv("JWT_REFRESH_SECRET"),
		AvatarDir:                getEnv("AVATAR_DIR", "uploads/avatars"),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "mamatrack-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
	cfg.CORSOrigins = splitAndTrim(os.Getenv("CORS_ORIGINS"))

	var err error
	if cfg.Port, err = getInt("PORT", 4000); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.JWTAccessTTL, err = getDuration("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.JWTRefreshTTL, err = getDuration("JWT_REFRESH_TTL", 30*24*time.Hour); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.Env == "production"); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.CookieSameSite, err = getSameSite("COOKIE_SAMESITE", http.SameSiteLaxMode); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.OTELExporterOTLPInsecure, err = getBool("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.OTELMetricsEnabled, err = getBool("OTEL_METRICS_ENABLED", false); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.OTELTracingEnabled, err = getBool("OTEL_TRACING_ENABLED", false); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.OTELMetricsExportInterval, err = getDuration("OTEL_METRICS_EXPORT_INTERVAL", time.Minute); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, recordLoadResult(cfg, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, recordLoadResult(cfg, err)
	}
	_ = recordLoadResult(cfg, nil)
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("validate config: APP_ENV must be development, test or production, got %q", c.Env)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required")
	}
	if len(c.JWTAccessSecret) < minSecretLength {
		return fmt.Errorf("validate config: JWT_ACCESS_SECRET must be at least %d characters", minSecretLength)
	}
	if len(c.JWTRefreshSecret) < minSecretLength {
		return fmt.Errorf("validate config: JWT_REFRESH_SECRET must be at least %d characters", minSecretLength)
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("validate config: token TTLs must be positive")
	}
	if c.JWTAccessTTL >= c.JWTRefreshTTL {
		return fmt.Errorf("validate config: JWT_ACCESS_TTL must be shorter than JWT_REFRESH_TTL")
	}
	if c.BcryptCost < 8 || c.BcryptCost > 15 {
		return fmt.Errorf("validate config: BCRYPT_COST must be within [8, 15], got %d", c.BcryptCost)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("validate config: PORT must be a valid TCP port, got %d", c.Port)
	}
	return nil
}

func recordLoadResult(cfg *Config, err error) error {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	recordConfigValidationEvent(context.Background(), cfg.Env, outcome, classifyConfigLoadError(err))
	return err
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

// getDuration accepts Go duration strings plus a day suffix ("30d") since
// refresh TTLs are naturally expressed in days.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := parseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func parseDuration(raw string) (time.Duration, error) {
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

func getSameSite(key string, fallback http.SameSite) (http.SameSite, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return fallback, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("parse %s: unknown SameSite value %q", key, raw)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
