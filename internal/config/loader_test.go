package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

var portalKeys = []string{
	"PORTAL_HTTP_PORT",
	"PORTAL_SQLITE_DSN",
	"PORTAL_JWT_SECRET",
	"PORTAL_SESSION_TTL",
	"PORTAL_PUBLIC_BASE_URL",
	"PORTAL_REDIS_URL",
	"PORTAL_REPORT_CACHE_TTL",
	"PORTAL_RATE_LIMIT",
	"PORTAL_RATE_WINDOW",
	"PORTAL_CORS_ORIGINS",
	"PORTAL_TRUSTED_PROXIES",
	"PORTAL_SEED_DEMO",
	"PORTAL_ENV_FILE",
}

func clearPortalEnv(t *testing.T) {
	t.Helper()
	for _, key := range portalKeys {
		// t.Setenv registers restoration of the previous value.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearPortalEnv(t)

		const secret = "super-secret"
		t.Setenv("PORTAL_JWT_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:portal.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.JWTSecret != secret {
			t.Fatalf("expected jwt secret to be %q, got %q", secret, cfg.JWTSecret)
		}
		if cfg.ReportCacheTTL != 5*time.Minute || cfg.RateLimit != 20 || cfg.RateWindow != time.Minute {
			t.Fatalf("unexpected cache/rate defaults: %+v", cfg)
		}
		if cfg.RedisEnabled() {
			t.Fatal("expected redis to be disabled by default")
		}
		if !slices.Equal(cfg.CORSOrigins, []string{"*"}) {
			t.Fatalf("unexpected default origins %v", cfg.CORSOrigins)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearPortalEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: PORTAL_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearPortalEnv(t)
		t.Setenv("PORTAL_JWT_SECRET", "secret")
		t.Setenv("PORTAL_HTTP_PORT", "zero")
		t.Setenv("PORTAL_RATE_WINDOW", "-1s")
		t.Setenv("PORTAL_PUBLIC_BASE_URL", "portal.example.com")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		expected := "invalid environment variable values: PORTAL_HTTP_PORT, PORTAL_PUBLIC_BASE_URL, PORTAL_RATE_WINDOW"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration, numeric and list fields", func(t *testing.T) {
		clearPortalEnv(t)
		t.Setenv("PORTAL_JWT_SECRET", "secret-value")
		t.Setenv("PORTAL_HTTP_PORT", "9090")
		t.Setenv("PORTAL_SQLITE_DSN", "file:/tmp/portal.db")
		t.Setenv("PORTAL_SESSION_TTL", "24h")
		t.Setenv("PORTAL_PUBLIC_BASE_URL", "https://portal.example.com/")
		t.Setenv("PORTAL_REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("PORTAL_REPORT_CACHE_TTL", "30s")
		t.Setenv("PORTAL_RATE_LIMIT", "5")
		t.Setenv("PORTAL_CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
		t.Setenv("PORTAL_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")
		t.Setenv("PORTAL_SEED_DEMO", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/portal.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.PublicBaseURL != "https://portal.example.com" {
			t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.PublicBaseURL)
		}
		if !cfg.RedisEnabled() || cfg.ReportCacheTTL != 30*time.Second || cfg.RateLimit != 5 {
			t.Fatalf("unexpected redis settings: %+v", cfg)
		}
		if !slices.Equal(cfg.CORSOrigins, []string{"https://a.example.com", "https://b.example.com"}) {
			t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
		}
		wantProxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("192.0.2.10/32")}
		if !slices.Equal(cfg.TrustedProxies, wantProxies) {
			t.Fatalf("unexpected trusted proxies %v", cfg.TrustedProxies)
		}
		if !cfg.SeedDemoData {
			t.Fatal("expected demo seeding to be enabled")
		}
	})

	t.Run("trusts no proxy by default and rejects malformed entries", func(t *testing.T) {
		clearPortalEnv(t)
		t.Setenv("PORTAL_JWT_SECRET", "secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(cfg.TrustedProxies) != 0 {
			t.Fatalf("expected no trusted proxies, got %v", cfg.TrustedProxies)
		}

		t.Setenv("PORTAL_TRUSTED_PROXIES", "10.0.0.0/8,proxy.internal")
		_, err = Load()
		if err == nil || err.Error() != "invalid environment variable values: PORTAL_TRUSTED_PROXIES" {
			t.Fatalf("expected trusted proxy error, got %v", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		clearPortalEnv(t)
		t.Setenv("PORTAL_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
		if err := LoadEnvFile(); err != nil {
			t.Fatalf("expected missing file to be ignored, got %v", err)
		}
	})

	t.Run("file values fill unset variables only", func(t *testing.T) {
		clearPortalEnv(t)
		path := filepath.Join(t.TempDir(), "portal.env")
		content := "PORTAL_JWT_SECRET=from-file\nPORTAL_HTTP_PORT=7070\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("PORTAL_ENV_FILE", path)
		t.Setenv("PORTAL_HTTP_PORT", "9000")

		if err := LoadEnvFile(); err != nil {
			t.Fatalf("LoadEnvFile returned error: %v", err)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.JWTSecret != "from-file" {
			t.Fatalf("expected secret from file, got %q", cfg.JWTSecret)
		}
		if cfg.HTTPPort != 9000 {
			t.Fatalf("expected process environment to win, got %d", cfg.HTTPPort)
		}
	})
}
