package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	JWTSecret      string
	SessionTTL     time.Duration
	PublicBaseURL  string
	RedisURL       string
	ReportCacheTTL time.Duration
	RateLimit      int
	RateWindow     time.Duration
	CORSOrigins    []string
	TrustedProxies []netip.Prefix
	SeedDemoData   bool
}

// RedisEnabled reports whether a Redis URL was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// LoadEnvFile reads PORTAL_ENV_FILE (default .env) into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile() error {
	path := strings.TrimSpace(os.Getenv("PORTAL_ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields, validates required values
// and reports every missing or invalid entry in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:portal.db",
		SessionTTL:     12 * time.Hour,
		PublicBaseURL:  "http://localhost:8080",
		ReportCacheTTL: 5 * time.Minute,
		RateLimit:      20,
		RateWindow:     time.Minute,
		CORSOrigins:    []string{"*"},
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := env("PORTAL_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("PORTAL_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := env("PORTAL_JWT_SECRET"); secret == "" {
		missing = append(missing, "PORTAL_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if !parseDuration("PORTAL_SESSION_TTL", &cfg.SessionTTL) {
		invalid = append(invalid, "PORTAL_SESSION_TTL")
	}

	if base := env("PORTAL_PUBLIC_BASE_URL"); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			invalid = append(invalid, "PORTAL_PUBLIC_BASE_URL")
		} else {
			cfg.PublicBaseURL = strings.TrimRight(base, "/")
		}
	}

	cfg.RedisURL = env("PORTAL_REDIS_URL")

	if !parseDuration("PORTAL_REPORT_CACHE_TTL", &cfg.ReportCacheTTL) {
		invalid = append(invalid, "PORTAL_REPORT_CACHE_TTL")
	}

	if limitValue := env("PORTAL_RATE_LIMIT"); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "PORTAL_RATE_LIMIT")
		} else {
			cfg.RateLimit = limit
		}
	}

	if !parseDuration("PORTAL_RATE_WINDOW", &cfg.RateWindow) {
		invalid = append(invalid, "PORTAL_RATE_WINDOW")
	}

	if origins := env("PORTAL_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if proxies := env("PORTAL_TRUSTED_PROXIES"); proxies != "" {
		prefixes, err := parsePrefixes(splitList(proxies))
		if err != nil {
			invalid = append(invalid, "PORTAL_TRUSTED_PROXIES")
		} else {
			cfg.TrustedProxies = prefixes
		}
	}

	if seed := env("PORTAL_SEED_DEMO"); seed != "" {
		enabled, err := strconv.ParseBool(seed)
		if err != nil {
			invalid = append(invalid, "PORTAL_SEED_DEMO")
		} else {
			cfg.SeedDemoData = enabled
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseDuration leaves target untouched when key is unset and reports false for bad values.
func parseDuration(key string, target *time.Duration) bool {
	value := env(key)
	if value == "" {
		return true
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return false
	}
	*target = d
	return true
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePrefixes accepts CIDR ranges and bare addresses, the latter as single-host prefixes.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		if prefix, err := netip.ParsePrefix(value); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("config: trusted proxy %q: %w", value, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
