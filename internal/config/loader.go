package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Saved-offer store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort             int
	SQLiteDSN            string
	SessionTTL           time.Duration
	LogLevel             slog.Level
	SavedOffersBackend   string
	RedisAddr            string
	SavedOffersCacheSize int
	AdminEmail           string
	AdminPassword        string
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Missing and malformed values are
// collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:             8080,
		SQLiteDSN:            "portal.db",
		SessionTTL:           24 * time.Hour,
		LogLevel:             slog.LevelInfo,
		SavedOffersBackend:   BackendSQLite,
		SavedOffersCacheSize: 1024,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := env("PORTAL_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("PORTAL_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := env("PORTAL_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PORTAL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if levelValue := env("PORTAL_LOG_LEVEL"); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "PORTAL_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if backend := strings.ToLower(env("PORTAL_SAVED_OFFERS_BACKEND")); backend != "" {
		switch backend {
		case BackendSQLite, BackendMemory, BackendRedis:
			cfg.SavedOffersBackend = backend
		default:
			invalid = append(invalid, "PORTAL_SAVED_OFFERS_BACKEND")
		}
	}

	cfg.RedisAddr = env("PORTAL_REDIS_ADDR")
	if cfg.SavedOffersBackend == BackendRedis && cfg.RedisAddr == "" {
		missing = append(missing, "PORTAL_REDIS_ADDR")
	}

	if sizeValue := env("PORTAL_SAVED_OFFERS_CACHE_SIZE"); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "PORTAL_SAVED_OFFERS_CACHE_SIZE")
		} else {
			cfg.SavedOffersCacheSize = size
		}
	}

	cfg.AdminEmail = env("PORTAL_ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("PORTAL_ADMIN_PASSWORD")
	switch {
	case cfg.AdminEmail != "" && cfg.AdminPassword == "":
		missing = append(missing, "PORTAL_ADMIN_PASSWORD")
	case cfg.AdminEmail == "" && cfg.AdminPassword != "":
		missing = append(missing, "PORTAL_ADMIN_EMAIL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
