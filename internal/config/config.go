package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultPort            = "8080"
	DefaultDBDriver        = "sqlite"
	DefaultDBPath          = "data/ledger.db"
	DefaultRedisStream     = "bets.events"
	DefaultSettingsPath    = "data/settings.yaml"
	DefaultAlertCooldown   = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds all process configuration. Portfolio settings (bankroll,
// staking policy) live in the settings file, not here.
type Config struct {
	Port        string
	DBDriver    string // "sqlite" or "postgres"
	DBPath      string
	DatabaseURL string

	// Redis event stream; disabled when RedisURL is empty
	RedisURL    string
	RedisStream string

	SettingsPath    string
	CORSOrigins     []string
	AlertCooldown   time.Duration
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		Port:            DefaultPort,
		DBDriver:        DefaultDBDriver,
		DBPath:          DefaultDBPath,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisStream:     DefaultRedisStream,
		SettingsPath:    DefaultSettingsPath,
		CORSOrigins:     []string{"*"},
		AlertCooldown:   DefaultAlertCooldown,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DBDriver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("REDIS_STREAM"); v != "" {
		cfg.RedisStream = v
	}

	if v := os.Getenv("SETTINGS_PATH"); v != "" {
		cfg.SettingsPath = v
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}

	if v := os.Getenv("ALERT_COOLDOWN_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AlertCooldown = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.SettingsPath == "" {
		return fmt.Errorf("SETTINGS_PATH must not be empty")
	}
	if cfg.AlertCooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN_SEC must be non-negative, got %v", cfg.AlertCooldown)
	}
	if cfg.RedisURL != "" {
		if _, err := url.Parse(cfg.RedisURL); err != nil {
			return fmt.Errorf("REDIS_URL is not a valid URL: %w", err)
		}
	}
	return nil
}

// FormatDSN returns a connection string safe to log, with any password masked.
func FormatDSN(dsn string) string {
	if dsn == "" {
		return "disabled"
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
