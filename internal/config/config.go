// Package config defines the top-level configuration for the stash pricer
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PRICER_* environment variables.
type Config struct {
	Poe      PoeConfig      `toml:"poe"`
	Ninja    NinjaConfig    `toml:"ninja"`
	Pricing  PricingConfig  `toml:"pricing"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// PoeConfig holds the Path of Exile account and stash API parameters.
type PoeConfig struct {
	League       string   `toml:"league"`
	Account      string   `toml:"account"`
	SessionID    string   `toml:"session_id"`
	Realm        string   `toml:"realm"`
	BaseURL      string   `toml:"base_url"`
	TabTypes     []string `toml:"tab_types"`
	BrowserFetch bool     `toml:"browser_fetch"`
}

// NinjaConfig holds the market data provider endpoints.
type NinjaConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// PricingConfig holds valuation thresholds and batch parameters.
type PricingConfig struct {
	MinValueChaos float64  `toml:"min_value_chaos"`
	TopN          int      `toml:"top_n"`
	Workers       int      `toml:"workers"`
	SnapshotTTL   duration `toml:"snapshot_ttl"`
	WatchInterval duration `toml:"watch_interval"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters for serve mode.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	// HighValueChaos is the chaos threshold for the high_value_item event.
	HighValueChaos float64 `toml:"high_value_chaos"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Poe: PoeConfig{
			League:   "Standard",
			Realm:    "pc",
			BaseURL:  "https://www.pathofexile.com",
			TabTypes: []string{"NormalStash", "PremiumStash", "QuadStash", "CurrencyStash", "FragmentStash"},
		},
		Ninja: NinjaConfig{
			BaseURL: "https://poe.ninja/api/data",
			Timeout: duration{30 * time.Second},
		},
		Pricing: PricingConfig{
			MinValueChaos: 5,
			TopN:          50,
			Workers:       0, // one per CPU
			SnapshotTTL:   duration{30 * time.Minute},
			WatchInterval: duration{10 * time.Minute},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "stashpricer",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "stashpricer-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events:         []string{"high_value_item", "session_complete", "error"},
			HighValueChaos: 100,
		},
		Mode:     "analyze",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"analyze": true,
	"watch":   true,
	"serve":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: analyze, watch, serve)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Poe: stash access needs an account and a session cookie in every mode.
	if c.Poe.League == "" {
		errs = append(errs, "poe: league must not be empty")
	}
	if c.Poe.Account == "" {
		errs = append(errs, "poe: account must not be empty")
	}
	if c.Poe.SessionID == "" {
		errs = append(errs, "poe: session_id must be set (POESESSID cookie)")
	}
	if c.Poe.BaseURL == "" {
		errs = append(errs, "poe: base_url must not be empty")
	}

	// Ninja
	if c.Ninja.BaseURL == "" {
		errs = append(errs, "ninja: base_url must not be empty")
	}
	if c.Ninja.Timeout.Duration <= 0 {
		errs = append(errs, "ninja: timeout must be > 0")
	}

	// Pricing
	if c.Pricing.MinValueChaos < 0 {
		errs = append(errs, "pricing: min_value_chaos must be >= 0")
	}
	if c.Pricing.TopN < 0 {
		errs = append(errs, "pricing: top_n must be >= 0 (0 = unlimited)")
	}
	if c.Pricing.Workers < 0 {
		errs = append(errs, "pricing: workers must be >= 0 (0 = one per CPU)")
	}
	if c.Pricing.SnapshotTTL.Duration <= 0 {
		errs = append(errs, "pricing: snapshot_ttl must be > 0")
	}
	if c.Mode == "watch" || c.Mode == "serve" {
		if c.Pricing.WatchInterval.Duration <= 0 {
			errs = append(errs, "pricing: watch_interval must be > 0 for mode "+c.Mode)
		}
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis settings only matter when an addr is set; empty disables caching.
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 settings only matter when a bucket is set; empty disables cold storage.
	if c.S3.Bucket != "" && c.S3.Region == "" {
		errs = append(errs, "s3: region must be set when a bucket is configured")
	}

	// Telegram chat ID and token must come together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	if c.Notify.HighValueChaos < 0 {
		errs = append(errs, "notify: high_value_chaos must be >= 0")
	}

	// Server
	if c.Mode == "serve" && c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
