package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PRICER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PRICER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject the session cookie and other secrets at
// deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// --- Poe ---
	setStr(&cfg.Poe.League, "PRICER_POE_LEAGUE")
	setStr(&cfg.Poe.Account, "PRICER_POE_ACCOUNT")
	setStr(&cfg.Poe.SessionID, "POESESSID") // compatibility alias
	setStr(&cfg.Poe.SessionID, "PRICER_POE_SESSION_ID")
	setStr(&cfg.Poe.Realm, "PRICER_POE_REALM")
	setStr(&cfg.Poe.BaseURL, "PRICER_POE_BASE_URL")
	setStringSlice(&cfg.Poe.TabTypes, "PRICER_POE_TAB_TYPES")
	setBool(&cfg.Poe.BrowserFetch, "PRICER_POE_BROWSER_FETCH")

	// --- Ninja ---
	setStr(&cfg.Ninja.BaseURL, "PRICER_NINJA_BASE_URL")
	setDuration(&cfg.Ninja.Timeout, "PRICER_NINJA_TIMEOUT")

	// --- Pricing ---
	setFloat64(&cfg.Pricing.MinValueChaos, "PRICER_PRICING_MIN_VALUE_CHAOS")
	setInt(&cfg.Pricing.TopN, "PRICER_PRICING_TOP_N")
	setInt(&cfg.Pricing.Workers, "PRICER_PRICING_WORKERS")
	setDuration(&cfg.Pricing.SnapshotTTL, "PRICER_PRICING_SNAPSHOT_TTL")
	setDuration(&cfg.Pricing.WatchInterval, "PRICER_PRICING_WATCH_INTERVAL")

	// --- Postgres ---
	setStr(&cfg.Postgres.DSN, "PRICER_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PRICER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PRICER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PRICER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PRICER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PRICER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PRICER_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PRICER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PRICER_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PRICER_POSTGRES_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "PRICER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PRICER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PRICER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PRICER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PRICER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PRICER_REDIS_TLS_ENABLED")

	// --- S3 ---
	setStr(&cfg.S3.Endpoint, "PRICER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PRICER_S3_REGION")
	setStr(&cfg.S3.Bucket, "PRICER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PRICER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PRICER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PRICER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PRICER_S3_FORCE_PATH_STYLE")

	// --- Server ---
	setBool(&cfg.Server.Enabled, "PRICER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "PRICER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PRICER_SERVER_CORS_ORIGINS")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "PRICER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PRICER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PRICER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PRICER_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.HighValueChaos, "PRICER_NOTIFY_HIGH_VALUE_CHAOS")

	// --- Top-level ---
	setStr(&cfg.Mode, "PRICER_MODE")
	setStr(&cfg.LogLevel, "PRICER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
