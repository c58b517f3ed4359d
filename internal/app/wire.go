package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/wraeclast/stashpricer/internal/blob/s3"
	"github.com/wraeclast/stashpricer/internal/cache/redis"
	"github.com/wraeclast/stashpricer/internal/config"
	"github.com/wraeclast/stashpricer/internal/domain"
	"github.com/wraeclast/stashpricer/internal/notify"
	"github.com/wraeclast/stashpricer/internal/platform/pathofexile"
	"github.com/wraeclast/stashpricer/internal/platform/poeninja"
	"github.com/wraeclast/stashpricer/internal/service"
	"github.com/wraeclast/stashpricer/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Provider domain.MarketProvider
	Cache    domain.SnapshotCache
	Stash    domain.StashFetcher
	Store    domain.SessionStore
	Archiver domain.Archiver
	Notifier *notify.Notifier

	Analyzer *service.Analyzer
}

// needsPostgres returns true for modes that keep session history.
// Analyze mode persists only when a database is explicitly configured.
func needsPostgres(cfg *config.Config) bool {
	switch cfg.Mode {
	case "watch", "serve":
		return true
	default:
		return cfg.Postgres.DSN != ""
	}
}

// needsS3 returns true when cold storage is configured.
func needsS3(cfg *config.Config) bool {
	return cfg.S3.Bucket != ""
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Market data provider ---
	deps.Provider = poeninja.NewClient(cfg.Ninja.BaseURL, cfg.Ninja.Timeout.Duration, logger)

	// --- Redis snapshot cache (skipped when no address is configured) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Cache = redis.NewSnapshotCache(redisClient, cfg.Pricing.SnapshotTTL.Duration)
	}

	// --- Stash fetcher ---
	poeOpts := pathofexile.Options{
		BaseURL:   cfg.Poe.BaseURL,
		SessionID: cfg.Poe.SessionID,
		League:    cfg.Poe.League,
		Account:   cfg.Poe.Account,
		Realm:     cfg.Poe.Realm,
		TabTypes:  cfg.Poe.TabTypes,
	}
	if cfg.Poe.BrowserFetch {
		browser, err := pathofexile.NewBrowser(poeOpts, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: browser: %w", err)
		}
		closers = append(closers, browser.Close)
		deps.Stash = browser
	} else {
		deps.Stash = pathofexile.NewClient(poeOpts, logger)
	}

	// --- PostgreSQL session history ---
	if needsPostgres(cfg) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Store = postgres.NewSessionStore(pgClient.Pool())
	}

	// --- S3 cold storage ---
	if needsS3(cfg) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		writer := s3blob.NewWriter(s3Client)
		// Archiving sessions needs the database; snapshot export alone does not.
		deps.Archiver = s3blob.NewArchiver(writer, deps.Store, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	deps.Analyzer = service.NewAnalyzer(service.Options{
		Provider:       deps.Provider,
		Cache:          deps.Cache,
		Stash:          deps.Stash,
		Store:          deps.Store,
		Archiver:       deps.Archiver,
		Notifier:       deps.Notifier,
		League:         cfg.Poe.League,
		Account:        cfg.Poe.Account,
		MinValueChaos:  cfg.Pricing.MinValueChaos,
		TopN:           cfg.Pricing.TopN,
		Workers:        cfg.Pricing.Workers,
		HighValueChaos: cfg.Notify.HighValueChaos,
	}, logger)

	return deps, cleanup, nil
}
