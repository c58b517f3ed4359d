package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wraeclast/stashpricer/internal/catalog"
	"github.com/wraeclast/stashpricer/internal/domain"
	"github.com/wraeclast/stashpricer/internal/notify"
	"github.com/wraeclast/stashpricer/internal/valuator"
)

// Analyzer runs one full pricing pass: refresh market data, pull the stash,
// value everything, rank the results, and persist the session.
type Analyzer struct {
	provider domain.MarketProvider
	cache    domain.SnapshotCache
	stash    domain.StashFetcher
	store    domain.SessionStore
	archiver domain.Archiver
	notifier *notify.Notifier
	logger   *slog.Logger

	league  string
	account string

	minValue       float64
	topN           int
	workers        int
	highValueChaos float64
}

// Options configures an Analyzer. Cache, store, archiver and notifier are
// optional; a nil value disables that concern.
type Options struct {
	Provider domain.MarketProvider
	Cache    domain.SnapshotCache
	Stash    domain.StashFetcher
	Store    domain.SessionStore
	Archiver domain.Archiver
	Notifier *notify.Notifier

	League  string
	Account string

	MinValueChaos  float64
	TopN           int
	Workers        int
	HighValueChaos float64
}

// NewAnalyzer creates an Analyzer from its dependencies.
func NewAnalyzer(opts Options, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		provider:       opts.Provider,
		cache:          opts.Cache,
		stash:          opts.Stash,
		store:          opts.Store,
		archiver:       opts.Archiver,
		notifier:       opts.Notifier,
		logger:         logger.With(slog.String("component", "analyzer")),
		league:         opts.League,
		account:        opts.Account,
		minValue:       opts.MinValueChaos,
		topN:           opts.TopN,
		workers:        opts.Workers,
		highValueChaos: opts.HighValueChaos,
	}
}

// Result is the outcome of a single pricing run.
type Result struct {
	Session domain.Session      `json:"session"`
	Items   []domain.ValuedItem `json:"items"`
}

// Analyze performs one complete pricing run and returns the ranked results.
func (a *Analyzer) Analyze(ctx context.Context) (*Result, error) {
	snap, err := a.snapshot(ctx)
	if err != nil {
		a.notifyError(ctx, "market snapshot", err)
		return nil, fmt.Errorf("analyzer: market snapshot: %w", err)
	}

	cat, err := catalog.Build(snap)
	if err != nil {
		a.notifyError(ctx, "catalog build", err)
		return nil, fmt.Errorf("analyzer: build catalog: %w", err)
	}

	sess := domain.Session{
		ID:         uuid.NewString(),
		League:     a.league,
		Account:    a.account,
		DivineRate: cat.DivineRate(),
		StartedAt:  time.Now().UTC(),
	}

	if a.store != nil {
		if err := a.store.CreateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("analyzer: create session: %w", err)
		}
	}

	a.logger.InfoContext(ctx, "analyzer: session started",
		slog.String("session_id", sess.ID),
		slog.String("league", sess.League),
		slog.Float64("divine_rate", sess.DivineRate),
	)

	items, err := a.stash.FetchItems(ctx)
	if err != nil {
		a.notifyError(ctx, "stash fetch", err)
		return nil, fmt.Errorf("analyzer: fetch stash: %w", err)
	}
	sess.ItemsSeen = len(items)

	val := valuator.New(cat, a.logger)
	priced, err := val.ValueBatch(ctx, items, a.workers)
	if err != nil {
		a.notifyError(ctx, "valuation", err)
		return nil, fmt.Errorf("analyzer: value batch: %w", err)
	}
	sess.ItemsPriced = len(priced)
	for _, it := range priced {
		sess.TotalChaos += it.EstimatedValue
	}

	ranked := valuator.FilterAndRank(priced, a.minValue, a.topN)

	if a.store != nil && len(ranked) > 0 {
		if err := a.store.InsertValuations(ctx, sess.ID, ranked); err != nil {
			return nil, fmt.Errorf("analyzer: insert valuations: %w", err)
		}
	}

	sess.FinishedAt = time.Now().UTC()
	if a.store != nil {
		if err := a.store.FinishSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("analyzer: finish session: %w", err)
		}
	}

	if a.archiver != nil {
		if err := a.archiver.ArchiveSnapshot(ctx, sess.ID, *snap); err != nil {
			// Archival is best effort; the run already succeeded.
			a.logger.WarnContext(ctx, "analyzer: snapshot archive failed",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	a.notifyResults(ctx, sess, ranked)

	a.logger.InfoContext(ctx, "analyzer: session finished",
		slog.String("session_id", sess.ID),
		slog.Int("items_seen", sess.ItemsSeen),
		slog.Int("items_priced", sess.ItemsPriced),
		slog.Float64("total_chaos", sess.TotalChaos),
		slog.Duration("elapsed", sess.FinishedAt.Sub(sess.StartedAt)),
	)

	return &Result{Session: sess, Items: ranked}, nil
}

// Prune archives and deletes sessions finished before the cutoff. It is a
// no-op when no archiver is configured.
func (a *Analyzer) Prune(ctx context.Context, before time.Time) (int64, error) {
	if a.archiver == nil {
		return 0, nil
	}
	n, err := a.archiver.ArchiveSessions(ctx, before)
	if err != nil {
		return n, fmt.Errorf("analyzer: archive sessions: %w", err)
	}
	if n > 0 {
		a.logger.InfoContext(ctx, "analyzer: archived old sessions",
			slog.Int64("count", n),
			slog.Time("before", before),
		)
	}
	return n, nil
}

// snapshot returns a market snapshot, preferring the cache and falling back
// to the provider on a miss. Provider results are cached best effort.
func (a *Analyzer) snapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	if a.cache != nil {
		snap, err := a.cache.Get(ctx, a.league)
		if err == nil {
			a.logger.DebugContext(ctx, "analyzer: snapshot cache hit",
				slog.String("league", a.league),
				slog.Time("fetched_at", snap.FetchedAt),
			)
			return &snap, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.WarnContext(ctx, "analyzer: snapshot cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	snap, err := a.provider.FetchSnapshot(ctx, a.league)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, *snap); err != nil {
			a.logger.WarnContext(ctx, "analyzer: snapshot cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return snap, nil
}

func (a *Analyzer) notifyResults(ctx context.Context, sess domain.Session, items []domain.ValuedItem) {
	if a.notifier == nil {
		return
	}
	if a.highValueChaos > 0 {
		for _, it := range items {
			if it.EstimatedValue < a.highValueChaos {
				break // items are sorted by value descending
			}
			if err := a.notifier.HighValueItem(ctx, it); err != nil {
				a.logger.WarnContext(ctx, "analyzer: high value notification failed",
					slog.String("item", it.Item.Name),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	if err := a.notifier.SessionComplete(ctx, sess); err != nil {
		a.logger.WarnContext(ctx, "analyzer: session notification failed",
			slog.String("error", err.Error()),
		)
	}
}

func (a *Analyzer) notifyError(ctx context.Context, stage string, err error) {
	if a.notifier == nil {
		return
	}
	if nerr := a.notifier.Error(ctx, stage, err); nerr != nil {
		a.logger.WarnContext(ctx, "analyzer: error notification failed",
			slog.String("error", nerr.Error()),
		)
	}
}
