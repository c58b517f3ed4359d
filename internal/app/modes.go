package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wraeclast/stashpricer/internal/report"
	"github.com/wraeclast/stashpricer/internal/server"
	"github.com/wraeclast/stashpricer/internal/server/handler"
	"github.com/wraeclast/stashpricer/internal/server/ws"
	"github.com/wraeclast/stashpricer/internal/service"
)

// sessionRetention is how long finished sessions stay in the database before
// the watch loop exports them to cold storage.
const sessionRetention = 30 * 24 * time.Hour

// AnalyzeMode runs a single pricing pass and prints the report to stdout.
func (a *App) AnalyzeMode(ctx context.Context, deps *Dependencies) error {
	res, err := deps.Analyzer.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("app: analyze: %w", err)
	}

	fmt.Fprintln(os.Stdout, report.FormatTopItems(res.Items))
	fmt.Fprintln(os.Stdout, report.FormatSummary(res.Items))
	return nil
}

// WatchMode reprices the stash on a fixed interval until cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Pricing.WatchInterval.Duration),
	)
	return a.watchLoop(ctx, deps, nil, nil)
}

// ServeMode runs the watch loop alongside the HTTP + WebSocket API so
// clients can browse session history and follow runs live.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode",
		slog.Int("port", a.cfg.Server.Port),
	)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.cfg.Poe.League, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	triggerCh := make(chan struct{}, 1)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.cfg.Poe.League),
		Analyze: handler.NewAnalyzeHandler(a.logger).WithTriggerChannel(triggerCh),
	}
	if deps.Store != nil {
		handlers.Sessions = handler.NewSessionHandler(deps.Store, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.watchLoop(ctx, deps, triggerCh, func(res *service.Result) {
			hub.SessionResult(res.Session, res.Items)
			if threshold := a.cfg.Notify.HighValueChaos; threshold > 0 {
				for _, it := range res.Items {
					if it.EstimatedValue < threshold {
						break
					}
					hub.HighValueItem(it)
				}
			}
		})
	})

	return g.Wait()
}

// watchLoop runs one pricing pass immediately, then again on every interval
// tick or trigger, until the context is cancelled. Individual run failures
// are logged, not fatal; the loop keeps going.
func (a *App) watchLoop(ctx context.Context, deps *Dependencies, trigger <-chan struct{}, onResult func(*service.Result)) error {
	interval := a.cfg.Pricing.WatchInterval.Duration
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		res, err := deps.Analyzer.Analyze(ctx)
		if err != nil {
			a.logger.ErrorContext(ctx, "pricing run failed",
				slog.String("error", err.Error()),
			)
			return
		}
		if onResult != nil {
			onResult(res)
		}
		if _, err := deps.Analyzer.Prune(ctx, time.Now().Add(-sessionRetention)); err != nil {
			a.logger.WarnContext(ctx, "session archival failed",
				slog.String("error", err.Error()),
			)
		}
	}

	run()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		case <-trigger:
			run()
		}
	}
}
