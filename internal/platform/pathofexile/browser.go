package pathofexile

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/wraeclast/stashpricer/internal/domain"
)

var _ domain.StashFetcher = (*Browser)(nil)

// Browser fetches stash tabs through a real headless Chrome session. The
// plain cookie client gets rejected by Cloudflare on some accounts; requests
// issued from inside a browser page pass the challenge.
type Browser struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewBrowser launches headless Chrome, installs the session cookie, and
// navigates to the site root to establish the session. Close must be called
// to release the browser.
func NewBrowser(opts Options, logger *slog.Logger) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-default-apps", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie("POESESSID", opts.SessionID).
				WithDomain(".pathofexile.com").
				WithPath("/").
				WithHTTPOnly(true).
				WithSecure(true).
				Do(ctx)
		}),
		chromedp.Navigate(opts.BaseURL+"/"),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("pathofexile: launch browser: %w", err)
	}

	return &Browser{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With(slog.String("component", "pathofexile_browser")),
	}, nil
}

// GetStashTab fetches a single tab by issuing the API request from inside
// the established page, so the browser's cookies and Cloudflare clearance
// apply.
func (b *Browser) GetStashTab(ctx context.Context, tabIndex int) (StashTabResponse, error) {
	params := url.Values{}
	params.Set("league", b.opts.League)
	params.Set("realm", b.opts.Realm)
	params.Set("accountName", b.opts.Account)
	params.Set("tabIndex", strconv.Itoa(tabIndex))
	params.Set("tabs", "1")

	apiURL := b.opts.BaseURL + stashItemsPath + "?" + params.Encode()

	expr := fmt.Sprintf(
		`fetch(%q, {credentials: "include", headers: {Accept: "application/json"}}).then(r => r.text())`,
		apiURL)

	runCtx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	var body string
	var runErr error
	go func() {
		defer close(done)
		runErr = chromedp.Run(runCtx, chromedp.Evaluate(expr, &body,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}))
	}()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return StashTabResponse{}, ctx.Err()
	case <-done:
	}
	if runErr != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: browser fetch tab %d: %w", tabIndex, runErr)
	}

	return decodeStashResponse([]byte(body), tabIndex)
}

// FetchItems mirrors Client.FetchItems over the browser transport.
func (b *Browser) FetchItems(ctx context.Context) ([]domain.Item, error) {
	first, err := b.GetStashTab(ctx, 0)
	if err != nil {
		return nil, err
	}

	b.logger.Info("stash tab list fetched", "tabs", first.NumTabs)

	var items []domain.Item
	for _, tab := range first.Tabs {
		if !wantTab(b.opts.TabTypes, tab) {
			continue
		}

		resp := first
		if tab.Index != 0 {
			if err := sleepCtx(ctx, requestGap); err != nil {
				return nil, err
			}
			resp, err = b.GetStashTab(ctx, tab.Index)
			if err != nil {
				b.logger.Warn("stash tab fetch failed", "tab", tab.Name, "index", tab.Index, "error", err)
				continue
			}
		}

		for _, it := range resp.Items {
			it.StashTab = tab.Name
			items = append(items, it)
		}
	}

	return items, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancel()
}
