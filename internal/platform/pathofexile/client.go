// Package pathofexile fetches stash tab contents from the official Path of
// Exile website using the account session cookie. A chromedp-backed variant
// exists for accounts behind aggressive Cloudflare checks.
package pathofexile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wraeclast/stashpricer/internal/domain"
)

const stashItemsPath = "/character-window/get-stash-items"

// requestGap paces stash requests; the endpoint rate-limits aggressively.
const requestGap = time.Second

// Options configure a stash client.
type Options struct {
	BaseURL   string
	SessionID string
	League    string
	Account   string
	Realm     string
	// TabTypes filters which tab kinds are fetched; empty means all.
	TabTypes []string
}

var _ domain.StashFetcher = (*Client)(nil)

// Client fetches stash tabs over plain HTTP with the POESESSID cookie.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a stash client for one account and league.
func NewClient(opts Options, logger *slog.Logger) *Client {
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "pathofexile")),
	}
}

// GetStashTab fetches a single tab by index, including the tab list.
func (c *Client) GetStashTab(ctx context.Context, tabIndex int) (StashTabResponse, error) {
	params := url.Values{}
	params.Set("league", c.opts.League)
	params.Set("realm", c.opts.Realm)
	params.Set("accountName", c.opts.Account)
	params.Set("tabIndex", strconv.Itoa(tabIndex))
	params.Set("tabs", "1")

	fullURL := c.opts.BaseURL + stashItemsPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: create request: %w", err)
	}
	req.Header.Set("Cookie", "POESESSID="+c.opts.SessionID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", c.opts.BaseURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: fetch tab %d: %w", tabIndex, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: read tab %d: %w", tabIndex, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return StashTabResponse{}, fmt.Errorf("pathofexile: tab %d: %w (session expired, account private, or wrong league)", tabIndex, domain.ErrUnauthorized)
	case http.StatusTooManyRequests:
		return StashTabResponse{}, fmt.Errorf("pathofexile: tab %d: %w", tabIndex, domain.ErrRateLimited)
	default:
		return StashTabResponse{}, fmt.Errorf("pathofexile: tab %d: HTTP %d", tabIndex, resp.StatusCode)
	}

	return decodeStashResponse(body, tabIndex)
}

// FetchItems fetches every tab matching the configured types and returns
// their items, each labelled with its tab name. A failing individual tab is
// logged and skipped; only tab 0 is fatal, since it carries the tab list.
func (c *Client) FetchItems(ctx context.Context) ([]domain.Item, error) {
	first, err := c.GetStashTab(ctx, 0)
	if err != nil {
		return nil, err
	}

	c.logger.Info("stash tab list fetched", "tabs", first.NumTabs)

	var items []domain.Item
	for _, tab := range first.Tabs {
		if !wantTab(c.opts.TabTypes, tab) {
			continue
		}

		resp := first
		if tab.Index != 0 {
			if err := sleepCtx(ctx, requestGap); err != nil {
				return nil, err
			}
			resp, err = c.GetStashTab(ctx, tab.Index)
			if err != nil {
				c.logger.Warn("stash tab fetch failed", "tab", tab.Name, "index", tab.Index, "error", err)
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

// wantTab reports whether a tab's type is in the configured filter. An empty
// filter keeps every tab.
func wantTab(types []string, tab TabInfo) bool {
	if len(types) == 0 {
		return true
	}
	for _, typ := range types {
		if strings.EqualFold(tab.Type, typ) {
			return true
		}
	}
	return false
}

func decodeStashResponse(body []byte, tabIndex int) (StashTabResponse, error) {
	// The endpoint reports some failures as a 200 with an error envelope.
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: tab %d: api error: %s", tabIndex, envelope.Error.Message)
	}

	var resp StashTabResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return StashTabResponse{}, fmt.Errorf("pathofexile: decode tab %d: %w", tabIndex, err)
	}
	return resp, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
