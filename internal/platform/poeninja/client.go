// Package poeninja fetches market price data from the poe.ninja API and
// assembles it into a MarketSnapshot.
package poeninja

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// divineRateFallback is used when the currency overview carries no Divine
// Orb line.
const divineRateFallback = 200

var _ domain.MarketProvider = (*Client)(nil)

// Client is the REST client for the poe.ninja data API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new poe.ninja client.
//
// baseURL is the API root, e.g. "https://poe.ninja/api/data".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(slog.String("component", "poeninja")),
	}
}

// FetchSnapshot pulls every price category for the league concurrently and
// returns the assembled snapshot. Individual unique equipment classes degrade
// to empty on failure; the currency-style categories are required, since a
// snapshot without them cannot be indexed.
func (c *Client) FetchSnapshot(ctx context.Context, league string) (*domain.MarketSnapshot, error) {
	snap := &domain.MarketSnapshot{
		League:    league,
		FetchedAt: time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lines, err := c.currencyOverview(ctx, league, "Currency")
		if err != nil {
			return err
		}
		snap.Currency = lines
		return nil
	})
	g.Go(func() error {
		lines, err := c.currencyOverview(ctx, league, "Fragment")
		if err != nil {
			return err
		}
		snap.Fragments = lines
		return nil
	})
	g.Go(func() error {
		snap.Scarabs = c.fetchScarabs(ctx, league)
		return nil
	})
	g.Go(func() error {
		lines, err := c.currencyOverview(ctx, league, "Oil")
		if err != nil {
			return err
		}
		snap.Oils = lines
		return nil
	})
	g.Go(func() error {
		lines, err := c.currencyOverview(ctx, league, "Essence")
		if err != nil {
			return err
		}
		snap.Essences = lines
		return nil
	})
	g.Go(func() error {
		snap.Uniques = c.fetchUniques(ctx, league)
		return nil
	})
	g.Go(func() error {
		lines, err := c.itemOverview(ctx, league, "SkillGem")
		if err != nil {
			return err
		}
		snap.Gems = lines
		return nil
	})
	g.Go(func() error {
		lines, err := c.itemOverview(ctx, league, "DivinationCard")
		if err != nil {
			return err
		}
		snap.Divination = lines
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("poeninja: fetch snapshot for %s: %w", league, err)
	}

	snap.DivineRate = divineRate(snap.Currency)

	c.logger.Info("market snapshot fetched",
		"league", league,
		"divine_rate", snap.DivineRate,
		"uniques", len(snap.Uniques),
		"gems", len(snap.Gems),
		"currency", len(snap.Currency),
		"fragments", len(snap.Fragments),
		"scarabs", len(snap.Scarabs),
		"divination", len(snap.Divination))

	return snap, nil
}

// fetchUniques pulls each unique equipment class and concatenates the lines.
// A failing class is logged and skipped rather than failing the snapshot.
func (c *Client) fetchUniques(ctx context.Context, league string) []domain.ItemLine {
	all := make([]domain.ItemLine, 0, 2048)
	for _, typ := range uniqueOverviewTypes {
		lines, err := c.itemOverview(ctx, league, typ)
		if err != nil {
			c.logger.Warn("unique overview fetch failed", "type", typ, "error", err)
			continue
		}
		all = append(all, lines...)
	}
	return all
}

// fetchScarabs handles the category's endpoint drift across leagues: first
// currencyoverview, then itemoverview (current leagues), then the alternate
// currency categories scarabs have historically hidden in. An empty slice is
// a valid outcome.
func (c *Client) fetchScarabs(ctx context.Context, league string) []domain.CurrencyLine {
	if lines, err := c.currencyOverview(ctx, league, "Scarab"); err == nil && len(lines) > 0 {
		return lines
	}

	if items, err := c.itemOverview(ctx, league, "Scarab"); err == nil && len(items) > 0 {
		converted := make([]domain.CurrencyLine, len(items))
		for i, it := range items {
			converted[i] = domain.CurrencyLine{
				Name:            it.Name,
				ChaosEquivalent: it.ChaosValue,
			}
		}
		return converted
	}

	for _, typ := range scarabAlternateTypes {
		lines, err := c.currencyOverview(ctx, league, typ)
		if err != nil {
			continue
		}
		var scarabs []domain.CurrencyLine
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line.Name), "scarab") {
				scarabs = append(scarabs, line)
			}
		}
		if len(scarabs) > 0 {
			return scarabs
		}
	}

	c.logger.Warn("no scarab prices found in any category", "league", league)
	return []domain.CurrencyLine{}
}

// divineRate extracts the chaos value of one Divine Orb from the currency
// lines, falling back to a fixed reference rate.
func divineRate(currency []domain.CurrencyLine) float64 {
	for _, line := range currency {
		if line.Name == "Divine Orb" && line.ChaosEquivalent > 0 {
			return line.ChaosEquivalent
		}
	}
	return divineRateFallback
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) itemOverview(ctx context.Context, league, typ string) ([]domain.ItemLine, error) {
	body, err := c.get(ctx, "/itemoverview", league, typ)
	if err != nil {
		return nil, err
	}

	var resp itemOverviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s overview: %w", typ, err)
	}
	return resp.Lines, nil
}

func (c *Client) currencyOverview(ctx context.Context, league, typ string) ([]domain.CurrencyLine, error) {
	body, err := c.get(ctx, "/currencyoverview", league, typ)
	if err != nil {
		return nil, err
	}

	var resp currencyOverviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s overview: %w", typ, err)
	}
	return resp.Lines, nil
}

func (c *Client) get(ctx context.Context, path, league, typ string) ([]byte, error) {
	params := url.Values{}
	params.Set("league", league)
	params.Set("type", typ)

	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("%s %s: %w", path, typ, err)
	}

	return respBody, nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func checkStatus(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return fmt.Errorf("HTTP %d", statusCode)
	}
}
