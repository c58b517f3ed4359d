package domain

import "context"

// StashFetcher retrieves the account's stash items. Implementations exist
// for the plain cookie client and the headless-browser fallback.
type StashFetcher interface {
	FetchItems(ctx context.Context) ([]Item, error)
}

// MarketProvider fetches a full market snapshot for a league.
type MarketProvider interface {
	FetchSnapshot(ctx context.Context, league string) (*MarketSnapshot, error)
}
