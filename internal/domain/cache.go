package domain

import "context"

// SnapshotCache stores fetched market snapshots so repeated pricing runs
// within the provider's refresh window do not hammer the price API.
type SnapshotCache interface {
	Set(ctx context.Context, snap MarketSnapshot) error
	// Get returns ErrNotFound when no fresh snapshot exists for the league.
	Get(ctx context.Context, league string) (MarketSnapshot, error)
	Invalidate(ctx context.Context, league string) error
}
