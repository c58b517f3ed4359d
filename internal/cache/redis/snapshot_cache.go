package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache using one JSON-serialized
// value per league with a TTL matching the provider's refresh cadence.
//
// Key schema:
//
//	snapshot:{league} - string value containing the JSON snapshot
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying(), ttl: ttl}
}

func snapshotKey(league string) string { return "snapshot:" + league }

// Set stores the snapshot under its league key.
func (sc *SnapshotCache) Set(ctx context.Context, snap domain.MarketSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.League, err)
	}

	if err := sc.rdb.Set(ctx, snapshotKey(snap.League), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", snap.League, err)
	}
	return nil
}

// Get retrieves the cached snapshot for a league.
// It returns domain.ErrNotFound when no fresh snapshot exists.
func (sc *SnapshotCache) Get(ctx context.Context, league string) (domain.MarketSnapshot, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey(league)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketSnapshot{}, domain.ErrNotFound
		}
		return domain.MarketSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", league, err)
	}

	var snap domain.MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("redis: unmarshal snapshot %s: %w", league, err)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot for a league.
func (sc *SnapshotCache) Invalidate(ctx context.Context, league string) error {
	if err := sc.rdb.Del(ctx, snapshotKey(league)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate snapshot %s: %w", league, err)
	}
	return nil
}
