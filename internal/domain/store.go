package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// SessionStore persists pricing sessions and the valuations they produced,
// giving items a price history across runs.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	FinishSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, opts ListOpts) ([]Session, error)

	InsertValuations(ctx context.Context, sessionID string, items []ValuedItem) error
	ListValuations(ctx context.Context, sessionID string, opts ListOpts) ([]ValuedItem, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]Session, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
