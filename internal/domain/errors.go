package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSnapshotIncomplete = errors.New("market snapshot is missing required categories")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("rate limited")
)
