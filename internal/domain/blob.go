package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver moves old pricing data to cold storage.
type Archiver interface {
	// ArchiveSnapshot writes a market snapshot under the given session ID.
	ArchiveSnapshot(ctx context.Context, sessionID string, snap MarketSnapshot) error
	// ArchiveSessions exports sessions finished before the cutoff and removes
	// them from the database, returning the number archived.
	ArchiveSessions(ctx context.Context, before time.Time) (int64, error)
}
