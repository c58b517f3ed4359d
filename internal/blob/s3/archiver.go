package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// archiveBatch bounds how many sessions one ArchiveSessions pass exports.
const archiveBatch = 100

// Archiver implements domain.Archiver: snapshots are written per session,
// and old sessions are exported with their valuations before being deleted
// from the database.
//
// Object layout:
//
//	snapshots/{league}/{sessionID}.json
//	sessions/{year}/{sessionID}.json
type Archiver struct {
	writer *Writer
	store  domain.SessionStore
	logger *slog.Logger
}

var _ domain.Archiver = (*Archiver)(nil)

// NewArchiver creates an Archiver over the given writer and session store.
func NewArchiver(writer *Writer, store domain.SessionStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		store:  store,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveSnapshot stores the market snapshot a session priced against, so a
// past valuation can be re-derived later.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, sessionID string, snap domain.MarketSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot for session %s: %w", sessionID, err)
	}

	path := fmt.Sprintf("snapshots/%s/%s.json", snap.League, sessionID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return err
	}

	a.logger.Debug("snapshot archived", "session", sessionID, "path", path, "bytes", len(data))
	return nil
}

// sessionExport is the archived representation of one session.
type sessionExport struct {
	Session    domain.Session      `json:"session"`
	Valuations []domain.ValuedItem `json:"valuations"`
}

// ArchiveSessions exports every session finished before the cutoff to object
// storage and deletes it from the database. It returns the number archived.
func (a *Archiver) ArchiveSessions(ctx context.Context, before time.Time) (int64, error) {
	if a.store == nil {
		return 0, nil
	}

	var archived int64

	for {
		sessions, err := a.store.ListBefore(ctx, before, archiveBatch)
		if err != nil {
			return archived, fmt.Errorf("s3blob: list sessions to archive: %w", err)
		}
		if len(sessions) == 0 {
			break
		}

		var maxFinished time.Time
		for _, sess := range sessions {
			valuations, err := a.store.ListValuations(ctx, sess.ID, domain.ListOpts{})
			if err != nil {
				return archived, fmt.Errorf("s3blob: load valuations for %s: %w", sess.ID, err)
			}

			data, err := json.Marshal(sessionExport{Session: sess, Valuations: valuations})
			if err != nil {
				return archived, fmt.Errorf("s3blob: marshal session %s: %w", sess.ID, err)
			}

			path := fmt.Sprintf("sessions/%d/%s.json", sess.FinishedAt.Year(), sess.ID)
			if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
				return archived, err
			}

			archived++
			if sess.FinishedAt.After(maxFinished) {
				maxFinished = sess.FinishedAt
			}
		}

		// Delete only what this pass exported. The cutoff moves to just past
		// the newest exported session so a failed later batch never deletes
		// unexported rows.
		cutoff := maxFinished.Add(time.Millisecond)
		if cutoff.After(before) {
			cutoff = before
		}
		if _, err := a.store.DeleteBefore(ctx, cutoff); err != nil {
			return archived, fmt.Errorf("s3blob: delete archived sessions: %w", err)
		}

		if len(sessions) < archiveBatch {
			break
		}
	}

	if archived > 0 {
		a.logger.Info("sessions archived", "count", archived, "before", before)
	}
	return archived, nil
}
