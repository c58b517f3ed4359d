package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// SessionStore implements domain.SessionStore using PostgreSQL. Valuation
// rows carry the full ValuedItem as JSONB next to the indexed columns, so
// per-item price history survives schema growth.
type SessionStore struct {
	pool *pgxpool.Pool
}

var _ domain.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new SessionStore backed by the given pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

const sessionSelectCols = `id, league, account, divine_rate,
	items_seen, items_priced, total_chaos, started_at, finished_at`

func scanSession(row pgx.Row) (domain.Session, error) {
	var s domain.Session
	var finished *time.Time
	err := row.Scan(
		&s.ID, &s.League, &s.Account, &s.DivineRate,
		&s.ItemsSeen, &s.ItemsPriced, &s.TotalChaos,
		&s.StartedAt, &finished,
	)
	if err != nil {
		return domain.Session{}, err
	}
	if finished != nil {
		s.FinishedAt = *finished
	}
	return s, nil
}

func scanSessionRows(rows pgx.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateSession records the start of a pricing run.
func (s *SessionStore) CreateSession(ctx context.Context, sess domain.Session) error {
	const query = `
		INSERT INTO sessions (id, league, account, divine_rate, started_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, query,
		sess.ID, sess.League, sess.Account, sess.DivineRate, sess.StartedAt,
	); err != nil {
		return fmt.Errorf("postgres: create session %s: %w", sess.ID, err)
	}
	return nil
}

// FinishSession stores the run's final counters and finish time.
func (s *SessionStore) FinishSession(ctx context.Context, sess domain.Session) error {
	const query = `
		UPDATE sessions
		SET items_seen = $2, items_priced = $3, total_chaos = $4, finished_at = $5
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		sess.ID, sess.ItemsSeen, sess.ItemsPriced, sess.TotalChaos, sess.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: finish session %s: %w", sess.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: finish session %s: %w", sess.ID, domain.ErrNotFound)
	}
	return nil
}

// GetSession returns one session by ID.
func (s *SessionStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	query := "SELECT " + sessionSelectCols + " FROM sessions WHERE id = $1"

	sess, err := scanSession(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("postgres: get session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns sessions newest first.
func (s *SessionStore) ListSessions(ctx context.Context, opts domain.ListOpts) ([]domain.Session, error) {
	query := "SELECT " + sessionSelectCols + " FROM sessions"
	args := []any{}
	idx := 1

	var where []string
	if opts.Since != nil {
		where = append(where, fmt.Sprintf("started_at >= $%d", idx))
		args = append(args, *opts.Since)
		idx++
	}
	if opts.Until != nil {
		where = append(where, fmt.Sprintf("started_at < $%d", idx))
		args = append(args, *opts.Until)
		idx++
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}

	query += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, opts.Limit)
		idx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sessions: %w", err)
	}
	return sessions, nil
}

// InsertValuations stores every priced item of a session using a pgx Batch.
func (s *SessionStore) InsertValuations(ctx context.Context, sessionID string, items []domain.ValuedItem) error {
	if len(items) == 0 {
		return nil
	}

	const query = `
		INSERT INTO valuations (
			session_id, item_id, item_name, type_line, frame_type, stash_tab,
			chaos_value, divine_value, confidence, liquidity, reasoning, notes,
			suggested_chaos, suggested_divine, payload
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15
		)`

	batch := &pgx.Batch{}
	for _, it := range items {
		payload, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("postgres: marshal valuation %s: %w", it.Item.ID, err)
		}

		notes := it.Notes
		if notes == nil {
			notes = []string{}
		}

		batch.Queue(query,
			sessionID, it.Item.ID, it.Item.DisplayName(), it.Item.TypeLine,
			int(it.Item.FrameType), it.Item.StashTab,
			it.EstimatedValue, it.DivineValue,
			string(it.Confidence), string(it.Liquidity), it.Reasoning, notes,
			it.SuggestedPrice.Chaos, it.SuggestedPrice.Divine, payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert valuation batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListValuations returns a session's priced items, most valuable first,
// rebuilt from the stored payloads.
func (s *SessionStore) ListValuations(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.ValuedItem, error) {
	query := `
		SELECT payload FROM valuations
		WHERE session_id = $1
		ORDER BY chaos_value DESC`
	args := []any{sessionID}
	idx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, opts.Limit)
		idx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list valuations %s: %w", sessionID, err)
	}
	defer rows.Close()

	var items []domain.ValuedItem
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("postgres: scan valuation: %w", err)
		}
		var it domain.ValuedItem
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal valuation: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list valuations %s: %w", sessionID, err)
	}
	return items, nil
}

// ListBefore returns sessions finished before the cutoff, oldest first.
func (s *SessionStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	query := "SELECT " + sessionSelectCols + `
		FROM sessions
		WHERE finished_at IS NOT NULL AND finished_at < $1
		ORDER BY finished_at ASC`
	args := []any{before}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sessions before %s: %w", before, err)
	}
	defer rows.Close()

	sessions, err := scanSessionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sessions before %s: %w", before, err)
	}
	return sessions, nil
}

// DeleteBefore removes sessions finished before the cutoff; their valuations
// go with them via the foreign key cascade.
func (s *SessionStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM sessions WHERE finished_at IS NOT NULL AND finished_at < $1",
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete sessions before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}
