package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wraeclast/stashpricer/internal/domain"
)

type stubStore struct {
	sessions []domain.Session
	items    map[string][]domain.ValuedItem
}

func (s *stubStore) CreateSession(ctx context.Context, sess domain.Session) error { return nil }
func (s *stubStore) FinishSession(ctx context.Context, sess domain.Session) error { return nil }

func (s *stubStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return domain.Session{}, domain.ErrNotFound
}

func (s *stubStore) ListSessions(ctx context.Context, opts domain.ListOpts) ([]domain.Session, error) {
	return s.sessions, nil
}

func (s *stubStore) InsertValuations(ctx context.Context, sessionID string, items []domain.ValuedItem) error {
	return nil
}

func (s *stubStore) ListValuations(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.ValuedItem, error) {
	return s.items[sessionID], nil
}

func (s *stubStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	return nil, nil
}

func (s *stubStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestMux(store domain.SessionStore) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewSessionHandler(store, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("GET /api/sessions/{id}/items", h.ListValuations)
	return mux
}

func TestGetSessionByID(t *testing.T) {
	store := &stubStore{
		sessions: []domain.Session{{ID: "abc", League: "Standard", ItemsPriced: 3}},
	}
	srv := httptest.NewServer(newTestMux(store))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions/abc")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var sess domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatal(err)
	}
	if sess.ID != "abc" || sess.ItemsPriced != 3 {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestMux(&stubStore{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListValuationsForSession(t *testing.T) {
	store := &stubStore{
		sessions: []domain.Session{{ID: "abc"}},
		items: map[string][]domain.ValuedItem{
			"abc": {
				{Item: domain.Item{Name: "Mageblood"}, EstimatedValue: 90000},
			},
		},
	}
	srv := httptest.NewServer(newTestMux(store))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions/abc/items")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Items []domain.ValuedItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || body.Items[0].Item.Name != "Mageblood" {
		t.Errorf("unexpected items: %+v", body.Items)
	}
}

func TestParseListOpts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/sessions?limit=1000&offset=20&since=2026-01-01T00:00:00Z", nil)
	opts := parseListOpts(req)
	if opts.Limit != 500 {
		t.Errorf("Limit = %d, want capped 500", opts.Limit)
	}
	if opts.Offset != 20 {
		t.Errorf("Offset = %d, want 20", opts.Offset)
	}
	if opts.Since == nil || opts.Since.Year() != 2026 {
		t.Errorf("Since = %v, want 2026-01-01", opts.Since)
	}
}
