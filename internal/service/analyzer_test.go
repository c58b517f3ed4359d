package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/wraeclast/stashpricer/internal/domain"
)

type fakeProvider struct {
	snap  *domain.MarketSnapshot
	calls int
}

func (p *fakeProvider) FetchSnapshot(ctx context.Context, league string) (*domain.MarketSnapshot, error) {
	p.calls++
	return p.snap, nil
}

type fakeCache struct {
	snaps map[string]domain.MarketSnapshot
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{snaps: make(map[string]domain.MarketSnapshot)}
}

func (c *fakeCache) Set(ctx context.Context, snap domain.MarketSnapshot) error {
	c.snaps[snap.League] = snap
	c.sets++
	return nil
}

func (c *fakeCache) Get(ctx context.Context, league string) (domain.MarketSnapshot, error) {
	snap, ok := c.snaps[league]
	if !ok {
		return domain.MarketSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, league string) error {
	delete(c.snaps, league)
	return nil
}

type fakeStash struct {
	items []domain.Item
}

func (s *fakeStash) FetchItems(ctx context.Context) ([]domain.Item, error) {
	return s.items, nil
}

type fakeStore struct {
	created    []domain.Session
	finished   []domain.Session
	valuations map[string][]domain.ValuedItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{valuations: make(map[string][]domain.ValuedItem)}
}

func (s *fakeStore) CreateSession(ctx context.Context, sess domain.Session) error {
	s.created = append(s.created, sess)
	return nil
}

func (s *fakeStore) FinishSession(ctx context.Context, sess domain.Session) error {
	s.finished = append(s.finished, sess)
	return nil
}

func (s *fakeStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	for _, sess := range s.finished {
		if sess.ID == id {
			return sess, nil
		}
	}
	return domain.Session{}, domain.ErrNotFound
}

func (s *fakeStore) ListSessions(ctx context.Context, opts domain.ListOpts) ([]domain.Session, error) {
	return s.finished, nil
}

func (s *fakeStore) InsertValuations(ctx context.Context, sessionID string, items []domain.ValuedItem) error {
	s.valuations[sessionID] = append(s.valuations[sessionID], items...)
	return nil
}

func (s *fakeStore) ListValuations(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.ValuedItem, error) {
	return s.valuations[sessionID], nil
}

func (s *fakeStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	return nil, nil
}

func (s *fakeStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func marketFixture(league string) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		League:     league,
		FetchedAt:  time.Now().UTC(),
		Uniques:    []domain.ItemLine{{Name: "Headhunter", BaseType: "Leather Belt", ChaosValue: 12000}},
		Gems:       []domain.ItemLine{},
		Divination: []domain.ItemLine{},
		Currency:   []domain.CurrencyLine{{Name: "Divine Orb", ChaosEquivalent: 200}},
		Fragments:  []domain.CurrencyLine{},
		Scarabs:    []domain.CurrencyLine{},
		Oils:       []domain.CurrencyLine{},
		Essences:   []domain.CurrencyLine{},
		DivineRate: 200,
	}
}

func stashFixture() []domain.Item {
	return []domain.Item{
		{
			ID:        "hh",
			Name:      "Headhunter",
			TypeLine:  "Leather Belt",
			BaseType:  "Leather Belt",
			FrameType: domain.FrameUnique,
			ItemLevel: 84,
		},
		{
			ID:        "div",
			TypeLine:  "Divine Orb",
			FrameType: domain.FrameCurrency,
			Properties: []domain.Property{
				{Name: "Stack Size", Values: [][2]any{{"3/10", float64(0)}}},
			},
		},
		{
			// Low-level identified rare, never priced.
			ID:         "junk",
			Name:       "Doom Knuckle",
			TypeLine:   "Iron Ring",
			FrameType:  domain.FrameRare,
			Identified: true,
			ItemLevel:  60,
		},
	}
}

func newTestAnalyzer(opts Options) *Analyzer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAnalyzer(opts, logger)
}

func TestAnalyzePersistsSessionAndValuations(t *testing.T) {
	provider := &fakeProvider{snap: marketFixture("Standard")}
	store := newFakeStore()

	a := newTestAnalyzer(Options{
		Provider:      provider,
		Stash:         &fakeStash{items: stashFixture()},
		Store:         store,
		League:        "Standard",
		Account:       "exile",
		MinValueChaos: 5,
		TopN:          10,
		Workers:       1,
	})

	res, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Session.ItemsSeen != 3 {
		t.Errorf("ItemsSeen = %d, want 3", res.Session.ItemsSeen)
	}
	if res.Session.ItemsPriced != 2 {
		t.Errorf("ItemsPriced = %d, want 2", res.Session.ItemsPriced)
	}
	if res.Session.DivineRate != 200 {
		t.Errorf("DivineRate = %v, want 200", res.Session.DivineRate)
	}
	if res.Session.FinishedAt.Before(res.Session.StartedAt) {
		t.Error("FinishedAt is before StartedAt")
	}

	if len(res.Items) != 2 {
		t.Fatalf("got %d ranked items, want 2", len(res.Items))
	}
	if res.Items[0].Item.Name != "Headhunter" {
		t.Errorf("top item = %q, want Headhunter", res.Items[0].Item.Name)
	}

	if len(store.created) != 1 || len(store.finished) != 1 {
		t.Fatalf("store got %d created, %d finished sessions", len(store.created), len(store.finished))
	}
	if store.created[0].ID == "" {
		t.Error("session created without an ID")
	}
	if got := store.valuations[store.created[0].ID]; len(got) != 2 {
		t.Errorf("store got %d valuations, want 2", len(got))
	}
}

func TestAnalyzeUsesCachedSnapshot(t *testing.T) {
	provider := &fakeProvider{snap: marketFixture("Standard")}
	cache := newFakeCache()
	cache.Set(context.Background(), *marketFixture("Standard"))

	a := newTestAnalyzer(Options{
		Provider: provider,
		Cache:    cache,
		Stash:    &fakeStash{items: stashFixture()},
		League:   "Standard",
		Workers:  1,
	})

	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times with a warm cache, want 0", provider.calls)
	}
}

func TestAnalyzeCachesProviderSnapshot(t *testing.T) {
	provider := &fakeProvider{snap: marketFixture("Standard")}
	cache := newFakeCache()

	a := newTestAnalyzer(Options{
		Provider: provider,
		Cache:    cache,
		Stash:    &fakeStash{items: stashFixture()},
		League:   "Standard",
		Workers:  1,
	})

	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times on a cold cache, want 1", provider.calls)
	}
	if _, err := cache.Get(context.Background(), "Standard"); err != nil {
		t.Errorf("snapshot not cached after fetch: %v", err)
	}

	// Second run hits the cache.
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times total, want 1", provider.calls)
	}
}

func TestAnalyzeWithoutStoreStillReturnsResults(t *testing.T) {
	a := newTestAnalyzer(Options{
		Provider:      &fakeProvider{snap: marketFixture("Standard")},
		Stash:         &fakeStash{items: stashFixture()},
		League:        "Standard",
		MinValueChaos: 5,
		Workers:       1,
	})

	res, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Items) == 0 {
		t.Error("expected ranked items without a store configured")
	}
}

func TestAnalyzeTopNTruncates(t *testing.T) {
	a := newTestAnalyzer(Options{
		Provider: &fakeProvider{snap: marketFixture("Standard")},
		Stash:    &fakeStash{items: stashFixture()},
		League:   "Standard",
		TopN:     1,
		Workers:  1,
	})

	res, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("got %d items with top_n=1, want 1", len(res.Items))
	}
	if res.Items[0].Item.Name != "Headhunter" {
		t.Errorf("top item = %q, want Headhunter", res.Items[0].Item.Name)
	}
}
