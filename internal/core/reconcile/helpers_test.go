package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/session"
)

var testCatalog = []catalog.Entry{
	{ID: "cat-bacon", Name: "bacon"},
	{ID: "cat-berry", Name: "berry"},
	{ID: "cat-butter", Name: "butter"},
	{ID: "cat-egg", Name: "egg"},
	{ID: "cat-garlic", Name: "garlic"},
	{ID: "cat-hummus", Name: "hummus"},
	{ID: "cat-onion", Name: "onion"},
	{ID: "cat-pasta", Name: "pasta"},
	{ID: "cat-salt", Name: "salt"},
	{ID: "cat-tomato", Name: "tomato"},
}

// countingStore 記錄查詢次數的目錄
type countingStore struct {
	inner *catalog.MemoryStore
	err   error

	mu    sync.Mutex
	calls [][]string
}

func newCountingStore() *countingStore {
	return &countingStore{inner: catalog.NewMemoryStore(testCatalog)}
}

func (s *countingStore) LookupByNames(ctx context.Context, names []string) ([]catalog.Entry, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{}, names...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.LookupByNames(ctx, names)
}

func (s *countingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var errCatalogDown = errors.New("connection refused")

// seqIDs returns a deterministic id generator: id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestProcessor() (*Processor, *countingStore) {
	store := newCountingStore()
	return NewProcessor(catalog.NewMatcher(store), WithIDGenerator(seqIDs())), store
}

func boolp(b bool) *bool { return &b }

func strp(s string) *string { return &s }

func levelp(q session.QuantityLevel) *session.QuantityLevel { return &q }

func item(catalogID, name string, q session.QuantityLevel, staple bool) session.InventoryItem {
	return session.InventoryItem{
		ID:        "inv-" + name,
		CatalogID: catalogID,
		Name:      name,
		Quantity:  q,
		IsStaple:  staple,
	}
}

func carbonara() session.Recipe {
	return session.Recipe{
		ID:          "rec-carbonara",
		Title:       "Carbonara",
		Description: "Roman pasta",
		Ingredients: []session.Ingredient{
			{Name: "pasta", CatalogID: "cat-pasta", IsRequired: true},
			{Name: "bacon", CatalogID: "cat-bacon", IsRequired: true},
			{Name: "egg", CatalogID: "stale-egg-id", IsRequired: true},
		},
	}
}

// memorySessions 測試用的簡單快照儲存
type memorySessions struct {
	mu      sync.Mutex
	snaps   map[string]session.Snapshot
	getErr  error
	setErr  error
	setCall int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{snaps: make(map[string]session.Snapshot)}
}

func (m *memorySessions) Get(_ context.Context, id string) (session.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return session.Snapshot{}, m.getErr
	}
	snap, ok := m.snaps[id]
	if !ok {
		return session.Empty(), nil
	}
	return snap.Clone(), nil
}

func (m *memorySessions) Set(_ context.Context, id string, snap session.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.snaps[id] = snap.Clone()
	return nil
}
