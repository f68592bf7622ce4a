package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"homecuistot/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore 記錄每次查詢的名稱
type recordingStore struct {
	Store
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *recordingStore) LookupByNames(ctx context.Context, names []string) ([]Entry, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), names...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.Store.LookupByNames(ctx, names)
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: NewMemoryStore([]Entry{
		{ID: "cat-berry", Name: "berry"},
		{ID: "cat-egg", Name: "Egg"},
		{ID: "cat-hummus", Name: "hummus"},
		{ID: "cat-tomato", Name: "tomato"},
	})}
}

func TestMatcher_Match(t *testing.T) {
	store := newRecordingStore()
	m := NewMatcher(store)

	res, err := m.Match(context.Background(), []string{"Eggs", "hummus", "tomatoes", "egg", "dragon fruit", "  ", "Berries"})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)

	assert.Equal(t, []Entry{
		{ID: "cat-berry", Name: "berry"},
		{ID: "cat-egg", Name: "egg"},
		{ID: "cat-hummus", Name: "hummus"},
		{ID: "cat-tomato", Name: "tomato"},
	}, res.Matched)
	assert.Equal(t, []string{"dragon fruit"}, res.UnrecognizedNames)

	e, ok := res.Resolve("EGGS")
	assert.True(t, ok)
	assert.Equal(t, "cat-egg", e.ID)

	e, ok = res.Resolve("Hummus")
	assert.True(t, ok)
	assert.Equal(t, "cat-hummus", e.ID)

	_, ok = res.Resolve("dragon fruit")
	assert.False(t, ok)
}

func TestMatcher_OrderIndependent(t *testing.T) {
	m := NewMatcher(newRecordingStore())

	a, err := m.Match(context.Background(), []string{"tomatoes", "kiwi", "egg", "Kiwi"})
	require.NoError(t, err)
	b, err := m.Match(context.Background(), []string{"Kiwi", "egg", "kiwi", "tomatoes"})
	require.NoError(t, err)

	assert.Equal(t, a.Matched, b.Matched)
	assert.Equal(t, a.UnrecognizedNames, b.UnrecognizedNames)
	assert.Equal(t, []string{"Kiwi"}, a.UnrecognizedNames)
}

func TestMatcher_Empty(t *testing.T) {
	store := newRecordingStore()
	res, err := NewMatcher(store).Match(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	assert.Empty(t, store.calls)
	assert.NotNil(t, res.Matched)
	assert.NotNil(t, res.UnrecognizedNames)
}

func TestMatcher_StoreError(t *testing.T) {
	store := newRecordingStore()
	store.err = errors.New("connection reset")

	_, err := NewMatcher(store).Match(context.Background(), []string{"egg"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMatchResult_NilResolve(t *testing.T) {
	var r *MatchResult
	_, ok := r.Resolve("egg")
	assert.False(t, ok)
}

func TestMatcher_PluralForms(t *testing.T) {
	store := &recordingStore{Store: NewMemoryStore([]Entry{
		{ID: "cat-cookie", Name: "cookie"},
		{ID: "cat-pie", Name: "pie"},
		{ID: "cat-quiche", Name: "quiche"},
		{ID: "cat-tomato", Name: "tomato"},
		{ID: "cat-berry", Name: "berry"},
	})}

	res, err := NewMatcher(store).Match(context.Background(), []string{"cookies", "pies", "quiches", "tomatoes", "berries", "berry"})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)

	assert.Empty(t, res.UnrecognizedNames)
	assert.Equal(t, []Entry{
		{ID: "cat-berry", Name: "berry"},
		{ID: "cat-cookie", Name: "cookie"},
		{ID: "cat-pie", Name: "pie"},
		{ID: "cat-quiche", Name: "quiche"},
		{ID: "cat-tomato", Name: "tomato"},
	}, res.Matched)

	for raw, id := range map[string]string{"Pies": "cat-pie", "tomatoes": "cat-tomato", "berries": "cat-berry"} {
		e, ok := res.Resolve(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, id, e.ID, raw)
	}
}
