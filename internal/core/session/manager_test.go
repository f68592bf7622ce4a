package session

import (
	"context"
	"testing"
	"time"

	"homecuistot/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestManager(t *testing.T, maxSize int) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(config.SessionConfig{TTL: time.Hour, MaxSize: maxSize})
	t.Cleanup(func() { _ = m.Close() })

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func pantry(names ...string) Snapshot {
	s := Empty()
	for _, n := range names {
		s.Inventory = append(s.Inventory, InventoryItem{ID: "inv-" + n, CatalogID: "cat-" + n, Name: n, Quantity: QuantitySome})
	}
	return s
}

func TestManager_GetSet(t *testing.T) {
	m, _ := newTestManager(t, 10)
	ctx := context.Background()

	got, err := m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, Empty(), got)

	require.NoError(t, m.Set(ctx, "c1", pantry("egg")))
	got, err = m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, pantry("egg"), got)

	// 回傳的是副本
	got.Inventory[0].Quantity = QuantityOut
	again, err := m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, QuantitySome, again.Inventory[0].Quantity)

	stats := m.GetStats()
	assert.Equal(t, 1, stats["size"])
	assert.EqualValues(t, 2, stats["hits"])
	assert.EqualValues(t, 1, stats["misses"])
}

func TestManager_TTL(t *testing.T) {
	m, now := newTestManager(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "c1", pantry("egg")))
	*now = now.Add(59 * time.Minute)
	got, err := m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got.Inventory, 1)

	*now = now.Add(2 * time.Minute)
	got, err = m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
	assert.EqualValues(t, 1, m.GetStats()["evictions"])
}

func TestManager_EvictsLeastUsed(t *testing.T) {
	m, now := newTestManager(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "busy", pantry("egg")))
	require.NoError(t, m.Set(ctx, "idle", pantry("salt")))
	_, err := m.Get(ctx, "busy")
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	require.NoError(t, m.Set(ctx, "new", pantry("pasta")))

	assert.Equal(t, 2, m.GetStats()["size"])
	got, err := m.Get(ctx, "idle")
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
	got, err = m.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Len(t, got.Inventory, 1)
}

func TestManager_ExpiredMakeRoomFirst(t *testing.T) {
	m, now := newTestManager(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "old", pantry("egg")))
	*now = now.Add(2 * time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", pantry("salt")))
	require.NoError(t, m.Set(ctx, "newer", pantry("pasta")))

	got, err := m.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, got.Inventory, 1)
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "c1", pantry("egg")))
	require.NoError(t, m.Delete(ctx, "c1"))
	got, err := m.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
}

func TestManager_CanceledContext(t *testing.T) {
	m, _ := newTestManager(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, "c1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Set(ctx, "c1", Empty()), context.Canceled)
}

func TestManager_CloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := NewManager(config.SessionConfig{TTL: time.Millisecond, MaxSize: 10, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Set(context.Background(), "c1", pantry("egg")))

	assert.Eventually(t, func() bool {
		return m.GetStats()["size"] == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}
