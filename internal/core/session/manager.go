package session

import (
	"context"
	"sync"
	"time"

	"homecuistot/internal/infrastructure/config"
	"homecuistot/internal/pkg/common"

	"go.uber.org/zap"
)

// 編譯期介面檢查
var _ Store = (*Manager)(nil)

// Manager 記憶體快照管理器，具 TTL 與容量上限
type Manager struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu    sync.Mutex
	store map[string]snapshotEntry
	stats managerStats

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// snapshotEntry 快照條目
type snapshotEntry struct {
	snapshot    Snapshot
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// managerStats 快照統計
type managerStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建新的快照管理器並啟動清理協程
func NewManager(cfg config.SessionConfig) *Manager {
	m := &Manager{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
		store:   make(map[string]snapshotEntry),
		done:    make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("session manager initialized",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	return m
}

// Get 取得對話快照，不存在或已過期時回傳空快照
func (m *Manager) Get(ctx context.Context, conversationID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[conversationID]
	if !exists {
		m.stats.misses++
		return Empty(), nil
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, conversationID)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("session snapshot expired",
			zap.String("conversation_id", conversationID),
		)
		return Empty(), nil
	}

	entry.lastAccess = now
	entry.accessCount++
	m.store[conversationID] = entry
	m.stats.hits++

	return entry.snapshot.Clone(), nil
}

// Set 整份取代對話快照
func (m *Manager) Set(ctx context.Context, conversationID string, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[conversationID]; !exists && len(m.store) >= m.maxSize {
		evicted := m.cleanup()
		if len(m.store) >= m.maxSize {
			m.evictLRU()
			evicted++
		}
		common.LogDebug("session manager made room",
			zap.Int("evicted", evicted),
		)
	}

	now := m.now()
	m.store[conversationID] = snapshotEntry{
		snapshot:   snapshot.Clone(),
		expiresAt:  now.Add(m.ttl),
		createdAt:  now,
		lastAccess: now,
	}

	return nil
}

// Delete 移除對話快照
func (m *Manager) Delete(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, conversationID)
	return nil
}

// startCleanup 週期性清理過期快照，直到 Close
func (m *Manager) startCleanup(interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期快照，呼叫端需持有鎖
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("cleaned up expired session snapshots",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰最少使用的快照，呼叫端需持有鎖
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("session snapshot evicted (LRU)",
			zap.String("conversation_id", oldestKey),
		)
	}
}

// GetStats 獲取統計信息
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 停止清理協程並清空快照
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()

		m.mu.Lock()
		defer m.mu.Unlock()
		m.store = make(map[string]snapshotEntry)
		common.LogInfo("session manager closed",
			zap.Int64("hits", m.stats.hits),
			zap.Int64("misses", m.stats.misses),
			zap.Int64("evictions", m.stats.evictions),
		)
	})
	return nil
}
