package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homecuistot/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// 編譯期介面檢查
var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "session:"

// RedisStore Redis 快照儲存
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 快照儲存並測試連接
func NewRedisStore(ctx context.Context, cfg config.SessionConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.TTL), nil
}

// NewRedisStoreWithClient 以既有 client 建立儲存
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 獲取快照
func (s *RedisStore) Get(ctx context.Context, conversationID string) (Snapshot, error) {
	data, err := s.client.Get(ctx, redisKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Empty(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to get session snapshot: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Set 設置快照
func (s *RedisStore) Set(ctx context.Context, conversationID string, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session snapshot: %w", err)
	}
	return nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisKey 生成快照鍵
func redisKey(conversationID string) string {
	return redisKeyPrefix + conversationID
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	if snap.Inventory == nil {
		snap.Inventory = []InventoryItem{}
	}
	if snap.Recipes == nil {
		snap.Recipes = []Recipe{}
	}
	return snap, nil
}
