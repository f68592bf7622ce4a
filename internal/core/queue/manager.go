// Package queue 以固定數量的 worker 執行回合
//
// 相同鍵的任務一定落在同一個 worker，同一對話的回合依提交順序逐一執行。
package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"homecuistot/internal/infrastructure/config"
	"homecuistot/internal/pkg/common"

	"go.uber.org/zap"
)

// Task 隊列任務
type Task func(ctx context.Context) (interface{}, error)

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// job 隊列請求
type job struct {
	ctx    context.Context
	key    string
	task   Task
	result chan Result
}

// Manager 隊列管理器
type Manager struct {
	workers   int
	maxSize   int
	shards    []chan *job
	processed int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewManager 創建新的隊列管理器並啟動工作協程
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	perShard := cfg.MaxSize / workers
	if perShard < 1 {
		perShard = 1
	}

	m := &Manager{
		workers: workers,
		maxSize: perShard * workers,
		shards:  make([]chan *job, workers),
	}
	for i := range m.shards {
		m.shards[i] = make(chan *job, perShard)
		m.wg.Add(1)
		go m.work(i)
	}

	common.LogInfo("turn queue started",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", m.maxSize),
	)
	return m
}

// Submit 將任務加入對應 key 的隊列，隊列已滿時回傳 ErrQueueFull
func (m *Manager) Submit(ctx context.Context, key string, task Task) (<-chan Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, common.ErrServiceUnavailable.Wrap(fmt.Errorf("queue manager is closed"))
	}

	j := &job{
		ctx:    ctx,
		key:    key,
		task:   task,
		result: make(chan Result, 1),
	}
	shard := m.shards[m.shardFor(key)]

	select {
	case shard <- j:
		common.LogDebug("task enqueued",
			zap.String("key", key),
			zap.Int("shard_length", len(shard)),
		)
		return j.result, nil
	default:
		common.LogWarn("queue is full",
			zap.String("key", key),
			zap.Int("max_queue_size", m.maxSize),
		)
		return nil, common.ErrQueueFull
	}
}

// Do 提交任務並等待結果
func (m *Manager) Do(ctx context.Context, key string, task Task) (interface{}, error) {
	ch, err := m.Submit(ctx, key, task)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	length := 0
	for _, shard := range m.shards {
		length += len(shard)
	}
	return &Status{
		QueueLength:    length,
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止接收任務，等待 worker 處理完佇列中的任務
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, shard := range m.shards {
		close(shard)
	}
	m.mu.Unlock()

	m.wg.Wait()
	common.LogInfo("turn queue closed",
		zap.Int64("processed", atomic.LoadInt64(&m.processed)),
	)
}

func (m *Manager) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(m.workers))
}

func (m *Manager) work(id int) {
	defer m.wg.Done()
	for j := range m.shards[id] {
		res := m.run(j)
		atomic.AddInt64(&m.processed, 1)
		j.result <- res
	}
}

// run 執行單一任務，已取消的任務不執行
func (m *Manager) run(j *job) (res Result) {
	if err := j.ctx.Err(); err != nil {
		return Result{Error: err}
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("task panicked",
				zap.String("key", j.key),
				zap.Any("panic", r),
			)
			res = Result{Error: common.ErrInternalError.Wrap(fmt.Errorf("panic: %v", r))}
		}
	}()

	v, err := j.task(j.ctx)
	return Result{Value: v, Error: err}
}
