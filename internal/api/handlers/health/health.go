package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"homecuistot/internal/core/queue"
	"homecuistot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Sessions  map[string]interface{} `json:"sessions,omitempty"`
}

// QueueStatusProvider 提供隊列狀態
type QueueStatusProvider interface {
	GetQueueStatus() *queue.Status
}

// StatsProvider 提供會話存儲統計
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Check 就緒檢查項目，回傳 nil 代表依賴可用
type Check func(ctx context.Context) error

// Handler 健康檢查處理器
type Handler struct {
	version  string
	queue    QueueStatusProvider
	sessions StatsProvider
	checks   map[string]Check
}

// NewHandler 創建健康檢查處理器；queue 與 sessions 可為 nil
func NewHandler(version string, q QueueStatusProvider, sessions StatsProvider, checks map[string]Check) *Handler {
	if checks == nil {
		checks = map[string]Check{}
	}
	return &Handler{
		version:  version,
		queue:    q,
		sessions: sessions,
		checks:   checks,
	}
}

// Register 註冊路由
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.sessions != nil {
		response.Sessions = h.sessions.GetStats()
	}

	common.LogDebug("health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，逐一執行依賴檢查
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		common.LogWarn("readiness check failed", zap.Any("checks", failed))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
