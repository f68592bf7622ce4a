package api

import (
	"time"

	"homecuistot/internal/api/handlers/conversation"
	"homecuistot/internal/api/handlers/health"
	"homecuistot/internal/api/middleware"
	"homecuistot/internal/core/queue"
	"homecuistot/internal/core/reconcile"
	"homecuistot/internal/infrastructure/config"
	"homecuistot/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Engine    *reconcile.Engine
	Queue     *queue.Manager
	Extractor conversation.Extractor // nil 代表未啟用
	Sessions  health.StatsProvider   // 可為 nil
	Checks    map[string]health.Check
	Dedup     *middleware.Deduplicator // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	health.NewHandler(cfg.App.Version, deps.Queue, deps.Sessions, deps.Checks).Register(router)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if deps.Dedup != nil {
		v1.Use(deps.Dedup.Handler())
	}

	conversation.NewHandler(deps.Engine, deps.Queue, deps.Extractor, cfg.App.Debug).Register(v1)

	common.LogInfo("router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("dedup", deps.Dedup != nil),
		zap.Bool("extractor", deps.Extractor != nil),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
