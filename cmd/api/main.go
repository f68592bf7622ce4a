package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homecuistot/internal/api"
	"homecuistot/internal/api/handlers/health"
	"homecuistot/internal/api/middleware"
	"homecuistot/internal/core/ai"
	"homecuistot/internal/core/ai/openrouter"
	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/queue"
	"homecuistot/internal/core/reconcile"
	"homecuistot/internal/core/session"
	"homecuistot/internal/infrastructure/config"
	"homecuistot/internal/infrastructure/database"
	"homecuistot/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("starting application",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("openrouter_enabled", cfg.OpenRouter.Enabled),
		zap.String("openrouter_api_key", cfg.OpenRouter.APIKey),
	)

	checks := map[string]health.Check{}

	store, db, err := openCatalog(cfg.Catalog)
	if err != nil {
		common.LogFatal("failed to open catalog", zap.Error(err))
	}
	if db != nil {
		defer database.Close(db)
		checks["catalog"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	deps := api.Dependencies{Checks: checks}

	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := session.NewRedisStore(ctx, cfg.Session)
		cancel()
		if err != nil {
			common.LogFatal("failed to connect to session store", zap.Error(err))
		}
		defer rs.Close()
		checks["sessions"] = rs.Ping
		sessions = rs
	default:
		m := session.NewManager(cfg.Session)
		defer m.Close()
		deps.Sessions = m
		sessions = m
	}

	q := queue.NewManager(cfg.Queue)
	defer q.Close()

	deps.Engine = reconcile.NewEngine(catalog.NewMatcher(store), sessions)
	deps.Queue = q

	if cfg.OpenRouter.Enabled {
		deps.Extractor = ai.NewExtractor(openrouter.NewClient(cfg.OpenRouter))
	}
	if cfg.DedupWindow > 0 {
		deps.Dedup = middleware.NewDeduplicator(cfg.DedupWindow)
		defer deps.Dedup.Stop()
	}

	router := api.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("server exited")
}

// openCatalog 依設定建立目錄儲存；SQL 驅動另回傳連線供關閉與就緒檢查
func openCatalog(cfg config.CatalogConfig) (catalog.Store, *gorm.DB, error) {
	var seed []catalog.Entry
	if cfg.SeedFile != "" {
		entries, err := catalog.LoadYAML(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = entries
	}

	if cfg.Driver == "memory" {
		store := catalog.NewMemoryStore(seed)
		common.LogInfo("catalog loaded", zap.Int("entries", store.Len()))
		return store, nil, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	if err := store.Seed(context.Background(), seed); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	common.LogInfo("catalog seeded", zap.Int("entries", len(seed)))
	return store, db, nil
}
