package database

import (
	"fmt"

	"homecuistot/internal/infrastructure/config"
	"homecuistot/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 依設定開啟目錄資料庫連線
func Open(cfg config.CatalogConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %q", cfg.Driver)
	}

	common.LogInfo("connecting to catalog database",
		zap.String("driver", cfg.Driver),
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		common.LogError("failed to connect to catalog database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	return db, nil
}

// Close 關閉底層連線
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
