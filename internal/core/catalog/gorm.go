package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 編譯期介面檢查
var _ Store = (*GormStore)(nil)

// Item catalog_items 資料列
type Item struct {
	ID   string `gorm:"primaryKey;type:varchar(64)"`
	Name string `gorm:"uniqueIndex;type:varchar(255);not null"`
}

// TableName 固定資料表名稱
func (Item) TableName() string {
	return "catalog_items"
}

// GormStore 以 SQL 資料庫為後端的目錄
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 包裝已開啟的資料庫連線
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate 在需要時建立 catalog_items 資料表
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Item{})
}

// LookupByNames 以單次不分大小寫的 IN 查詢取回所有名稱
func (s *GormStore) LookupByNames(ctx context.Context, names []string) ([]Entry, error) {
	if len(names) == 0 {
		return []Entry{}, nil
	}

	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, strings.ToLower(n))
	}

	var rows []Item
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) IN ?", keys).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{ID: r.ID, Name: strings.ToLower(r.Name)})
	}
	return out, nil
}

// Seed 寫入項目，已存在的資料列保持不變
func (s *GormStore) Seed(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]Item, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Item{ID: e.ID, Name: Fold(e.Name)})
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
