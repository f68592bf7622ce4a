package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	s := NewGormStore(db)
	require.NoError(t, s.AutoMigrate())
	return s
}

func TestGormStore_SeedAndLookup(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, []Entry{
		{ID: "ing-egg", Name: "Egg"},
		{ID: "ing-olive-oil", Name: "olive  oil"},
	}))
	// 重複播種不覆蓋既有資料
	require.NoError(t, s.Seed(ctx, []Entry{{ID: "ing-egg", Name: "egg"}}))

	got, err := s.LookupByNames(ctx, []string{"EGG", "Olive Oil", "pepper"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entry{
		{ID: "ing-egg", Name: "egg"},
		{ID: "ing-olive-oil", Name: "olive oil"},
	}, got)
}

func TestGormStore_EmptyLookup(t *testing.T) {
	s := newGormStore(t)

	got, err := s.LookupByNames(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Seed(context.Background(), nil))
}

func TestGormStore_WithMatcher(t *testing.T) {
	s := newGormStore(t)
	require.NoError(t, s.Seed(context.Background(), []Entry{{ID: "ing-tomato", Name: "tomato"}}))

	res, err := NewMatcher(s).Match(context.Background(), []string{"Tomatoes", "okra"})
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ID: "ing-tomato", Name: "tomato"}}, res.Matched)
	assert.Equal(t, []string{"okra"}, res.UnrecognizedNames)
}
