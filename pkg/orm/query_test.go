package orm_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/orm"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setup(t *testing.T, n int) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "orm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.AutoMigrate(&widget{}))
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&widget{Name: "w"}).Error)
	}
	return db
}

func TestPaginate(t *testing.T) {
	db := setup(t, 3)
	ctx := context.Background()

	var page []widget
	p, err := orm.New(ctx, db).Model(&widget{}).Order("id").Paginate(&page, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, orm.Pagination{Total: 3, PerPage: 1, CurrentPage: 2, Pages: 3}, p)
	require.Len(t, page, 1)
	assert.Equal(t, uint(2), page[0].ID)

	var beyond []widget
	p, err = orm.New(ctx, db).Model(&widget{}).Paginate(&beyond, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, 9, p.CurrentPage)
}

func TestPaginateEmptyTable(t *testing.T) {
	db := setup(t, 0)

	var rows []widget
	p, err := orm.New(context.Background(), db).Model(&widget{}).Paginate(&rows, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Pages)
	assert.Zero(t, p.Total)
}

func TestCacheReadsThrough(t *testing.T) {
	db := setup(t, 1)
	ctx := context.Background()
	store := cache.NewMemory()

	var first widget
	require.NoError(t, orm.New(ctx, db).Where("id = ?", 1).Cache(ctx, store, "widget:1", time.Minute, &first))

	require.NoError(t, db.Model(&widget{}).Where("id = ?", 1).Update("name", "changed").Error)

	var second widget
	require.NoError(t, orm.New(ctx, db).Where("id = ?", 1).Cache(ctx, store, "widget:1", time.Minute, &second))
	assert.Equal(t, "w", second.Name, "served from cache")
}

func TestFirstNotFound(t *testing.T) {
	db := setup(t, 0)
	var w widget
	err := orm.New(context.Background(), db).Where("id = ?", 5).First(&w)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCacheFillLosesToInvalidation(t *testing.T) {
	db := setup(t, 1)
	ctx := context.Background()
	store := cache.NewMemory()

	var loaded widget
	require.NoError(t, orm.New(ctx, db).Where("id = ?", 1).First(&loaded))

	require.NoError(t, db.Model(&widget{}).Where("id = ?", 1).Update("name", "changed").Error)
	require.NoError(t, store.Invalidate(ctx, "widget:1", time.Minute))

	added, err := store.Add(ctx, "widget:1", loaded, time.Minute)
	require.NoError(t, err)
	assert.False(t, added)

	var fresh widget
	require.NoError(t, orm.New(ctx, db).Where("id = ?", 1).Cache(ctx, store, "widget:1", time.Minute, &fresh))
	assert.Equal(t, "changed", fresh.Name)
}
