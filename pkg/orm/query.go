// Package orm is a thin layer over *gorm.DB adding pagination, a
// read-through cache and query timing.
package orm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// Cacher is the subset of cache.Store the query layer needs.
type Cacher interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

// Pagination describes one page of a result set.
type Pagination struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	Pages       int   `json:"pages"`
}

type Query struct {
	db *gorm.DB
}

// New starts a query on db bound to ctx.
func New(ctx context.Context, db *gorm.DB) *Query {
	return &Query{db: db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Or(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Or(query, args...)}
}

func (q *Query) Order(value string) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Get(dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.Find(dest).Error
}

// First loads the first matching row; gorm.ErrRecordNotFound when none.
func (q *Query) First(dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.First(dest).Error
}

// Cache serves dest from c when possible, otherwise loads it with First and
// adds it for ttl. The fill never overwrites, so a writer's invalidation
// that lands between the SELECT and the fill wins. Cache write failures are
// ignored.
func (q *Query) Cache(ctx context.Context, c Cacher, key string, ttl time.Duration, dest interface{}) error {
	if c != nil && c.Get(ctx, key, dest) {
		return nil
	}

	if err := q.First(dest); err != nil {
		return err
	}

	if c != nil && ttl > 0 {
		_, _ = c.Add(ctx, key, dest, ttl)
	}
	return nil
}

// Paginate fills dest with page (1-indexed) of perPage rows and returns the
// page metadata. A page past the end yields an empty dest, not an error.
func (q *Query) Paginate(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		return Pagination{}, errors.New("orm: page must be >= 1")
	}
	if perPage < 1 {
		return Pagination{}, errors.New("orm: perPage must be >= 1")
	}

	defer metrics.ObserveDBQuery("select", time.Now())

	var total int64
	if err := q.db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * perPage
	if err := q.db.Session(&gorm.Session{}).Offset(offset).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		Pages:       int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}
