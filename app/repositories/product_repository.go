package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/orm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateBarcode  = errors.New("duplicate barcode")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db       *gorm.DB
	cache    cache.Store
	cacheTTL time.Duration
}

// NewProductRepository wires the repository to db. store may be nil; a
// zero ttl disables caching.
func NewProductRepository(db *gorm.DB, store cache.Store, ttl time.Duration) *ProductRepository {
	if store == nil {
		store = cache.Nop{}
	}
	return &ProductRepository{db: db, cache: store, cacheTTL: ttl}
}

func cacheKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// staleHold is how long a changed row's key refuses read-through fills. It
// covers readers that loaded the row before the change committed.
const staleHold = 5 * time.Second

// forget runs after a change has committed.
func (r *ProductRepository) forget(ctx context.Context, id uint) {
	_ = r.cache.Invalidate(ctx, cacheKey(id), staleHold)
}

// Create inserts p and fills in its ID.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateBarcode, p.Barcode)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// ExistsByBarcode reports whether a product already uses barcode.
func (r *ProductRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("barcode = ?", barcode).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count barcode: %w", err)
	}
	return n > 0, nil
}

// FindByID looks up a product by primary key, through the cache.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.New(ctx, r.db).Where("id = ?", id).Cache(ctx, r.cache, cacheKey(id), r.cacheTTL, &p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, nil
}

// Update writes only the columns in changes and returns the row as stored
// afterwards, so columns changed concurrently by others are kept. Only
// name, price and stock may change; barcode is never written. Callers check
// existence first: MySQL reports zero affected rows for a no-op update.
func (r *ProductRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (models.Product, error) {
	cols := make(map[string]interface{}, len(changes))
	for _, c := range []string{"name", "price", "stock"} {
		if v, ok := changes[c]; ok {
			cols[c] = v
		}
	}

	if len(cols) > 0 {
		start := time.Now()
		err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(cols).Error
		metrics.ObserveDBQuery("update", start)
		if err != nil {
			return models.Product{}, fmt.Errorf("update product %d: %w", id, err)
		}
		r.forget(ctx, id)
	}

	return r.reload(ctx, id)
}

// Delete removes the product with id.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	r.forget(ctx, id)
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Search returns products whose name or barcode contains text. LIKE
// wildcards in text are matched literally.
func (r *ProductRepository) Search(ctx context.Context, text string) ([]models.Product, error) {
	pattern := "%" + escapeLike(text) + "%"

	products := []models.Product{}
	err := orm.New(ctx, r.db).
		Where("name LIKE ? ESCAPE '!'", pattern).
		Or("barcode LIKE ? ESCAPE '!'", pattern).
		Order("id").
		Get(&products)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Paginate returns one page of products ordered by id.
func (r *ProductRepository) Paginate(ctx context.Context, page, perPage int) ([]models.Product, orm.Pagination, error) {
	products := []models.Product{}
	p, err := orm.New(ctx, r.db).Model(&models.Product{}).Order("id").Paginate(&products, page, perPage)
	if err != nil {
		return nil, orm.Pagination{}, fmt.Errorf("paginate products: %w", err)
	}
	return products, p, nil
}

// DecrementStock removes quantity units in one conditional UPDATE, so two
// concurrent callers can never both take the last unit.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) (models.Product, error) {
	start := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	metrics.ObserveDBQuery("update", start)
	if res.Error != nil {
		return models.Product{}, fmt.Errorf("decrement stock %d: %w", id, res.Error)
	}
	r.forget(ctx, id)

	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return models.Product{}, fmt.Errorf("check product %d: %w", id, err)
		}
		if n == 0 {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, ErrInsufficientStock
	}

	return r.reload(ctx, id)
}

// reload reads id from the database, bypassing the cache.
func (r *ProductRepository) reload(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.New(ctx, r.db).Where("id = ?", id).First(&p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("reload product %d: %w", id, err)
	}
	return p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// isDuplicate recognises unique violations from every supported driver.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
