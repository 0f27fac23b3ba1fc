package services_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/app/services"
	_ "github.com/shashiranjanraj/inventory/database/migrations"
	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/migration"
)

func newRepository(t *testing.T) *repositories.ProductRepository {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, migration.New(db, nil).Run())
	return repositories.NewProductRepository(db, cache.NewMemory(), time.Minute)
}

func newProductService(t *testing.T) *services.ProductService {
	t.Helper()
	return services.NewProductService(newRepository(t))
}

func ptr[T any](v T) *T { return &v }

func TestCreate(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.CreateProduct{Barcode: " 111 ", Name: "Pen", Price: 0})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "111", p.Barcode)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Stock)

	_, err = svc.Create(ctx, services.CreateProduct{Barcode: "111", Name: "Other", Price: 1})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	cases := map[string]struct {
		in   services.CreateProduct
		kind apperr.Kind
	}{
		"blank barcode":  {services.CreateProduct{Name: "Pen"}, apperr.KindMissingField},
		"blank name":     {services.CreateProduct{Barcode: "1"}, apperr.KindMissingField},
		"long barcode":   {services.CreateProduct{Barcode: "1234567890123", Name: "Pen"}, apperr.KindValidation},
		"long name":      {services.CreateProduct{Barcode: "1", Name: strings.Repeat("n", 101)}, apperr.KindValidation},
		"negative price": {services.CreateProduct{Barcode: "1", Name: "Pen", Price: -1}, apperr.KindValidation},
		"negative stock": {services.CreateProduct{Barcode: "1", Name: "Pen", Stock: -1}, apperr.KindValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	page, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.CreateProduct{Barcode: "111", Name: "Pen", Price: 1, Stock: 4})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, services.UpdateProduct{Price: ptr(2.5)})
	require.NoError(t, err)
	assert.Equal(t, "Pen", updated.Name)
	assert.Equal(t, 2.5, updated.Price)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, "111", updated.Barcode)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = svc.Update(ctx, p.ID, services.UpdateProduct{Name: ptr("  ")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Update(ctx, p.ID+100, services.UpdateProduct{Price: ptr(1.0)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteThenGet(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.CreateProduct{Barcode: "111", Name: "Pen", Price: 1})
	require.NoError(t, err)
	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, p.ID)))
}

func TestSearch(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	for _, in := range []services.CreateProduct{
		{Barcode: "ab1", Name: "x", Price: 1},
		{Barcode: "2", Name: "cab", Price: 1},
		{Barcode: "3", Name: "zzz", Price: 1},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, "ab")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "ab1", found[0].Barcode)
	assert.Equal(t, "cab", found[1].Name)

	none, err := svc.Search(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.Search(ctx, "  ")
	assert.Equal(t, apperr.KindMissingField, apperr.KindOf(err))
}

func TestList(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	for _, bc := range []string{"1", "2", "3"} {
		_, err := svc.Create(ctx, services.CreateProduct{Barcode: bc, Name: "p" + bc, Price: 1})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "2", page.Products[0].Barcode)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.CurrentPage)

	page, err = svc.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, page.Products, 3)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.Pages)

	page, err = svc.List(ctx, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.EqualValues(t, 3, page.Total)
}

func TestSell(t *testing.T) {
	svc := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.CreateProduct{Barcode: "111", Name: "Pen", Price: 1, Stock: 3})
	require.NoError(t, err)

	_, err = svc.Sell(ctx, p.ID, 5)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	sold, err := svc.Sell(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, sold.Stock)

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	_, err = svc.Sell(ctx, p.ID, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Sell(ctx, p.ID+100, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// sellAfterRead sells units right after the service has looked the product
// up, before its write.
type sellAfterRead struct {
	*repositories.ProductRepository
	sold bool
}

func (s *sellAfterRead) FindByID(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.ProductRepository.FindByID(ctx, id)
	if err == nil && !s.sold {
		s.sold = true
		if _, err := s.DecrementStock(ctx, id, 2); err != nil {
			return models.Product{}, err
		}
	}
	return p, err
}

func TestUpdateKeepsConcurrentSale(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	p := models.Product{Barcode: "111", Name: "Pen", Price: 1, Stock: 3}
	require.NoError(t, repo.Create(ctx, &p))

	svc := services.NewProductService(&sellAfterRead{ProductRepository: repo})
	updated, err := svc.Update(ctx, p.ID, services.UpdateProduct{Price: ptr(9.5)})
	require.NoError(t, err)
	assert.Equal(t, 9.5, updated.Price)
	assert.Equal(t, 1, updated.Stock)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
}
