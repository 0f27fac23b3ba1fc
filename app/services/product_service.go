package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/orm"
)

const (
	MaxBarcodeLen  = 12
	MaxNameLen     = 100
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Client-facing messages.
const (
	MsgMissingFields  = "Missing required fields"
	MsgMissingQuery   = "Missing query parameter"
	MsgNotFound       = "Resource not found"
	MsgDuplicate      = "Product with this barcode already exists"
	MsgNotEnoughStock = "Not enough stock"
	MsgBadQuantity    = "Quantity must be at least 1"
)

// ProductStore is the persistence the service needs; *repositories.ProductRepository
// satisfies it.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	FindByID(ctx context.Context, id uint) (models.Product, error)
	Update(ctx context.Context, id uint, changes map[string]interface{}) (models.Product, error)
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, text string) ([]models.Product, error)
	Paginate(ctx context.Context, page, perPage int) ([]models.Product, orm.Pagination, error)
	DecrementStock(ctx context.Context, id uint, quantity int) (models.Product, error)
}

// CreateProduct is the input of Create. Stock defaults to zero.
type CreateProduct struct {
	Barcode string
	Name    string
	Price   float64
	Stock   int
}

// UpdateProduct carries only the fields to change; nil keeps the stored value.
type UpdateProduct struct {
	Name  *string
	Price *float64
	Stock *int
}

// ProductPage is one page of the product list.
type ProductPage struct {
	Products    []models.Product `json:"products"`
	Total       int64            `json:"total"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
}

type ProductService struct {
	repo ProductStore
}

func NewProductService(repo ProductStore) *ProductService {
	return &ProductService{repo: repo}
}

// Create validates in and persists a new product.
func (s *ProductService) Create(ctx context.Context, in CreateProduct) (models.Product, error) {
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Name = strings.TrimSpace(in.Name)

	if in.Barcode == "" || in.Name == "" {
		return models.Product{}, apperr.MissingField(MsgMissingFields)
	}

	fields := map[string]string{}
	if utf8.RuneCountInString(in.Barcode) > MaxBarcodeLen {
		fields["barcode"] = fmt.Sprintf("The barcode must not exceed %d characters.", MaxBarcodeLen)
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLen {
		fields["name"] = fmt.Sprintf("The name must not exceed %d characters.", MaxNameLen)
	}
	if in.Price < 0 {
		fields["price"] = "The price must be greater than or equal to 0."
	}
	if in.Stock < 0 {
		fields["stock"] = "The stock must be greater than or equal to 0."
	}
	if len(fields) > 0 {
		return models.Product{}, apperr.Validation("Invalid product", fields)
	}

	exists, err := s.repo.ExistsByBarcode(ctx, in.Barcode)
	if err != nil {
		return models.Product{}, err
	}
	if exists {
		return models.Product{}, apperr.Conflict(MsgDuplicate)
	}

	p := models.Product{Barcode: in.Barcode, Name: in.Name, Price: in.Price, Stock: in.Stock}
	if err := s.repo.Create(ctx, &p); err != nil {
		return models.Product{}, mapStoreError(err)
	}

	logger.WithCtx(ctx).Info("product created", "product_id", p.ID, "barcode", p.Barcode)
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, mapStoreError(err)
	}
	return p, nil
}

// Update applies the non-nil fields of in to product id. Only those
// columns are written, so a sale committed meanwhile is not undone.
func (s *ProductService) Update(ctx context.Context, id uint, in UpdateProduct) (models.Product, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return models.Product{}, mapStoreError(err)
	}

	changes := map[string]interface{}{}
	fields := map[string]string{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			fields["name"] = "The name field is required."
		case utf8.RuneCountInString(name) > MaxNameLen:
			fields["name"] = fmt.Sprintf("The name must not exceed %d characters.", MaxNameLen)
		default:
			changes["name"] = name
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			fields["price"] = "The price must be greater than or equal to 0."
		}
		changes["price"] = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			fields["stock"] = "The stock must be greater than or equal to 0."
		}
		changes["stock"] = *in.Stock
	}
	if len(fields) > 0 {
		return models.Product{}, apperr.Validation("Invalid product", fields)
	}

	p, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return models.Product{}, mapStoreError(err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	return nil
}

// Search finds products whose name or barcode contains text. A blank text
// is refused rather than matching everything.
func (s *ProductService) Search(ctx context.Context, text string) ([]models.Product, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.MissingField(MsgMissingQuery)
	}
	products, err := s.repo.Search(ctx, text)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return products, nil
}

// List returns page (1-indexed) of perPage products. Values below 1 fall
// back to the defaults and perPage is capped at MaxPerPage.
func (s *ProductService) List(ctx context.Context, page, perPage int) (ProductPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	products, p, err := s.repo.Paginate(ctx, page, perPage)
	if err != nil {
		return ProductPage{}, mapStoreError(err)
	}
	return ProductPage{
		Products:    products,
		Total:       p.Total,
		Pages:       p.Pages,
		CurrentPage: p.CurrentPage,
	}, nil
}

// Sell removes quantity units from product id. It fails without side
// effects when fewer than quantity units are in stock.
func (s *ProductService) Sell(ctx context.Context, id uint, quantity int) (models.Product, error) {
	if quantity < 1 {
		return models.Product{}, apperr.Validation(MsgBadQuantity, map[string]string{"quantity": MsgBadQuantity})
	}

	p, err := s.repo.DecrementStock(ctx, id, quantity)
	switch {
	case errors.Is(err, repositories.ErrInsufficientStock):
		metrics.SellRejected.WithLabelValues("insufficient_stock").Inc()
	case errors.Is(err, repositories.ErrProductNotFound):
		metrics.SellRejected.WithLabelValues("not_found").Inc()
	case err == nil:
		metrics.UnitsSold.Add(float64(quantity))
		logger.WithCtx(ctx).Info("product sold", "product_id", id, "quantity", quantity, "stock", p.Stock)
		return p, nil
	}
	return models.Product{}, mapStoreError(err)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return apperr.Wrap(apperr.KindNotFound, MsgNotFound, err)
	case errors.Is(err, repositories.ErrDuplicateBarcode):
		return apperr.Wrap(apperr.KindConflict, MsgDuplicate, err)
	case errors.Is(err, repositories.ErrInsufficientStock):
		return apperr.Wrap(apperr.KindInsufficientStock, MsgNotEnoughStock, err)
	default:
		return err
	}
}
