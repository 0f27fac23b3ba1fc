package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/bind"
	"github.com/shashiranjanraj/inventory/pkg/response"
)

type createProductRequest struct {
	Barcode *string  `json:"barcode" validate:"required,max=12"`
	Name    *string  `json:"name"    validate:"required,max=100"`
	Price   *float64 `json:"price"   validate:"required,gte=0"`
	Stock   *int     `json:"stock"   validate:"nullable,gte=0"`
}

type updateProductRequest struct {
	Name  *string  `json:"name"  validate:"nullable,max=100"`
	Price *float64 `json:"price" validate:"nullable,gte=0"`
	Stock *int     `json:"stock" validate:"nullable,gte=0"`
}

type sellRequest struct {
	Quantity *int `json:"quantity"`
}

// URLResolver builds paths from route names; *router.Router satisfies it.
type URLResolver interface {
	URL(name string, params map[string]string) (string, error)
}

type ProductController struct {
	service *services.ProductService
	urls    URLResolver
}

func NewProductController(service *services.ProductService, urls URLResolver) *ProductController {
	return &ProductController{service: service, urls: urls}
}

// Store handles POST /api/products and its protected twin.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	in := services.CreateProduct{Barcode: *req.Barcode, Name: *req.Name, Price: *req.Price}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}

	p, err := c.service.Create(r.Context(), in)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	if c.urls != nil {
		if loc, err := c.urls.URL("products.show", map[string]string{"id": strconv.FormatUint(uint64(p.ID), 10)}); err == nil {
			w.Header().Set("Location", loc)
		}
	}
	response.Created(w, p)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := c.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	p, err := c.service.Update(r.Context(), id, services.UpdateProduct{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Message(w, "Product deleted")
}

// Search handles GET /api/products/search?query=.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, products)
}

// Index handles GET /api/products?page=&per_page=. Unparseable values fall
// back to the defaults.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), services.DefaultPage)
	perPage := intParam(q.Get("per_page"), services.DefaultPerPage)

	result, err := c.service.List(r.Context(), page, perPage)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, result)
}

// Sell handles POST /api/products/sell/{id}. Quantity defaults to 1.
func (c *ProductController) Sell(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req sellRequest
	if err := bind.OptionalJSON(r, &req); err != nil {
		response.Fail(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := c.service.Sell(r.Context(), id, quantity)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.Success(w, p)
}

// productID parses the {id} segment. Anything that is not a non-negative
// integer is a 404, the same as an unknown route.
func productID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		response.NotFound(w)
		return 0, false
	}
	return uint(id), true
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
