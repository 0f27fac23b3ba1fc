package routes

import (
	"net/http"

	"github.com/shashiranjanraj/inventory/app/controllers"
	"github.com/shashiranjanraj/inventory/pkg/middleware"
	"github.com/shashiranjanraj/inventory/pkg/rbac"
	"github.com/shashiranjanraj/inventory/pkg/response"
	"github.com/shashiranjanraj/inventory/pkg/router"
)

// Handlers are the controllers the route table dispatches to. Nil members
// are fine for route:list, which never serves a request.
type Handlers struct {
	Products *controllers.ProductController
	Auth     *controllers.AuthController
	Tokens   middleware.TokenValidator
}

func RegisterAPI(r *router.Router, h Handlers) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Post("/login", "auth.login", h.Auth.Login)

	products := r.Group("/api/products")
	products.Get("/", "products.index", h.Products.Index)
	products.Post("/", "products.store", h.Products.Store)
	products.Get("/search", "products.search", h.Products.Search)
	products.Get("/{id}", "products.show", h.Products.Show)
	products.Put("/{id}", "products.update", h.Products.Update)
	products.Delete("/{id}", "products.destroy", h.Products.Destroy)
	products.Post("/sell/{id}", "products.sell", h.Products.Sell)

	protected := products.Group("/protected", middleware.Auth(h.Tokens), rbac.Require(rbac.CanCreateProtected))
	protected.Post("/", "products.store.protected", h.Products.Store)
}
