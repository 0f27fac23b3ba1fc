// Package kernel assembles the HTTP handler: global middleware, the
// /metrics endpoint and the application routes, wired to their services.
package kernel

import (
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/controllers"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/app/routes"
	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/middleware"
	"github.com/shashiranjanraj/inventory/pkg/reqid"
	"github.com/shashiranjanraj/inventory/pkg/router"
)

// Options are the runtime dependencies of the kernel.
type Options struct {
	DB       *gorm.DB
	Cache    cache.Store // nil disables caching
	CacheTTL time.Duration
	Tokens   *auth.Tokens

	AdminUsername string
	AdminPassword string

	// RateLimit is requests per client per minute. Zero disables limiting.
	RateLimit int
	// TrustProxy keys the rate limit on X-Forwarded-For.
	TrustProxy bool
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(opts Options) (*HTTPKernel, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("kernel: no database handle")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("kernel: no token issuer")
	}

	authService, err := services.NewAuthService(opts.AdminUsername, opts.AdminPassword, opts.Tokens)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	repo := repositories.NewProductRepository(opts.DB, opts.Cache, opts.CacheTTL)

	r := router.New()

	// Outermost first. Recovery sits under Logger so a panic is logged with
	// its request_id and still produces an access line.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute, opts.TrustProxy))
	}

	r.HandleFunc("/metrics", metrics.Handler())

	routes.RegisterAPI(r, routes.Handlers{
		Products: controllers.NewProductController(services.NewProductService(repo), r),
		Auth:     controllers.NewAuthController(authService),
		Tokens:   opts.Tokens,
	})

	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// RouteTable lists the named routes without building any services.
func RouteTable() []router.RouteInfo {
	r := router.New()
	routes.RegisterAPI(r, routes.Handlers{})
	return r.Routes()
}
