package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	out := scrape(t)
	assert.Contains(t, out, `route="/api/products/{id}"`)
	assert.NotContains(t, out, `route="/api/products/1"`)
}

func TestHandlerExposesCustomCounters(t *testing.T) {
	UnitsSold.Add(2)
	LoginAttempts.WithLabelValues("failure").Inc()

	out := scrape(t)
	assert.Contains(t, out, "inventory_products_units_sold_total")
	assert.Contains(t, out, `inventory_auth_login_attempts_total{outcome="failure"}`)
}
