package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/middleware"
	"github.com/shashiranjanraj/inventory/pkg/rbac"
)

func TestCanCreateProtected(t *testing.T) {
	assert.True(t, rbac.CanCreateProtected(auth.Identity{Username: "admin"}))
	assert.False(t, rbac.CanCreateProtected(auth.Identity{Username: "clerk"}))
	assert.False(t, rbac.CanCreateProtected(auth.Identity{}))
}

func TestRequire(t *testing.T) {
	h := rbac.Require(rbac.CanCreateProtected)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	serve := func(id *auth.Identity) int {
		req := httptest.NewRequest(http.MethodPost, "/api/products/protected", nil)
		if id != nil {
			req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, serve(&auth.Identity{Username: "admin"}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.Identity{Username: "clerk"}))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}
