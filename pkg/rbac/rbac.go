// Package rbac holds the authorization policies checked after authentication.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/middleware"
	"github.com/shashiranjanraj/inventory/pkg/response"
)

// AdminUsername is the only identity allowed through admin-only policies.
const AdminUsername = "admin"

// Policy decides whether an authenticated identity may proceed.
type Policy func(id auth.Identity) bool

// CanCreateProtected allows the protected product-create route. Login only
// ever issues admin tokens today; the check stays for when it doesn't.
func CanCreateProtected(id auth.Identity) bool {
	return id.Username == AdminUsername
}

// Require returns middleware enforcing p. middleware.Auth must run first.
// Rejections use the 403 body {"error":"Unauthorized"}.
func Require(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.IdentityFromCtx(r.Context())
			if !ok || !p(id) {
				response.Fail(w, r, apperr.Forbidden("Unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
