// Package middleware provides the HTTP middleware used by the inventory API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/response"
)

// TokenValidator is satisfied by *auth.Tokens.
type TokenValidator interface {
	Validate(raw string) (auth.Identity, error)
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromCtx returns the identity placed by Auth.
func IdentityFromCtx(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Auth rejects requests without a valid "Authorization: Bearer <token>"
// header and otherwise makes the token's identity available downstream.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Fail(w, r, apperr.Unauthorized("Missing Authorization Header"))
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Fail(w, r, apperr.Unauthorized("Authorization header must be 'Bearer <token>'"))
				return
			}

			id, err := tokens.Validate(token)
			if err != nil {
				logger.WithCtx(r.Context()).Info("token rejected", "error", err.Error())
				response.Fail(w, r, apperr.Unauthorized("Invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
