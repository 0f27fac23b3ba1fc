package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/auth"
)

type failingIssuer struct{}

func (failingIssuer) Generate(auth.Identity) (string, error) { return "", errors.New("sign failed") }

func TestLogin(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Minute)
	svc, err := services.NewAuthService("admin", "password", tokens)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "password")
	require.NoError(t, err)
	id, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Username)

	for _, creds := range [][2]string{{"admin", "wrong"}, {"root", "password"}, {"", ""}} {
		_, err := svc.Login(ctx, creds[0], creds[1])
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err), creds)
	}
}

func TestLoginSigningFailureIsInternal(t *testing.T) {
	svc, err := services.NewAuthService("admin", "password", failingIssuer{})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "admin", "password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
