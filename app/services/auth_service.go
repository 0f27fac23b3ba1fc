package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/auth"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

const MsgInvalidCredentials = "Invalid credentials"

// TokenIssuer is satisfied by *auth.Tokens.
type TokenIssuer interface {
	Generate(id auth.Identity) (string, error)
}

// AuthService accepts exactly one credential pair. The password is kept
// only as a bcrypt hash.
type AuthService struct {
	username     string
	passwordHash string
	tokens       TokenIssuer
}

func NewAuthService(username, password string, tokens TokenIssuer) (*AuthService, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}
	return &AuthService{username: username, passwordHash: hash, tokens: tokens}, nil
}

// Login returns a signed access token for the configured credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := auth.CheckPassword(s.passwordHash, password)
	if !userOK || !passOK {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.WithCtx(ctx).Warn("login failed", "username", username)
		return "", apperr.Unauthorized(MsgInvalidCredentials)
	}

	token, err := s.tokens.Generate(auth.Identity{Username: username})
	if err != nil {
		return "", err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.WithCtx(ctx).Info("login succeeded", "username", username)
	return token, nil
}
