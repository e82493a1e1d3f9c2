// Package auth issues and validates the signed tokens that authenticate API
// requests, and verifies bcrypt password hashes.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token. Refresh tokens
	// live longer and can only be exchanged for a new token pair.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// TokenPair is what login, registration and refresh hand back to a client.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IssuePair generates an access and a refresh token for the user. ExpiresAt
// is the access token's expiry as reported by the service's lifetime.
func IssuePair(ctx context.Context, svc JWTService, userID uuid.UUID) (*TokenPair, error) {
	access, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := svc.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{AccessToken: access, RefreshToken: refresh}
	if claims, err := svc.ValidateToken(ctx, access); err == nil {
		pair.ExpiresAt = claims.ExpiresAt
	}
	return pair, nil
}
