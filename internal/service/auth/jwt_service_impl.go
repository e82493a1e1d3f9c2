package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

const defaultClockSkew = 2 * time.Minute

// hmacJWTService is an implementation of JWTService using HMAC-SHA256 signing.
type hmacJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time
	clockSkew            time.Duration
}

type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA256 signing.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.TokenLifetimeMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenLifetimeMinutes)*time.Minute,
		time.Now,
	)
}

func newHMACJWTService(
	secret string,
	accessLifetime, refreshLifetime time.Duration,
	now func() time.Time,
) (*hmacJWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if accessLifetime <= 0 || refreshLifetime <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        accessLifetime,
		refreshTokenLifetime: refreshLifetime,
		timeFunc:             now,
		clockSkew:            defaultClockSkew,
	}, nil
}

// GenerateToken creates a signed JWT access token.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, TokenTypeAccess, s.timeFunc().Add(s.tokenLifetime))
}

// GenerateRefreshToken creates a signed JWT refresh token.
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, TokenTypeRefresh, s.timeFunc().Add(s.refreshTokenLifetime))
}

// ValidateToken validates an access token.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parse(ctx, tokenString, TokenTypeAccess, ErrInvalidToken, ErrExpiredToken)
}

// ValidateRefreshToken validates a refresh token.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parse(ctx, tokenString, TokenTypeRefresh, ErrInvalidRefreshToken, ErrExpiredRefreshToken)
}

func (s *hmacJWTService) sign(ctx context.Context, userID uuid.UUID, tokenType string, expiresAt time.Time) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("token_type", tokenType))
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) parse(
	ctx context.Context,
	tokenString, wantType string,
	errInvalid, errExpired error,
) (*Claims, error) {
	log := logger.FromContext(ctx).With(slog.String("token_type", wantType))

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token expired")
			return nil, errExpired
		}
		log.Debug("token validation failed", slog.String("error", err.Error()))
		return nil, errInvalid
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errInvalid
	}
	if claims.TokenType != wantType {
		log.Debug("wrong token type", slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
