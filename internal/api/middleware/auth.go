// Package middleware holds the HTTP middleware shared by all API routes.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// AuthMiddleware authenticates requests with a bearer access token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService, logger *slog.Logger) *AuthMiddleware {
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil for AuthMiddleware")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the Authorization header and stores the token's
// user ID in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			return
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		case err != nil:
			log.Error("failed to validate token", slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", claims.UserID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}
