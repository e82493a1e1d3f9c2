package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users service.UserService, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if users == nil || jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users and jwtService cannot be nil for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithTokens(w, r, http.StatusCreated, user.ID)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, user.ID)
}

// RefreshToken handles POST /auth/refresh. The presented refresh token is
// exchanged for a new access and refresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		log.Debug("refresh token rejected", slog.String("reason", err.Error()))
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, claims.UserID)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, userID uuid.UUID) {
	pair, err := auth.IssuePair(r.Context(), h.jwtService, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	resp := AuthResponse{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if !pair.ExpiresAt.IsZero() {
		resp.ExpiresAt = pair.ExpiresAt.UTC().Format(time.RFC3339)
	}
	shared.RespondWithJSON(w, r, status, resp)
}
