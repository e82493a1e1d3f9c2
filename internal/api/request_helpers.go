package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// getUserIDFromContext returns the user ID placed in the context by the auth
// middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// requireUserID writes a 401 and returns false when the request is not
// authenticated.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the user ID and the named path UUID. It
// writes the error response itself and returns false if either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName, slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// decodeAndValidate decodes the body into req and validates it, writing a 400
// on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, name)
	}
	return &id, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrValidation, name)
	}
	return v, nil
}
