package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// ProfileHandler serves the authenticated user's own account and their
// background jobs.
type ProfileHandler struct {
	users  service.UserService
	jobs   service.JobService
	logger *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(users service.UserService, jobs service.JobService, logger *slog.Logger) *ProfileHandler {
	if users == nil || jobs == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users and jobs cannot be nil for ProfileHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		users:  users,
		jobs:   jobs,
		logger: logger.With(slog.String("component", "profile_handler")),
	}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(user))
}

// Update handles PUT /profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(user))
}

// ChangePassword handles POST /profile/password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	log.Info("password changed")
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /profile. Everything the user owns goes with them.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}
	log.Info("account deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /profile/export. The body is optional; the configured
// format is used when none is given.
func (h *ProfileHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ExportRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	jobID, err := h.jobs.ScheduleExport(r.Context(), userID, req.Format)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to schedule export")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{
		JobID:  jobID,
		Status: string(job.StatusPending),
	})
}

// JobStatus handles GET /jobs/{id}.
func (h *ProfileHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	rec, err := h.jobs.Status(r.Context(), userID, jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load job")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}
