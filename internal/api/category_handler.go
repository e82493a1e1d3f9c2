package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// CategoryDeleteResponse reports how a category was removed. Categories
// still referenced by tasks are soft deleted.
type CategoryDeleteResponse struct {
	SoftDeleted bool `json:"soft_deleted"`
}

// CategoryHandler handles category and tag requests.
type CategoryHandler struct {
	categories service.CategoryService
	tags       service.TagService
	logger     *slog.Logger
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(
	categories service.CategoryService,
	tags service.TagService,
	logger *slog.Logger,
) *CategoryHandler {
	if categories == nil || tags == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("categories and tags cannot be nil for CategoryHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{
		categories: categories,
		tags:       tags,
		logger:     logger.With(slog.String("component", "category_handler")),
	}
}

// ListCategories handles GET /categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	categories, err := h.categories.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// CreateCategory handles POST /categories.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), userID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// UpdateCategory handles PUT /categories/{id}.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, categoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.categories.Update(r.Context(), userID, categoryID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/{id}.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, categoryID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	soft, err := h.categories.Delete(r.Context(), userID, categoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CategoryDeleteResponse{SoftDeleted: soft})
}

// ListTags handles GET /tags.
func (h *CategoryHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	tags, err := h.tags.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// CreateTag handles POST /tags.
func (h *CategoryHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.tags.Create(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// DeleteTag handles DELETE /tags/{id}.
func (h *CategoryHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, tagID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tags.Delete(r.Context(), userID, tagID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
