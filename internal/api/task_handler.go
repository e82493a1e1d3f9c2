package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// defaultSuggestionLimit is used when a suggestion request names no limit.
const defaultSuggestionLimit = 5

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	tasks  service.TaskService
	jobs   service.JobService
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService, jobs service.JobService, logger *slog.Logger) *TaskHandler {
	if tasks == nil || jobs == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks and jobs cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		jobs:   jobs,
		logger: logger.With(slog.String("component", "task_handler")),
		now:    time.Now,
	}
}

// List handles GET /tasks. Query parameters status, priority, category_id,
// tag_id and parent_id filter; sort_by and sort_order order; group_by
// switches the response to grouped form.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	q, groupBy, err := parseListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, q)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	now := h.now()
	if groupBy == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
			Count: len(tasks),
			Tasks: toTaskResponses(tasks, now),
		})
		return
	}

	groups := analytics.GroupTasks(tasks, groupBy.KeyFunc())
	resp := GroupedTasksResponse{GroupBy: string(groupBy), Groups: make(map[string][]TaskResponse, len(groups))}
	for key, members := range groups {
		resp.Groups[key] = toTaskResponses(members, now)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (service.ListQuery, analytics.GroupField, error) {
	var q service.ListQuery
	values := r.URL.Query()

	if raw := values.Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return q, "", err
		}
		q.Status = &status
	}
	if raw := values.Get("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return q, "", err
		}
		q.Priority = &priority
	}

	var err error
	if q.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		return q, "", err
	}
	if q.TagID, err = queryUUID(r, "tag_id"); err != nil {
		return q, "", err
	}
	if q.ParentID, err = queryUUID(r, "parent_id"); err != nil {
		return q, "", err
	}
	if q.SortBy, err = analytics.ParseSortKey(values.Get("sort_by")); err != nil {
		return q, "", err
	}
	if q.SortOrder, err = analytics.ParseSortOrder(values.Get("sort_order")); err != nil {
		return q, "", err
	}

	var groupBy analytics.GroupField
	if raw := values.Get("group_by"); raw != "" {
		if groupBy, err = analytics.ParseGroupField(raw); err != nil {
			return q, "", err
		}
	}
	return q, groupBy, nil
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	in, ok := decodeTaskInput(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toTaskResponse(task, h.now()))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(task, h.now()))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	in, ok := decodeTaskInput(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, taskID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(task, h.now()))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /tasks/{id}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.Toggle(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(task, h.now()))
}

// SetStatus handles PUT /tasks/{id}/status.
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.SetStatus(r.Context(), userID, taskID, status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toTaskResponse(task, h.now()))
}

// Subtasks handles GET /tasks/{id}/subtasks.
func (h *TaskHandler) Subtasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	tasks, err := h.tasks.Subtasks(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subtasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Count: len(tasks),
		Tasks: toTaskResponses(tasks, h.now()),
	})
}

// Overdue handles GET /tasks/overdue.
func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	tasks, err := h.tasks.Overdue(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list overdue tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Count: len(tasks),
		Tasks: toTaskResponses(tasks, h.now()),
	})
}

// Reminders handles POST /tasks/reminders.
func (h *TaskHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	jobID, err := h.jobs.ScheduleReminders(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to schedule reminders")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{
		JobID:  jobID,
		Status: string(job.StatusPending),
	})
}

// Tags handles GET /tasks/{id}/tags.
func (h *TaskHandler) Tags(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	tags, err := h.tasks.Tags(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list task tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// AttachTag handles POST /tasks/{id}/tags/{tagID}.
func (h *TaskHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	h.changeTag(w, r, h.tasks.AttachTag, "Failed to attach tag")
}

// DetachTag handles DELETE /tasks/{id}/tags/{tagID}.
func (h *TaskHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	h.changeTag(w, r, h.tasks.DetachTag, "Failed to detach tag")
}

func (h *TaskHandler) changeTag(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID, taskID, tagID uuid.UUID) error,
	fallback string,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	tagID, err := getPathUUID(r, "tagID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := apply(r.Context(), userID, taskID, tagID); err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggestions handles POST /tasks/{id}/suggestions. The create flag may be
// given in the body or as the create query parameter.
func (h *TaskHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SuggestionsRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}
	create, err := queryBool(r, "create")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSuggestionLimit
	}

	result, err := h.tasks.SuggestSubtasks(r.Context(), userID, taskID, req.Limit, req.Create || create)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to suggest subtasks")
		return
	}

	status := http.StatusOK
	if len(result.Created) > 0 {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, result)
}

// decodeTaskInput decodes and validates a TaskRequest, parsing its enums.
func decodeTaskInput(w http.ResponseWriter, r *http.Request) (service.TaskInput, bool) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return service.TaskInput{}, false
	}

	in := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
		ParentID:    req.ParentID,
	}
	if req.Priority != "" {
		p, err := domain.ParsePriority(req.Priority)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return service.TaskInput{}, false
		}
		in.Priority = p
	}
	if req.Status != "" {
		s, err := domain.ParseStatus(req.Status)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return service.TaskInput{}, false
		}
		in.Status = s
	}
	return in, true
}
