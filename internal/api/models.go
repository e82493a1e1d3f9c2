package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Email     string `json:"email"      validate:"required,email,max=120"`
	Password  string `json:"password"   validate:"required,min=12,max=72"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
}

// LoginRequest is the body of POST /auth/login. Login is a username or an
// email address.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by every endpoint that issues tokens.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
}

// ProfileResponse is the public view of a user.
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest is the body of PUT /profile. Empty fields are left
// unchanged.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
	Email     string `json:"email"      validate:"omitempty,email,max=120"`
}

// ChangePasswordRequest is the body of POST /profile/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ExportRequest is the optional body of POST /profile/export.
type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=json yaml"`
}

// TaskRequest is the body of POST /tasks and PUT /tasks/{id}.
type TaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *uuid.UUID `json:"category_id"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// StatusRequest is the body of PUT /tasks/{id}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TaskResponse is a task plus its derived due-date flags.
type TaskResponse struct {
	*domain.Task
	IsOverdue bool `json:"is_overdue"`
	IsDueSoon bool `json:"is_due_soon"`
}

// TaskListResponse is returned by GET /tasks without grouping.
type TaskListResponse struct {
	Count int            `json:"count"`
	Tasks []TaskResponse `json:"tasks"`
}

// GroupedTasksResponse is returned by GET /tasks?group_by=...
type GroupedTasksResponse struct {
	GroupBy string                    `json:"group_by"`
	Groups  map[string][]TaskResponse `json:"groups"`
}

// SuggestionsRequest is the optional body of POST /tasks/{id}/suggestions.
type SuggestionsRequest struct {
	Limit  int  `json:"limit"  validate:"omitempty,min=1,max=10"`
	Create bool `json:"create"`
}

// CategoryRequest is the body of POST /categories and PUT /categories/{id}.
type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color"       validate:"omitempty,hexcolor,len=7"`
}

// TagRequest is the body of POST /tags.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// JobAcceptedResponse is returned when a background job is scheduled.
type JobAcceptedResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// DashboardResponse is returned by GET /dashboard.
type DashboardResponse struct {
	Overdue    []TaskResponse            `json:"overdue"`
	DueToday   []TaskResponse            `json:"due_today"`
	Stats      analytics.Stats           `json:"stats"`
	Categories []analytics.CategoryStats `json:"categories"`
}

func toTaskResponse(t *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{Task: t, IsOverdue: t.IsOverdue(now), IsDueSoon: t.IsDueSoon(now)}
}

func toTaskResponses(tasks []*domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t, now))
	}
	return out
}

func toProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
	}
}
