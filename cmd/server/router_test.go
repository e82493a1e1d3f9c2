package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

type testApp struct {
	*application
	jwt   *mocks.JWTService
	tasks *mocks.TaskService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	_, log := logger.NewTestLogger(t)
	jwt, tasks := new(mocks.JWTService), new(mocks.TaskService)
	return &testApp{
		application: &application{
			config:           &config.Config{},
			logger:           log,
			jwtService:       jwt,
			userService:      new(mocks.UserService),
			taskService:      tasks,
			categoryService:  new(mocks.CategoryService),
			tagService:       new(mocks.TagService),
			analyticsService: new(mocks.AnalyticsService),
			jobService:       new(mocks.JobService),
		},
		jwt:   jwt,
		tasks: tasks,
	}
}

func TestSetupRouter(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	userID := uuid.New()
	app.jwt.On("ValidateToken", mock.Anything, "good").Return(&auth.Claims{UserID: userID}, nil)
	app.tasks.On("Overdue", mock.Anything, userID).Return([]*domain.Task{}, nil)
	app.tasks.On("List", mock.Anything, userID, mock.Anything).Return([]*domain.Task{}, nil)

	router := app.setupRouter()

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, target: "/health", wantStatus: http.StatusOK},
		{name: "tasks need a token", method: http.MethodGet, target: "/api/tasks", wantStatus: http.StatusUnauthorized},
		{name: "list tasks", method: http.MethodGet, target: "/api/tasks", token: "good", wantStatus: http.StatusOK},
		{name: "overdue is not a task id", method: http.MethodGet, target: "/api/tasks/overdue", token: "good", wantStatus: http.StatusOK},
		{name: "malformed task id", method: http.MethodGet, target: "/api/tasks/not-a-uuid", token: "good", wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, target: "/api/nope", token: "good", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPatch, target: "/api/dashboard", token: "good", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
		})
	}
}
