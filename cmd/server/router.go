package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// setupRouter creates the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	profileHandler := api.NewProfileHandler(app.userService, app.jobService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.jobService, app.logger)
	categoryHandler := api.NewCategoryHandler(app.categoryService, app.tagService, app.logger)
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/overdue", taskHandler.Overdue)
				r.Post("/reminders", taskHandler.Reminders)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Post("/toggle", taskHandler.Toggle)
					r.Put("/status", taskHandler.SetStatus)
					r.Get("/subtasks", taskHandler.Subtasks)
					r.Post("/suggestions", taskHandler.Suggestions)
					r.Get("/tags", taskHandler.Tags)
					r.Post("/tags/{tagID}", taskHandler.AttachTag)
					r.Delete("/tags/{tagID}", taskHandler.DetachTag)
				})
			})

			r.Get("/categories", categoryHandler.ListCategories)
			r.Post("/categories", categoryHandler.CreateCategory)
			r.Put("/categories/{id}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.DeleteCategory)

			r.Get("/tags", categoryHandler.ListTags)
			r.Post("/tags", categoryHandler.CreateTag)
			r.Delete("/tags/{id}", categoryHandler.DeleteTag)

			r.Get("/dashboard", analyticsHandler.Dashboard)
			r.Get("/analytics", analyticsHandler.Report)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
			r.Delete("/profile", profileHandler.Delete)
			r.Post("/profile/password", profileHandler.ChangePassword)
			r.Post("/profile/export", profileHandler.Export)

			r.Get("/jobs/{id}", profileHandler.JobStatus)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
