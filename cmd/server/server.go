package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// startHTTPServer serves router until ctx is cancelled or the listener
// fails, then drains in-flight requests and runs cleanup.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	case listenErr = <-serveErr:
		if listenErr != nil {
			app.logger.Error("Server failed", slog.String("error", listenErr.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		app.logger.Error("Server shutdown failed", slog.String("error", shutdownErr.Error()))
	}

	app.cleanup()
	app.logger.Info("Server shutdown completed")

	if listenErr != nil {
		return listenErr
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown failed: %w", shutdownErr)
	}
	return nil
}
