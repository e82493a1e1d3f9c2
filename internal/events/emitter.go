package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter dispatches events synchronously to handlers kept in
// memory.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a handler.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent sends the event to every handler. A failing handler does not
// stop the others; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *JobRequestEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type))
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
