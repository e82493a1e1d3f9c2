package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobRequestEvent asks for a background job to be created. The event ID
// becomes the job ID, so the requester can report it before the job runs.
type JobRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *JobRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobRequestEvent creates an event for a job of the given type owned by
// userID. The payload is serialized as JSON.
func NewJobRequestEvent(jobType string, userID uuid.UUID, payload any) (*JobRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &JobRequestEvent{
		ID:        uuid.New(),
		Type:      jobType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *JobRequestEvent) error
}

// EventEmitter publishes events to its handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *JobRequestEvent) error
}
