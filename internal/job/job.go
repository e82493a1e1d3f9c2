package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a job.
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type identifiers
const (
	TypeMetrics   = "metrics"
	TypeReminders = "reminders"
	TypeExport    = "export"
)

// ErrUnknownType is returned by the registry for a type nobody registered.
var ErrUnknownType = errors.New("unknown job type")

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// UserID returns the owner of the job, or uuid.Nil for system jobs
	UserID() uuid.UUID

	// Payload returns the job input as JSON
	Payload() []byte

	// Execute runs the job logic. It may be called more than once.
	Execute(ctx context.Context) error
}

// Resulter is implemented by jobs that produce output worth persisting.
type Resulter interface {
	Result() ([]byte, error)
}

// Record is the persisted form of a job.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    Status          `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store persists jobs so they survive restarts.
type Store interface {
	// Save persists a new job in the pending state
	Save(ctx context.Context, job Job) error

	// Get returns the stored record for a job
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// UpdateStatus sets the job status and last error message
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, errMsg string) error

	// RecordAttempt increments the attempt counter and stores the attempt's error, if any
	RecordAttempt(ctx context.Context, id uuid.UUID, errMsg string) error

	// SaveResult stores the output of a completed job
	SaveResult(ctx context.Context, id uuid.UUID, result []byte) error

	// ListPending returns every pending job, oldest first
	ListPending(ctx context.Context) ([]*Record, error)

	// ListProcessing returns processing jobs. A non-zero olderThan limits the
	// result to jobs that have not been touched for at least that long.
	ListProcessing(ctx context.Context, olderThan time.Duration) ([]*Record, error)

	// WithTx returns a Store that runs on the given transaction
	WithTx(tx *sql.Tx) Store
}

// base carries the fields every job shares.
type base struct {
	id      uuid.UUID
	userID  uuid.UUID
	jobType string
	payload []byte
}

func (b *base) ID() uuid.UUID     { return b.id }
func (b *base) Type() string      { return b.jobType }
func (b *base) UserID() uuid.UUID { return b.userID }
func (b *base) Payload() []byte   { return b.payload }

// UserPayload is the input shared by all per-user job types.
type UserPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Format string    `json:"format,omitempty"`
}

func decodeUserPayload(rec *Record) (UserPayload, error) {
	var p UserPayload
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return p, Permanent(err)
		}
	}
	if p.UserID == uuid.Nil {
		p.UserID = rec.UserID
	}
	if p.UserID == uuid.Nil {
		return p, Permanent(errors.New("job payload has no user_id"))
	}
	return p, nil
}

func newBase(rec *Record) base {
	return base{id: rec.ID, userID: rec.UserID, jobType: rec.Type, payload: rec.Payload}
}
