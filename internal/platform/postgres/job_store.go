package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// ErrJobNotFound is returned when a job does not exist.
var ErrJobNotFound = fmt.Errorf("%w: job", store.ErrNotFound)

const jobColumns = `id, user_id, type, payload, status, attempts, last_error, result, created_at, updated_at`

// PostgresJobStore implements job.Store.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a job store.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

var _ job.Store = (*PostgresJobStore)(nil)

// WithTx implements job.Store.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.Store {
	return &PostgresJobStore{db: tx, logger: s.logger}
}

// Save implements job.Store.Save
func (s *PostgresJobStore) Save(ctx context.Context, j job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := j.Payload()
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	var userID uuid.NullUUID
	if j.UserID() != uuid.Nil {
		userID = uuid.NullUUID{UUID: j.UserID(), Valid: true}
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		j.ID(), userID, j.Type(), string(payload), string(job.StatusPending), now,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", j.ID().String()),
			slog.String("job_type", j.Type()))
		return MapError(err)
	}
	return nil
}

// Get implements job.Store.Get
func (s *PostgresJobStore) Get(ctx context.Context, id uuid.UUID) (*job.Record, error) {
	rec, err := scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, MapError(err)
	}
	return rec, nil
}

// UpdateStatus implements job.Store.UpdateStatus
func (s *PostgresJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status job.Status, errMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}
	return CheckRowsAffected(result, ErrJobNotFound)
}

// RecordAttempt implements job.Store.RecordAttempt
func (s *PostgresJobStore) RecordAttempt(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET attempts = attempts + 1, last_error = $1, updated_at = $2
		WHERE id = $3`,
		errMsg, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, ErrJobNotFound)
}

// SaveResult implements job.Store.SaveResult
func (s *PostgresJobStore) SaveResult(ctx context.Context, id uuid.UUID, out []byte) error {
	result, err := s.db.ExecContext(ctx, `UPDATE jobs SET result = $1, updated_at = $2 WHERE id = $3`,
		string(out), time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, ErrJobNotFound)
}

// ListPending implements job.Store.ListPending
func (s *PostgresJobStore) ListPending(ctx context.Context) ([]*job.Record, error) {
	return s.list(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE status = $1
		ORDER BY created_at, id`, string(job.StatusPending))
}

// ListProcessing implements job.Store.ListProcessing
func (s *PostgresJobStore) ListProcessing(ctx context.Context, olderThan time.Duration) ([]*job.Record, error) {
	if olderThan <= 0 {
		return s.list(ctx, `
			SELECT `+jobColumns+` FROM jobs
			WHERE status = $1
			ORDER BY created_at, id`, string(job.StatusProcessing))
	}
	return s.list(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE status = $1 AND updated_at < $2
		ORDER BY created_at, id`, string(job.StatusProcessing), time.Now().UTC().Add(-olderThan))
}

func (s *PostgresJobStore) list(ctx context.Context, query string, args ...any) ([]*job.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*job.Record
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

func scanJob(row rowScanner) (*job.Record, error) {
	var (
		rec            job.Record
		userID         uuid.NullUUID
		status         string
		payload, extra []byte
	)
	err := row.Scan(&rec.ID, &userID, &rec.Type, &payload, &status, &rec.Attempts,
		&rec.LastError, &extra, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		rec.UserID = userID.UUID
	}
	rec.Status = job.Status(status)
	rec.Payload = payload
	if len(extra) > 0 {
		rec.Result = extra
	}
	return &rec, nil
}
