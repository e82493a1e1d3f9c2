package service_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// txOutcome is what a test expects to happen to the transaction it opens.
type txOutcome int

const (
	noTx txOutcome = iota
	commitTx
	rollbackTx
)

// newDB returns a sqlmock-backed database expecting at most one
// transaction with the given outcome.
func newDB(t *testing.T, outcome txOutcome) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	switch outcome {
	case commitTx:
		mock.ExpectBegin()
		mock.ExpectCommit()
	case rollbackTx:
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db
}

func newTask(userID uuid.UUID, title string) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusTodo,
		CreatedAt: testNow.Add(-48 * time.Hour),
		UpdatedAt: testNow.Add(-48 * time.Hour),
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
