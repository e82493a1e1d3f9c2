//go:build integration

// Package testdb connects integration tests to a real PostgreSQL database.
// Every test runs inside a transaction that is rolled back afterwards, so
// tests can share one schema without seeing each other's rows.
//
// Tests are skipped unless TASKBOARD_TEST_DATABASE_URL or DATABASE_URL is
// set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres/migrations"
)

// Timeout bounds connection setup.
const Timeout = 5 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// URL returns the database URL for integration tests, or "".
func URL() string {
	for _, key := range []string{"TASKBOARD_TEST_DATABASE_URL", "DATABASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database, applies migrations once per process
// and closes the pool when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skip("TASKBOARD_TEST_DATABASE_URL or DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open database connection")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	migrateOnce.Do(func() { migrateErr = Migrate(db) })
	require.NoError(t, migrateErr, "failed to apply migrations")
	return db
}

// Migrate applies the embedded migrations.
func Migrate(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrations.TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// WithTx runs fn in a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
