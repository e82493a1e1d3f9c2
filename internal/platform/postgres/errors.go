package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	stringTooLongCode       = "22001"
)

// visibleOnly is appended to every task and category read.
const visibleOnly = "deleted_at IS NULL"

// MapError translates database errors into store errors, keeping the
// original as context. Unrecognized errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
		case stringTooLongCode:
			return fmt.Errorf("%w: value too long: %v", store.ErrInvalidEntity, err)
		}
	}

	return err
}

// MapUniqueViolation returns specific when err violates the named unique
// constraint, and falls back to MapError otherwise. An empty constraint
// matches any unique violation.
func MapUniqueViolation(err error, constraint string, specific error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode &&
		(constraint == "" || pgErr.ConstraintName == constraint) {
		return fmt.Errorf("%w: %v", specific, err)
	}
	return MapError(err)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected returns notFound when result touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}
	return nil
}
