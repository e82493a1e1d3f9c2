// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx stdlib driver. It also persists background
// jobs for internal/job.
//
// Every read of tasks and categories applies the same visibility rule
// (deleted_at IS NULL) so soft-deleted rows never leak into listings.
package postgres
