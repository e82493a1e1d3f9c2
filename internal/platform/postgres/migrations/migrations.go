// Package migrations embeds the goose SQL migrations for the taskboard
// schema so the server binary and integration tests share one source.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS

// TableName is the goose version table.
const TableName = "schema_migrations"
