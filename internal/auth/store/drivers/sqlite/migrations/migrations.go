package migrations

import "embed"

// Migrations holds the SQL migration files that are embedded into the
// binary, so the service can migrate its own database on startup.
//
//go:embed *.sql
var Migrations embed.FS
