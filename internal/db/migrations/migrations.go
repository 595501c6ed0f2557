// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// Migrations holds the *.sql files applied by db.ApplyMigrations.
//
//go:embed *.sql
var Migrations embed.FS
