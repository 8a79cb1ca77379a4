// Package migrations embeds the schema files applied at startup.
package migrations

import "embed"

// FS holds the *.up.sql files run by database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
