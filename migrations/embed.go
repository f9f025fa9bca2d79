// Package migrations embeds the SQL schema for the SQLite storage driver.
package migrations

import "embed"

// FS holds one directory of migrations per database dialect.
//
//go:embed sqlite/*.sql
var FS embed.FS
